package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/report"
)

func testCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("offset", 0, "")
	cmd.Flags().StringSlice("format", nil, "")
	return cmd
}

func TestCompaniesFromArgs(t *testing.T) {
	cfg = &config.Config{Companies: []config.CompanyConfig{{Ticker: "ACME", Peers: []string{"BOLT"}}}}

	got, err := companiesFromArgs(testCommand(), nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Companies, got)

	cmd := testCommand()
	require.NoError(t, cmd.Flags().Set("offset", "-1"))
	got, err = companiesFromArgs(cmd, []string{"acme", "$bolt:1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, config.CompanyConfig{Ticker: "ACME", QuarterOffset: -1, Peers: []string{"BOLT"}}, got[0])
	assert.Equal(t, "BOLT", got[1].Ticker)
	assert.Equal(t, 1, got[1].QuarterOffset)

	cfg = &config.Config{}
	_, err = companiesFromArgs(testCommand(), nil)
	assert.Error(t, err)
}

func TestOutputFormats(t *testing.T) {
	cfg = &config.Config{Output: config.OutputConfig{Formats: []string{"csv", "yaml"}}}

	got, err := outputFormats(testCommand())
	require.NoError(t, err)
	assert.Equal(t, []report.Format{report.FormatCSV, report.FormatYAML}, got)

	cmd := testCommand()
	require.NoError(t, cmd.Flags().Set("format", "json,svg"))
	got, err = outputFormats(cmd)
	require.NoError(t, err)
	assert.Equal(t, []report.Format{report.FormatJSON, report.FormatSVG}, got)

	require.NoError(t, cmd.Flags().Set("format", "pdf"))
	_, err = outputFormats(cmd)
	assert.Error(t, err)
}
