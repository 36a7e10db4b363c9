// Package report writes the statement and ratio tables of built companies as
// csv, json, yaml, plain text tables and svg charts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/finratios/internal/company"
	"github.com/seenimoa/finratios/pkg/models"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
	FormatSVG  Format = "svg"
)

// Table names, used as output file stems.
const (
	TableIncome  = "is_data"
	TableBalance = "bs_data"
	TableRatios  = "ratio_data"
)

// AllFormats returns the supported formats.
func AllFormats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatYAML, FormatText, FormatSVG}
}

// ParseFormat maps a config value onto a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllFormats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Tables holds the three flat output tables.
type Tables struct {
	Income  []models.StatementRow
	Balance []models.StatementRow
	Ratios  []models.RatioRow
}

// Append adds the rows of a company. Income rows cover every quarter, balance
// rows only year-end sheets.
func (t *Tables) Append(c *company.Company) {
	t.Income = append(t.Income, c.IncomeRows()...)
	t.Balance = append(t.Balance, c.BalanceRows()...)
	t.Ratios = append(t.Ratios, c.RatioRows()...)
}

// CollectTables flattens companies in the given order.
func CollectTables(companies ...*company.Company) Tables {
	var t Tables
	for _, c := range companies {
		if c != nil {
			t.Append(c)
		}
	}
	return t
}

// Writer writes tables into a directory, one file per table and format.
type Writer struct {
	Dir     string
	Formats []Format
	log     *zap.Logger
}

// NewWriter creates a writer for dir. Formats default to csv.
func NewWriter(dir string, formats []Format, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(formats) == 0 {
		formats = []Format{FormatCSV}
	}
	return &Writer{Dir: dir, Formats: formats, log: logger}
}

// Write writes the tables in every configured format and returns the paths
// written. SVG output is per company and handled by WriteCharts.
func (w *Writer) Write(t Tables) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var paths []string
	for _, f := range w.Formats {
		if f == FormatSVG {
			continue
		}
		jobs := []struct {
			name   string
			encode func(io.Writer) error
		}{
			{TableIncome, func(out io.Writer) error { return EncodeStatements(out, f, t.Income) }},
			{TableBalance, func(out io.Writer) error { return EncodeStatements(out, f, t.Balance) }},
			{TableRatios, func(out io.Writer) error { return EncodeRatios(out, f, t.Ratios) }},
		}
		for _, job := range jobs {
			path := filepath.Join(w.Dir, job.name+"."+f.Extension())
			if err := writeFile(path, job.encode); err != nil {
				return paths, err
			}
			w.log.Debug("table written", zap.String("path", path))
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// WriteCharts writes the ratio trend chart of each company when svg output
// is configured.
func (w *Writer) WriteCharts(companies ...*company.Company) ([]string, error) {
	if !w.has(FormatSVG) {
		return nil, nil
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var paths []string
	for _, c := range companies {
		if c == nil || len(c.Years) == 0 {
			continue
		}
		path := filepath.Join(w.Dir, c.Ticker+"_ratios.svg")
		svg := RatioTrendChart(c, DefaultTrendKeys(), DefaultChartConfig())
		if err := writeFile(path, func(out io.Writer) error {
			_, err := io.WriteString(out, svg)
			return err
		}); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *Writer) has(f Format) bool {
	for _, known := range w.Formats {
		if known == f {
			return true
		}
	}
	return false
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// EncodeStatements encodes statement rows in format f.
func EncodeStatements(w io.Writer, f Format, rows []models.StatementRow) error {
	if rows == nil {
		rows = []models.StatementRow{}
	}
	switch f {
	case FormatCSV:
		return gocsv.Marshal(rows, w)
	case FormatJSON:
		return encodeJSON(w, rows)
	case FormatYAML:
		return encodeYAML(w, rows)
	case FormatText:
		_, err := io.WriteString(w, RenderStatementTable(rows)+"\n")
		return err
	default:
		return fmt.Errorf("format %q cannot encode statement rows", f)
	}
}

// EncodeRatios encodes ratio rows in format f. Undefined ratios (NaN) are
// written as null in json.
func EncodeRatios(w io.Writer, f Format, rows []models.RatioRow) error {
	if rows == nil {
		rows = []models.RatioRow{}
	}
	switch f {
	case FormatCSV:
		return gocsv.Marshal(rows, w)
	case FormatJSON:
		return encodeJSON(w, jsonRatioRows(rows))
	case FormatYAML:
		return encodeYAML(w, rows)
	case FormatText:
		_, err := io.WriteString(w, RenderRatioTable(rows)+"\n")
		return err
	default:
		return fmt.Errorf("format %q cannot encode ratio rows", f)
	}
}

type jsonRatioRow struct {
	Company   string   `json:"company"`
	Year      int      `json:"year"`
	RatioType string   `json:"ratio_type"`
	Ratio     string   `json:"ratio"`
	Value     *float64 `json:"value"`
}

func jsonRatioRows(rows []models.RatioRow) []jsonRatioRow {
	out := make([]jsonRatioRow, len(rows))
	for i, r := range rows {
		out[i] = jsonRatioRow{Company: r.Company, Year: r.Year, RatioType: r.RatioType, Ratio: r.Ratio}
		if !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0) {
			v := r.Value
			out[i].Value = &v
		}
	}
	return out
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// ReportTimestamp returns the current time formatted for report headers.
func ReportTimestamp() string {
	return time.Now().UTC().Format("02 Jan 2006, 15:04 UTC")
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
