package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finratios/internal/analysis/fundamental"
	"github.com/seenimoa/finratios/internal/company"
	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/engine"
	"github.com/seenimoa/finratios/internal/report"
	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/utils"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	headStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)
)

// companiesFromArgs parses TICKER[:OFFSET] arguments, falling back to the
// configured companies. A --offset flag applies to every argument without an
// explicit offset.
func companiesFromArgs(cmd *cobra.Command, args []string) ([]config.CompanyConfig, error) {
	if len(args) == 0 {
		if len(cfg.Companies) == 0 {
			return nil, fmt.Errorf("no tickers given and none configured")
		}
		return cfg.Companies, nil
	}
	companies, err := config.ParseCompanies(args)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("offset") {
		offset, _ := cmd.Flags().GetInt("offset")
		for i, a := range args {
			if !strings.Contains(a, ":") && i < len(companies) {
				companies[i].QuarterOffset = offset
			}
		}
	}
	for i := range companies {
		companies[i].Ticker = utils.NormalizeTicker(companies[i].Ticker)
		for _, known := range cfg.Companies {
			if known.Ticker == companies[i].Ticker && len(companies[i].Peers) == 0 {
				companies[i].Peers = known.Peers
			}
		}
	}
	return companies, nil
}

func outputFormats(cmd *cobra.Command) ([]report.Format, error) {
	names := cfg.Output.Formats
	if cmd.Flags().Changed("format") {
		names, _ = cmd.Flags().GetStringSlice("format")
	}
	formats := make([]report.Format, 0, len(names))
	for _, n := range names {
		f, err := report.ParseFormat(n)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func buildOne(cmd *cobra.Command, ticker string) (*company.Company, error) {
	companies, err := companiesFromArgs(cmd, []string{ticker})
	if err != nil {
		return nil, err
	}
	src, err := engine.SourcesFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	cc := companies[0]
	return company.Build(cmd.Context(), cc.Ticker, cc.QuarterOffset, src, engine.PolicyFromConfig(cfg.Policy), logger)
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run [TICKER[:OFFSET]...]",
	Short: "Build every company and write is_data, bs_data and ratio_data",
	Long: `Build every company and write the statement and ratio tables.

Tickers default to the companies section of the config. A failing company
writes no rows; the others are still written and the command exits non-zero.

Examples:
  finratios run
  finratios run AAPL MSFT:1 --format csv,json
  finratios run INFY --offset -1 --out ./out --report`,
	RunE: func(cmd *cobra.Command, args []string) error {
		companies, err := companiesFromArgs(cmd, args)
		if err != nil {
			return err
		}
		formats, err := outputFormats(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		outDir := cfg.Output.Dir
		if cmd.Flags().Changed("out") {
			outDir, _ = cmd.Flags().GetString("out")
		}

		eng, err := engine.FromConfig(cfg, logger)
		if err != nil {
			return err
		}
		res := eng.Run(cmd.Context(), companies)

		w := report.NewWriter(outDir, formats, logger)
		paths, err := w.Write(res.Tables())
		if err != nil {
			return err
		}
		charts, err := w.WriteCharts(res.Companies...)
		if err != nil {
			return err
		}
		paths = append(paths, charts...)

		if show, _ := cmd.Flags().GetBool("report"); show {
			for _, c := range res.Companies {
				fmt.Println(report.RenderCompany(c))
			}
			for _, pc := range res.Peers {
				fmt.Println(report.RenderPeers(pc))
			}
		}

		fmt.Printf("%s run %s: %d built, %d failed in %s\n", headStyle.Render("finratios"),
			res.RunID, len(res.Companies), len(res.Failures), report.FormatDuration(res.Duration))
		for _, p := range paths {
			fmt.Printf("  %s %s\n", okStyle.Render("wrote"), p)
		}
		for _, f := range res.Failures {
			fmt.Printf("  %s %s: %v\n", failStyle.Render("failed"), f.Ticker, f.Err)
		}

		if len(res.Failures) > 0 {
			return fmt.Errorf("%w: %d of %d", errPartial, len(res.Failures), len(companies))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Int("offset", 0, "quarter offset for tickers given without one (-1, 0, 1)")
	runCmd.Flags().StringSlice("format", nil, "output formats (csv, json, yaml, text, svg)")
	runCmd.Flags().String("out", "", "output directory (default: output.dir)")
	runCmd.Flags().Bool("report", false, "print the terminal report of every company")
}

// --- Statements Command ---

var statementsCmd = &cobra.Command{
	Use:   "statements TICKER[:OFFSET]",
	Short: "Print the derived income statements and year-end balance sheets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildOne(cmd, args[0])
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("kind")
		switch kind {
		case "income":
			fmt.Println(report.RenderStatementTable(c.IncomeRows()))
		case "balance":
			fmt.Println(report.RenderStatementTable(c.BalanceRows()))
		case "all":
			fmt.Println(headStyle.Render("Income statements"))
			fmt.Println(report.RenderStatementTable(c.IncomeRows()))
			fmt.Println(headStyle.Render("Year-end balance sheets"))
			fmt.Println(report.RenderStatementTable(c.BalanceRows()))
		default:
			return fmt.Errorf("unknown statement kind %q (income, balance, all)", kind)
		}
		return nil
	},
}

func init() {
	statementsCmd.Flags().Int("offset", 0, "quarter offset (-1, 0, 1)")
	statementsCmd.Flags().String("kind", "all", "statements to print (income, balance, all)")
}

// --- Ratios Command ---

var ratiosCmd = &cobra.Command{
	Use:   "ratios TICKER[:OFFSET]",
	Short: "Print the health summary and ratios of a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildOne(cmd, args[0])
		if err != nil {
			return err
		}

		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			fmt.Println(report.RenderCompany(c))
		} else {
			fact, ok := c.Consolidated[year]
			if !ok {
				return fmt.Errorf("%s has no consolidated year %d (have %v)", c.Ticker, year, c.Years)
			}
			fmt.Println(report.RenderRatioTable(fact.Rows()))
		}

		peers, _ := cmd.Flags().GetStringSlice("peers")
		if len(peers) == 0 || c.Latest() == nil {
			return nil
		}
		target := c.Latest()
		var facts []*fundamental.Consolidated
		for _, p := range peers {
			pc, err := buildOne(cmd, p)
			if err != nil {
				fmt.Printf("%s %s: %v\n", warnStyle.Render("skipping peer"), p, err)
				continue
			}
			if fact, ok := pc.Consolidated[target.Year]; ok {
				facts = append(facts, fact)
			}
		}
		if len(facts) > 0 {
			fmt.Println(report.RenderPeers(fundamental.ComparePeers(target, facts)))
		}
		return nil
	},
}

func init() {
	ratiosCmd.Flags().Int("offset", 0, "quarter offset (-1, 0, 1)")
	ratiosCmd.Flags().Int("year", 0, "print a single fiscal year as a table")
	ratiosCmd.Flags().StringSlice("peers", nil, "peer tickers to rank the latest year against")
}

// --- Check Command ---

var checkCmd = &cobra.Command{
	Use:   "check [TICKER[:OFFSET]...]",
	Short: "Validate the config and the statement identities of every company",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headStyle.Render("Configuration"))
		cfgErr := cfg.Validate()
		if cfgErr != nil {
			fmt.Printf("  %s %v\n", failStyle.Render("✗"), cfgErr)
		} else {
			fmt.Printf("  %s valid\n", okStyle.Render("✓"))
		}
		for _, s := range config.CheckSettings(cfg) {
			mark := okStyle.Render("✓")
			detail := fmt.Sprintf("%s (%s)", s.Value, s.Source)
			switch {
			case !s.IsSet:
				mark, detail = warnStyle.Render("-"), "not set"
			case strings.Contains(s.Name, "directory") && !s.Exists:
				mark, detail = failStyle.Render("✗"), s.Value+" does not exist"
			}
			fmt.Printf("  %s %-22s %s\n", mark, s.Name+":", detail)
		}
		if cfgErr != nil {
			return cfgErr
		}

		companies, err := companiesFromArgs(cmd, args)
		if err != nil {
			return err
		}
		src, err := engine.SourcesFromConfig(cfg)
		if err != nil {
			return err
		}
		policy := engine.PolicyFromConfig(cfg.Policy)

		fmt.Println(headStyle.Render("Statements"))
		failed := 0
		for _, cc := range companies {
			c, err := company.Check(cmd.Context(), cc.Ticker, cc.QuarterOffset, src.Statements, policy, logger)
			if err != nil {
				failed++
				fmt.Printf("  %s %s: %v\n", failStyle.Render("✗"), cc.Ticker, err)
				continue
			}
			years := company.QualifyingYears(company.GroupIncomeByYear(c.IncomeStatements),
				company.YearEndBalanceSheets(c.BalanceSheets), policy)
			fmt.Printf("  %s %s: %d income statements, %d balance sheets, years %v\n",
				okStyle.Render("✓"), cc.Ticker, len(c.IncomeStatements), len(c.BalanceSheets), years)
		}
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d", errPartial, failed, len(companies))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().Int("offset", 0, "quarter offset for tickers given without one (-1, 0, 1)")
}

// --- Period Command ---

var periodCmd = &cobra.Command{
	Use:   "period DATE",
	Short: "Show the fiscal period of a statement date",
	Long: `Show the fiscal quarter and year a statement date maps to.

Examples:
  finratios period 12/31/2023
  finratios period 2023-09-30 --offset 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := utils.ParseStatementDate(args[0])
		if err != nil {
			return err
		}
		offset, _ := cmd.Flags().GetInt("offset")
		p, err := statement.NormalizePeriod(d, offset)
		if err != nil {
			return err
		}
		fmt.Printf("%s (calendar Q%d, offset %s) -> %s\n",
			utils.DateKey(d), statement.CalendarQuarter(d), strconv.Itoa(offset), p)
		return nil
	},
}

func init() {
	periodCmd.Flags().Int("offset", 0, "quarter offset (-1, 0, 1)")
}
