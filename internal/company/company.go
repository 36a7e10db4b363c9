// Package company builds one ticker's derived statements and pairs them into
// annual consolidated facts.
package company

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seenimoa/finratios/internal/analysis/fundamental"
	"github.com/seenimoa/finratios/internal/datasource"
	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
)

// ErrNoPriceLookup is returned when facts need a market close but no price
// lookup was configured.
var ErrNoPriceLookup = errors.New("no price lookup configured")

// Policy controls which fiscal years become consolidated facts and how
// ratios treat zero denominators.
type Policy struct {
	// Years must be strictly greater than MinYear and MinConsolidatedYear.
	MinYear             int
	MinConsolidatedYear int
	// MinQuarters is the minimum number of quarterly income statements a
	// year needs; 0 accepts partial years.
	MinQuarters int
	// StrictRatios fails a year on an undefined ratio instead of recording NaN.
	StrictRatios bool
	// IncludeCashFlow reads cash flow statements when the source has them.
	IncludeCashFlow bool
}

// DefaultPolicy returns the standard year selection policy.
func DefaultPolicy() Policy {
	return Policy{
		MinYear:             2000,
		MinConsolidatedYear: 2001,
		StrictRatios:        true,
	}
}

// Sources bundles the inputs a company is built from.
type Sources struct {
	Statements datasource.StatementSource
	Prices     datasource.PriceLookup
}

// Company owns one ticker's derived statements and its consolidated facts.
type Company struct {
	Ticker        string
	QuarterOffset int

	IncomeStatements []*statement.IncomeStatement
	BalanceSheets    []*statement.BalanceSheet
	CashFlows        []*statement.CashFlowStatement

	Consolidated map[int]*fundamental.Consolidated
	Years        []int
}

// Build reads, derives and consolidates all statements of a ticker. Every
// statement that fails to derive is reported; if any fails the company is
// not built.
func Build(ctx context.Context, ticker string, offset int, src Sources, policy Policy, logger *zap.Logger) (*Company, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("ticker", ticker), zap.Int("quarter_offset", offset))

	if err := statement.ValidateOffset(offset); err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}

	c := &Company{
		Ticker:        ticker,
		QuarterOffset: offset,
		Consolidated:  make(map[int]*fundamental.Consolidated),
	}

	if err := c.load(ctx, src.Statements, policy, log); err != nil {
		return nil, err
	}

	groups := GroupIncomeByYear(c.IncomeStatements)
	yearEnd := YearEndBalanceSheets(c.BalanceSheets)
	years := QualifyingYears(groups, yearEnd, policy)

	log.Debug("statement groups",
		zap.Ints("income_years", sortedKeys(groups)),
		zap.Ints("year_end_years", sortedKeys(yearEnd)),
		zap.Ints("consolidated_years", years))

	cashByYear := groupCashFlowsByYear(c.CashFlows)

	for _, year := range years {
		fact, err := c.consolidate(ctx, year, groups[year], yearEnd, cashByYear[year], src.Prices, policy)
		if err != nil {
			return nil, err
		}
		if undefined := fact.Undefined(); len(undefined) > 0 {
			log.Warn("undefined ratios", zap.Int("year", year), zap.Strings("ratios", undefined))
		}
		c.Consolidated[year] = fact
		c.Years = append(c.Years, year)
	}

	log.Info("company built",
		zap.Int("income_statements", len(c.IncomeStatements)),
		zap.Int("balance_sheets", len(c.BalanceSheets)),
		zap.Int("consolidated", len(c.Years)))

	return c, nil
}

// Check derives every statement of a ticker without consolidating years or
// looking up prices. The returned company holds the statements that derived
// cleanly; the error collects the ones that did not.
func Check(ctx context.Context, ticker string, offset int, src datasource.StatementSource, policy Policy, logger *zap.Logger) (*Company, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := statement.ValidateOffset(offset); err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	c := &Company{
		Ticker:        ticker,
		QuarterOffset: offset,
		Consolidated:  make(map[int]*fundamental.Consolidated),
	}
	err := c.load(ctx, src, policy, logger.With(zap.String("ticker", ticker)))
	return c, err
}

func (c *Company) load(ctx context.Context, src datasource.StatementSource, policy Policy, log *zap.Logger) error {
	incRecs, err := src.Records(ctx, c.Ticker, models.KindIncome)
	if err != nil {
		return fmt.Errorf("%s income statements: %w", c.Ticker, err)
	}
	bsRecs, err := src.Records(ctx, c.Ticker, models.KindBalance)
	if err != nil {
		return fmt.Errorf("%s balance sheets: %w", c.Ticker, err)
	}

	var errs error
	for _, rec := range incRecs {
		s, err := statement.NewIncomeStatement(c.Ticker, c.QuarterOffset, rec)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		c.IncomeStatements = append(c.IncomeStatements, s)
	}

	for _, rec := range bsRecs {
		b, err := statement.NewBalanceSheet(c.Ticker, c.QuarterOffset, rec)
		if err != nil {
			var ie *statement.StatementIntegrityError
			if errors.As(err, &ie) {
				log.Error("balance sheet does not balance",
					zap.String("period", ie.Period.String()),
					zap.Float64("total_assets", ie.TotalAssets),
					zap.Float64("total_liabilities_and_equity", ie.TotalLiabilitiesAndEquity),
					zap.String("dump", ie.Dump()))
			}
			errs = multierr.Append(errs, err)
			continue
		}
		c.BalanceSheets = append(c.BalanceSheets, b)
	}

	if policy.IncludeCashFlow {
		cfRecs, err := src.Records(ctx, c.Ticker, models.KindCashFlow)
		switch {
		case errors.Is(err, datasource.ErrStatementsNotFound):
			log.Debug("no cash flow statements")
		case err != nil:
			errs = multierr.Append(errs, fmt.Errorf("%s cash flow statements: %w", c.Ticker, err))
		default:
			for _, rec := range cfRecs {
				cf, err := statement.NewCashFlowStatement(c.Ticker, c.QuarterOffset, rec)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				c.CashFlows = append(c.CashFlows, cf)
			}
		}
	}

	if errs != nil {
		return fmt.Errorf("%s: %d statement(s) failed: %w", c.Ticker, len(multierr.Errors(errs)), errs)
	}
	return nil
}

func (c *Company) consolidate(
	ctx context.Context,
	year int,
	quarters []*statement.IncomeStatement,
	yearEnd map[int]*statement.BalanceSheet,
	cashFlows []*statement.CashFlowStatement,
	prices datasource.PriceLookup,
	policy Policy,
) (*fundamental.Consolidated, error) {
	annual, err := statement.CombineIncomeStatements(c.Ticker, c.QuarterOffset, quarters...)
	if err != nil {
		return nil, err
	}

	var cf *statement.CashFlowStatement
	if len(cashFlows) > 0 {
		cf, err = statement.CombineCashFlowStatements(c.Ticker, c.QuarterOffset, cashFlows...)
		if err != nil {
			return nil, err
		}
	}

	bs := yearEnd[year]
	if prices == nil {
		return nil, fmt.Errorf("%s %d: %w", c.Ticker, year, ErrNoPriceLookup)
	}
	closeDate := fundamental.MarketCloseDate(bs.StatementDate)
	marketClose, err := prices.Close(ctx, c.Ticker, closeDate)
	if err != nil {
		return nil, fmt.Errorf("%s %d market close: %w", c.Ticker, year, err)
	}

	return fundamental.NewConsolidated(fundamental.Input{
		Ticker:       c.Ticker,
		Year:         year,
		Income:       annual,
		Balance:      bs,
		PriorBalance: yearEnd[year-1],
		CashFlow:     cf,
		MarketClose:  marketClose,
		Lenient:      !policy.StrictRatios,
	})
}

// GroupIncomeByYear groups statements by fiscal year, keeping their order
// within each year.
func GroupIncomeByYear(stmts []*statement.IncomeStatement) map[int][]*statement.IncomeStatement {
	groups := make(map[int][]*statement.IncomeStatement)
	for _, s := range stmts {
		groups[s.Year] = append(groups[s.Year], s)
	}
	return groups
}

// YearEndBalanceSheets picks the fiscal Q4 sheet of each year. When a year
// has several Q4 sheets the one with the latest statement date wins; on equal
// dates the first one seen wins.
func YearEndBalanceSheets(sheets []*statement.BalanceSheet) map[int]*statement.BalanceSheet {
	out := make(map[int]*statement.BalanceSheet)
	for _, b := range sheets {
		if b.Quarter != 4 {
			continue
		}
		cur, ok := out[b.Year]
		if !ok || b.StatementDate.After(cur.StatementDate) {
			out[b.Year] = b
		}
	}
	return out
}

// QualifyingYears returns, in ascending order, the years that have income
// statements, a year-end sheet for the year and the year before, pass both
// year floors and have at least policy.MinQuarters quarters.
func QualifyingYears(groups map[int][]*statement.IncomeStatement, yearEnd map[int]*statement.BalanceSheet, policy Policy) []int {
	var years []int
	for year, quarters := range groups {
		if len(quarters) == 0 || len(quarters) < policy.MinQuarters {
			continue
		}
		if year <= policy.MinYear || year <= policy.MinConsolidatedYear {
			continue
		}
		if yearEnd[year] == nil || yearEnd[year-1] == nil {
			continue
		}
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

func groupCashFlowsByYear(stmts []*statement.CashFlowStatement) map[int][]*statement.CashFlowStatement {
	groups := make(map[int][]*statement.CashFlowStatement)
	for _, s := range stmts {
		groups[s.Year] = append(groups[s.Year], s)
	}
	return groups
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Facts returns the consolidated facts in year order.
func (c *Company) Facts() []*fundamental.Consolidated {
	out := make([]*fundamental.Consolidated, 0, len(c.Years))
	for _, y := range c.Years {
		out = append(out, c.Consolidated[y])
	}
	return out
}

// Latest returns the most recent consolidated fact, or nil if there is none.
func (c *Company) Latest() *fundamental.Consolidated {
	if len(c.Years) == 0 {
		return nil
	}
	return c.Consolidated[c.Years[len(c.Years)-1]]
}

// IncomeRows returns the rows of every quarterly income statement.
func (c *Company) IncomeRows() []models.StatementRow {
	var rows []models.StatementRow
	for _, s := range c.IncomeStatements {
		rows = append(rows, s.Rows()...)
	}
	return rows
}

// BalanceRows returns the rows of every fiscal Q4 balance sheet.
func (c *Company) BalanceRows() []models.StatementRow {
	var rows []models.StatementRow
	for _, b := range c.BalanceSheets {
		if b.Quarter == 4 {
			rows = append(rows, b.Rows()...)
		}
	}
	return rows
}

// RatioRows returns the ratio rows of every consolidated fact in year order.
func (c *Company) RatioRows() []models.RatioRow {
	var rows []models.RatioRow
	for _, f := range c.Facts() {
		rows = append(rows, f.Rows()...)
	}
	return rows
}

func (c *Company) String() string {
	return c.Ticker
}
