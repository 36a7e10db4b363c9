package fundamental

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// Ratio categories, in reporting order.
const (
	CategoryProfitability  = "1 - Profitability Ratios"
	CategoryLiquidity      = "2 - Liquidity Ratios"
	CategoryWorkingCapital = "3 - Working Capital Ratios"
	CategoryCoverage       = "4 - Interest Coverage Ratios"
	CategoryLeverage       = "5 - Leverage Ratios"
	CategoryIndustry       = "6 - Industry Specific Ratios"
	CategoryValuation      = "7 - Valuation Ratios"
	CategoryOperating      = "8 - Operating Ratios"
	CategoryAltman         = "9 - Altman Z-Score"
)

// ErrUndefinedRatio matches any *UndefinedRatioError with errors.Is.
var ErrUndefinedRatio = errors.New("undefined ratio")

// ErrIncompleteInput is returned when a consolidated fact is missing one of
// its statements.
var ErrIncompleteInput = errors.New("consolidated input requires an income statement and both balance sheets")

// UndefinedRatioError reports an unguarded ratio whose denominator was zero.
type UndefinedRatioError struct {
	Ticker string
	Year   int
	Ratio  string
}

func (e *UndefinedRatioError) Error() string {
	return fmt.Sprintf("%s %d: ratio %q has a zero denominator", e.Ticker, e.Year, e.Ratio)
}

// Is reports whether target is ErrUndefinedRatio.
func (e *UndefinedRatioError) Is(target error) bool {
	return target == ErrUndefinedRatio
}

// Input carries everything needed to build a Consolidated fact.
type Input struct {
	Ticker       string
	Year         int
	Income       *statement.IncomeStatement // annual, combined from quarters
	Balance      *statement.BalanceSheet    // year-end sheet of Year
	PriorBalance *statement.BalanceSheet    // year-end sheet of Year-1
	CashFlow     *statement.CashFlowStatement
	MarketClose  float64

	// Lenient turns undefined ratios into NaN instead of failing.
	Lenient bool
}

// RatioValue is one computed ratio.
type RatioValue struct {
	Key      string  `json:"key"`
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
}

// Consolidated is one company-year: the annual income statement, the
// current and prior year-end balance sheets, the market close after the
// year end and every ratio derived from them. The balance sheets are shared
// with the company that built them, never copied.
type Consolidated struct {
	Ticker       string
	Year         int
	Income       *statement.IncomeStatement
	Balance      *statement.BalanceSheet
	PriorBalance *statement.BalanceSheet
	CashFlow     *statement.CashFlowStatement
	MarketClose  float64

	WorkingCapital      float64
	PriorWorkingCapital float64
	MarketCap           float64
	NetDebt             float64
	EnterpriseValue     float64
	Capex               float64

	ratios    []RatioValue
	byKey     map[string]int
	undefined []string
	lenient   bool
	err       error
}

// MarketCloseDate returns the date whose close prices a year-end balance
// sheet: the calendar day after the statement date.
func MarketCloseDate(statementDate time.Time) time.Time {
	return utils.NextCalendarDay(statementDate)
}

// NewConsolidated builds a company-year fact and computes all its ratios.
// Guarded ratios with a zero denominator are 0. Any other zero denominator
// fails with *UndefinedRatioError unless in.Lenient is set, in which case the
// ratio is NaN and listed by Undefined.
func NewConsolidated(in Input) (*Consolidated, error) {
	if in.Income == nil || in.Balance == nil || in.PriorBalance == nil {
		return nil, fmt.Errorf("%s %d: %w", in.Ticker, in.Year, ErrIncompleteInput)
	}

	bs, prior, is := in.Balance, in.PriorBalance, in.Income
	c := &Consolidated{
		Ticker:       in.Ticker,
		Year:         in.Year,
		Income:       is,
		Balance:      bs,
		PriorBalance: prior,
		CashFlow:     in.CashFlow,
		MarketClose:  in.MarketClose,
		lenient:      in.Lenient,
	}

	c.WorkingCapital = bs.WorkingCapital()
	c.PriorWorkingCapital = prior.WorkingCapital()
	c.MarketCap = in.MarketClose * bs.SharesOutstanding
	c.NetDebt = bs.TotalLiabilities - bs.Cash
	c.EnterpriseValue = c.MarketCap + bs.TotalLiabilities - bs.Cash
	c.Capex = bs.GrossPPE - prior.GrossPPE + is.DepreciationAndAmortization

	if err := c.compute(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Consolidated) compute() error {
	c.byKey = make(map[string]int, len(ratioTable))
	values := make(map[string]float64, len(ratioTable))
	done := make(map[string]bool, len(ratioTable))

	// Ratios may refer to others that are reported later (P/E uses basic
	// EPS, the Z-score uses its components), so evaluation is on demand.
	var eval func(key string) float64
	eval = func(key string) float64 {
		if done[key] {
			return values[key]
		}
		def, ok := ratioIndex[key]
		if !ok {
			panic("fundamental: unknown ratio " + key)
		}
		done[key] = true
		v := c.evaluate(def, eval)
		values[key] = v
		return v
	}

	for _, def := range ratioTable {
		if def.when != nil && !def.when(c) {
			continue
		}
		v := eval(def.key)
		if c.err != nil {
			return c.err
		}
		c.byKey[def.key] = len(c.ratios)
		c.ratios = append(c.ratios, RatioValue{
			Key:      def.key,
			Category: def.category,
			Label:    def.label,
			Value:    v,
		})
	}
	return nil
}

func (c *Consolidated) evaluate(def *ratioDef, get func(string) float64) float64 {
	num := def.num(c, get)
	if def.den == nil {
		if math.IsNaN(num) && c.lenient {
			c.undefined = append(c.undefined, def.key)
		}
		return num
	}
	den := def.den(c, get)
	// An operand built on an undefined ratio is undefined too. Strict mode
	// has already failed on the ratio it came from.
	if math.IsNaN(num) || math.IsNaN(den) {
		if c.lenient {
			c.undefined = append(c.undefined, def.key)
		}
		return math.NaN()
	}
	if den != 0 {
		return num / den
	}
	if def.guarded {
		return 0
	}
	if !c.lenient {
		if c.err == nil {
			c.err = &UndefinedRatioError{Ticker: c.Ticker, Year: c.Year, Ratio: def.label}
		}
		return math.NaN()
	}
	c.undefined = append(c.undefined, def.key)
	return math.NaN()
}

// Ratios returns the computed ratios in reporting order.
func (c *Consolidated) Ratios() []RatioValue {
	out := make([]RatioValue, len(c.ratios))
	copy(out, c.ratios)
	return out
}

// Ratio returns the value of the ratio with the given key.
func (c *Consolidated) Ratio(key string) (float64, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return 0, false
	}
	return c.ratios[i].Value, true
}

// MustRatio is like Ratio but returns NaN for unknown keys.
func (c *Consolidated) MustRatio(key string) float64 {
	v, ok := c.Ratio(key)
	if !ok {
		return math.NaN()
	}
	return v
}

// Undefined lists the keys of ratios left undefined in lenient mode.
func (c *Consolidated) Undefined() []string {
	out := make([]string, len(c.undefined))
	copy(out, c.undefined)
	return out
}

// AltmanZ returns the Altman Z-score.
func (c *Consolidated) AltmanZ() float64 {
	return c.MustRatio(KeyAltmanZ)
}

// Rows returns the ratios as output rows.
func (c *Consolidated) Rows() []models.RatioRow {
	rows := make([]models.RatioRow, 0, len(c.ratios))
	for _, r := range c.ratios {
		rows = append(rows, models.RatioRow{
			Company:   c.Ticker,
			Year:      c.Year,
			RatioType: r.Category,
			Ratio:     r.Label,
			Value:     r.Value,
		})
	}
	return rows
}

func (c *Consolidated) String() string {
	return fmt.Sprintf("%s: %d", c.Ticker, c.Year)
}
