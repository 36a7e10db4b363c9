package statement

import (
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// IncomeStatement is the derived view of one quarter's income statement.
//
// Expense lines (COGS, SGA, R&D) are stored with the sign flipped from the
// raw record, so they are normally negative numbers. Revenue is reconstructed
// as GrossProfit - COGS.
type IncomeStatement struct {
	Ticker        string
	StatementDate time.Time
	FiscalPeriod

	GrossProfit                 float64
	COGS                        float64
	Revenue                     float64
	OperatingIncome             float64
	SGA                         float64
	ResearchAndDevelopment      float64
	OperatingExpenses           float64
	PretaxIncome                float64
	NetInterest                 float64
	NetOther                    float64
	NetIncome                   float64
	Taxes                       float64
	TaxRate                     float64
	NOPAT                       float64
	InterestExpense             float64
	EBIT                        float64
	DepreciationAndAmortization float64
	EBITDA                      float64
	PreferredDividends          float64
	DilutedEPS                  float64
}

// NewIncomeStatement derives an income statement from a raw record.
func NewIncomeStatement(ticker string, offset int, rec models.RawRecord) (*IncomeStatement, error) {
	if rec.StatementDate.IsZero() {
		return nil, &MissingFieldError{Statement: "income statement", Ticker: ticker, Field: "StatementDate"}
	}
	period, err := NormalizePeriod(rec.StatementDate, offset)
	if err != nil {
		return nil, err
	}
	return deriveIncome(ticker, utils.Day(rec.StatementDate), period, rec.Fields)
}

func deriveIncome(ticker string, date time.Time, period FiscalPeriod, fields map[string]float64) (*IncomeStatement, error) {
	r := &fieldReader{fields: fields}
	s := &IncomeStatement{Ticker: ticker, StatementDate: date, FiscalPeriod: period}

	s.GrossProfit = r.required(FieldGrossProfit)
	s.COGS = -r.required(FieldCostOfRevenue)
	s.OperatingIncome = r.required(FieldOperatingIncome)
	s.SGA = -r.required(FieldSellingGeneralAdmin)
	s.ResearchAndDevelopment = -r.required(FieldResearchAndDevelopment)
	s.PretaxIncome = r.required(FieldPretaxIncome)
	s.NetInterest = r.required(FieldNetInterestIncome)
	s.NetIncome = r.required(FieldNetIncome)
	s.InterestExpense = r.required(FieldInterestExpense)
	s.EBIT = r.required(FieldEBIT)
	s.DepreciationAndAmortization = r.required(FieldReconciledDepreciation)
	s.DilutedEPS = r.required(FieldDilutedEPS)
	s.PreferredDividends = r.optional(FieldPreferredStockDividends)

	if r.missing != "" {
		return nil, &MissingFieldError{
			Statement:     "income statement",
			Ticker:        ticker,
			StatementDate: date,
			Field:         r.missing,
		}
	}

	s.Revenue = s.GrossProfit - s.COGS
	s.OperatingExpenses = (s.OperatingIncome - s.GrossProfit) - s.SGA - s.ResearchAndDevelopment
	s.NetOther = (s.PretaxIncome - s.OperatingIncome) - s.NetInterest
	s.Taxes = s.PretaxIncome - s.NetIncome
	if s.PretaxIncome != 0 {
		s.TaxRate = s.Taxes / s.PretaxIncome
	}
	s.NOPAT = s.OperatingIncome * (1 - s.TaxRate)
	s.EBITDA = s.EBIT + s.DepreciationAndAmortization

	return s, nil
}

// rawFields reconstructs the raw line items the statement was derived from.
func (s *IncomeStatement) rawFields() map[string]float64 {
	return map[string]float64{
		FieldGrossProfit:             s.GrossProfit,
		FieldCostOfRevenue:           -s.COGS,
		FieldOperatingIncome:         s.OperatingIncome,
		FieldSellingGeneralAdmin:     -s.SGA,
		FieldResearchAndDevelopment:  -s.ResearchAndDevelopment,
		FieldPretaxIncome:            s.PretaxIncome,
		FieldNetInterestIncome:       s.NetInterest,
		FieldNetIncome:               s.NetIncome,
		FieldInterestExpense:         s.InterestExpense,
		FieldEBIT:                    s.EBIT,
		FieldReconciledDepreciation:  s.DepreciationAndAmortization,
		FieldDilutedEPS:              s.DilutedEPS,
		FieldPreferredStockDividends: s.PreferredDividends,
	}
}

// Add returns a new statement whose reported line items are the element-wise
// sum of s and other. Identity (ticker, date, period) is taken from s, and
// the derived items are recomputed from the sums. Neither input is modified.
func (s *IncomeStatement) Add(other *IncomeStatement) (*IncomeStatement, error) {
	if s == nil || other == nil {
		return nil, fmt.Errorf("add income statements: %w", ErrNilStatement)
	}
	sum := s.rawFields()
	for k, v := range other.rawFields() {
		sum[k] += v
	}
	return deriveIncome(s.Ticker, s.StatementDate, s.FiscalPeriod, sum)
}

var (
	// ErrNoStatements is returned when combining an empty set of statements.
	ErrNoStatements = errors.New("no statements to combine")
	// ErrNilStatement is returned when a statement to add or combine is nil.
	ErrNilStatement = errors.New("nil statement")
)

// CombineIncomeStatements sums a group of quarterly statements into one
// annual statement. The result carries the latest statement date among the
// inputs and the fiscal period derived from that date at the given offset.
func CombineIncomeStatements(ticker string, offset int, stmts ...*IncomeStatement) (*IncomeStatement, error) {
	if len(stmts) == 0 {
		return nil, fmt.Errorf("combine %s: %w", ticker, ErrNoStatements)
	}

	sum := make(map[string]float64)
	dates := make([]time.Time, 0, len(stmts))
	for _, st := range stmts {
		if st == nil {
			return nil, fmt.Errorf("combine %s: %w", ticker, ErrNilStatement)
		}
		for k, v := range st.rawFields() {
			sum[k] += v
		}
		dates = append(dates, st.StatementDate)
	}

	latest := utils.LatestDate(dates...)
	period, err := NormalizePeriod(latest, offset)
	if err != nil {
		return nil, err
	}
	return deriveIncome(ticker, latest, period, sum)
}

// LineItems returns the derived items in reporting order.
func (s *IncomeStatement) LineItems() []LineItem {
	return []LineItem{
		{"revenue", s.Revenue},
		{"cogs", s.COGS},
		{"gross_profit", s.GrossProfit},
		{"selling_general_and_admin", s.SGA},
		{"research_and_development", s.ResearchAndDevelopment},
		{"operating_expenses", s.OperatingExpenses},
		{"operating_income", s.OperatingIncome},
		{"net_interest_exp", s.NetInterest},
		{"net_other_exp", s.NetOther},
		{"pretax_income", s.PretaxIncome},
		{"taxes", s.Taxes},
		{"net_income", s.NetIncome},
	}
}

// Dump renders the statement's line items for diagnostics.
func (s *IncomeStatement) Dump() string {
	return dumpLineItems(s.LineItems(), 25)
}

// Rows returns the statement as output rows.
func (s *IncomeStatement) Rows() []models.StatementRow {
	return buildRows(s.Ticker, s.StatementDate, s.FiscalPeriod, []accountLine{
		{"1 - Gross Profit", "1.1 - Revenue", s.Revenue},
		{"1 - Gross Profit", "1.2 - COGS", s.COGS},
		{"2 - Operating Expenses", "2.1 - SG&A", s.SGA},
		{"2 - Operating Expenses", "2.2 - R&D", s.ResearchAndDevelopment},
		{"2 - Operating Expenses", "2.3 - Operating Expenses", s.OperatingExpenses},
		{"3 - Other Income/Expenses", "3.1 - Net Interest Expense", s.NetInterest},
		{"3 - Other Income/Expenses", "3.2 - Net Other Expenses", s.NetOther},
		{"4 - Taxes", "4.1 - Taxes", s.Taxes},
	})
}

func (s *IncomeStatement) String() string {
	return fmt.Sprintf("IncomeStatement: %s %s", s.Ticker, s.FiscalPeriod)
}
