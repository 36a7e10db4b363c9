package statement

import (
	"fmt"
	"time"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// CashFlowStatement holds the cash flow items used by the ratio engine.
type CashFlowStatement struct {
	Ticker        string
	StatementDate time.Time
	FiscalPeriod

	CapitalExpenditure float64
}

// NewCashFlowStatement derives a cash flow statement from a raw record.
func NewCashFlowStatement(ticker string, offset int, rec models.RawRecord) (*CashFlowStatement, error) {
	if rec.StatementDate.IsZero() {
		return nil, &MissingFieldError{Statement: "cash flow statement", Ticker: ticker, Field: "StatementDate"}
	}
	period, err := NormalizePeriod(rec.StatementDate, offset)
	if err != nil {
		return nil, err
	}

	date := utils.Day(rec.StatementDate)
	capex, ok := rec.Lookup(FieldCapitalExpenditure)
	if !ok {
		return nil, &MissingFieldError{
			Statement:     "cash flow statement",
			Ticker:        ticker,
			StatementDate: date,
			Field:         FieldCapitalExpenditure,
		}
	}

	return &CashFlowStatement{
		Ticker:             ticker,
		StatementDate:      date,
		FiscalPeriod:       period,
		CapitalExpenditure: capex,
	}, nil
}

// CombineCashFlowStatements sums capital expenditure over a group of
// quarterly statements, dated at the latest input date.
func CombineCashFlowStatements(ticker string, offset int, stmts ...*CashFlowStatement) (*CashFlowStatement, error) {
	if len(stmts) == 0 {
		return nil, fmt.Errorf("combine %s cash flows: %w", ticker, ErrNoStatements)
	}

	var capex float64
	dates := make([]time.Time, 0, len(stmts))
	for _, st := range stmts {
		if st == nil {
			return nil, fmt.Errorf("combine %s cash flows: %w", ticker, ErrNilStatement)
		}
		capex += st.CapitalExpenditure
		dates = append(dates, st.StatementDate)
	}

	return NewCashFlowStatement(ticker, offset, models.RawRecord{
		Ticker:        ticker,
		StatementDate: utils.LatestDate(dates...),
		Fields:        map[string]float64{FieldCapitalExpenditure: capex},
	})
}

func (c *CashFlowStatement) String() string {
	return fmt.Sprintf("%s: %d-%d", c.Ticker, c.Quarter, c.Year)
}
