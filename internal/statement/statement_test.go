package statement

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finratios/pkg/models"
)

func incomeRecord(d time.Time) models.RawRecord {
	return models.RawRecord{
		Ticker:        "ACME",
		StatementDate: d,
		Fields: map[string]float64{
			FieldGrossProfit:            400,
			FieldCostOfRevenue:          600,
			FieldOperatingIncome:        200,
			FieldSellingGeneralAdmin:    120,
			FieldResearchAndDevelopment: 50,
			FieldPretaxIncome:           180,
			FieldNetInterestIncome:      -10,
			FieldNetIncome:              144,
			FieldInterestExpense:        10,
			FieldEBIT:                   190,
			FieldReconciledDepreciation: 30,
			FieldDilutedEPS:             1.44,
		},
	}
}

func balanceRecord(d time.Time) models.RawRecord {
	return models.RawRecord{
		Ticker:        "ACME",
		StatementDate: d,
		Fields: map[string]float64{
			FieldCurrentAssets:                500,
			FieldCash:                         100,
			FieldCashAndShortTermInvestments:  150,
			FieldReceivables:                  80,
			FieldInventory:                    70,
			FieldTotalNonCurrentAssets:        1500,
			FieldNetPPE:                       600,
			FieldGrossPPE:                     900,
			FieldGoodwill:                     300,
			FieldOtherIntangibleAssets:        100,
			FieldCurrentLiabilities:           400,
			FieldPayables:                     120,
			FieldCurrentAccruedExpenses:       80,
			FieldTotalNonCurrentLiabilities:   600,
			FieldLongTermDebtAndCapitalLeases: 500,
			FieldTotalDebt:                    550,
			FieldStockholdersEquity:           950,
			FieldMinorityInterest:             50,
			FieldRetainedEarnings:             700,
			FieldOrdinarySharesNumber:         100,
		},
	}
}

func TestNewIncomeStatementDerivations(t *testing.T) {
	s, err := NewIncomeStatement("ACME", 0, incomeRecord(date(2023, 12, 31)))
	require.NoError(t, err)

	assert.Equal(t, FiscalPeriod{Quarter: 4, Year: 2023}, s.FiscalPeriod)
	assert.Equal(t, -600.0, s.COGS)
	assert.Equal(t, 1000.0, s.Revenue)
	assert.Equal(t, -120.0, s.SGA)
	assert.Equal(t, -50.0, s.ResearchAndDevelopment)
	assert.Equal(t, -30.0, s.OperatingExpenses)
	assert.Equal(t, -10.0, s.NetInterest)
	assert.Equal(t, -10.0, s.NetOther)
	assert.Equal(t, 36.0, s.Taxes)
	assert.InDelta(t, 0.2, s.TaxRate, 1e-12)
	assert.InDelta(t, 160.0, s.NOPAT, 1e-9)
	assert.Equal(t, 220.0, s.EBITDA)
	assert.Equal(t, 0.0, s.PreferredDividends)
	assert.Equal(t, s.Revenue, s.GrossProfit-s.COGS)
}

func TestNewIncomeStatementZeroPretax(t *testing.T) {
	rec := incomeRecord(date(2023, 6, 30))
	rec.Fields[FieldPretaxIncome] = 0
	rec.Fields[FieldNetIncome] = 0

	s, err := NewIncomeStatement("ACME", 0, rec)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.TaxRate)
	assert.Equal(t, s.OperatingIncome, s.NOPAT)
}

func TestNewIncomeStatementMissingField(t *testing.T) {
	rec := incomeRecord(date(2023, 6, 30))
	delete(rec.Fields, FieldEBIT)

	s, err := NewIncomeStatement("ACME", 0, rec)
	assert.Nil(t, s)
	require.Error(t, err)

	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, FieldEBIT, mf.Field)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestNewIncomeStatementBadOffset(t *testing.T) {
	_, err := NewIncomeStatement("ACME", 3, incomeRecord(date(2023, 6, 30)))
	assert.ErrorIs(t, err, ErrQuarterOffset)
}

func TestIncomeStatementAddIsPure(t *testing.T) {
	a, err := NewIncomeStatement("ACME", 0, incomeRecord(date(2023, 3, 31)))
	require.NoError(t, err)
	b, err := NewIncomeStatement("ACME", 0, incomeRecord(date(2023, 6, 30)))
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, sum.Revenue)
	assert.Equal(t, -1200.0, sum.COGS)
	assert.Equal(t, 288.0, sum.NetIncome)
	assert.Equal(t, a.StatementDate, sum.StatementDate)
	assert.Equal(t, a.FiscalPeriod, sum.FiscalPeriod)

	assert.Equal(t, 1000.0, a.Revenue)
	assert.Equal(t, 1000.0, b.Revenue)
}

func TestIncomeStatementAddNil(t *testing.T) {
	a, err := NewIncomeStatement("ACME", 0, incomeRecord(date(2023, 3, 31)))
	require.NoError(t, err)

	sum, err := a.Add(nil)
	assert.Nil(t, sum)
	assert.ErrorIs(t, err, ErrNilStatement)

	var missing *IncomeStatement
	_, err = missing.Add(a)
	assert.ErrorIs(t, err, ErrNilStatement)
}

func TestCombineNilStatement(t *testing.T) {
	a, err := NewIncomeStatement("ACME", 0, incomeRecord(date(2023, 3, 31)))
	require.NoError(t, err)

	_, err = CombineIncomeStatements("ACME", 0, a, nil)
	assert.ErrorIs(t, err, ErrNilStatement)

	_, err = CombineCashFlowStatements("ACME", 0, nil)
	assert.ErrorIs(t, err, ErrNilStatement)
}

func TestCombineIncomeStatements(t *testing.T) {
	dates := []time.Time{date(2023, 6, 30), date(2023, 3, 31), date(2023, 12, 31), date(2023, 9, 30)}
	var stmts []*IncomeStatement
	for _, d := range dates {
		rec := incomeRecord(d)
		rec.Fields[FieldGrossProfit] = 60
		rec.Fields[FieldCostOfRevenue] = 40
		s, err := NewIncomeStatement("ACME", 0, rec)
		require.NoError(t, err)
		stmts = append(stmts, s)
	}

	annual, err := CombineIncomeStatements("ACME", 0, stmts...)
	require.NoError(t, err)
	assert.Equal(t, 400.0, annual.Revenue)
	assert.Equal(t, -160.0, annual.COGS)
	assert.Equal(t, date(2023, 12, 31), annual.StatementDate)
	assert.Equal(t, FiscalPeriod{Quarter: 4, Year: 2023}, annual.FiscalPeriod)
	assert.Equal(t, 760.0, annual.EBIT)
}

func TestCombineIncomeStatementsEmpty(t *testing.T) {
	_, err := CombineIncomeStatements("ACME", 0)
	assert.ErrorIs(t, err, ErrNoStatements)
}

func TestIncomeStatementRows(t *testing.T) {
	s, err := NewIncomeStatement("ACME", 0, incomeRecord(date(2023, 12, 31)))
	require.NoError(t, err)

	rows := s.Rows()
	require.Len(t, rows, 8)
	assert.Equal(t, "1.1 - Revenue", rows[0].Account)
	assert.Equal(t, 1000.0, rows[0].Amount)
	assert.Equal(t, "4.1 - Taxes", rows[7].Account)
	assert.Equal(t, "2023-12-31", rows[7].StatementDate)
	assert.Equal(t, 4, rows[7].Quarter)
}

func TestNewBalanceSheetDerivations(t *testing.T) {
	b, err := NewBalanceSheet("ACME", 0, balanceRecord(date(2023, 12, 31)))
	require.NoError(t, err)

	assert.Equal(t, 50.0, b.ShortTermInvestments)
	assert.Equal(t, 200.0, b.OtherCurrentAssets)
	assert.Equal(t, 500.0, b.OtherNonCurrentAssets)
	assert.Equal(t, 2000.0, b.TotalAssets)
	assert.Equal(t, 200.0, b.OtherCurrentLiabilities)
	assert.Equal(t, 100.0, b.OtherLongTermLiabilities)
	assert.Equal(t, 1000.0, b.TotalLiabilities)
	assert.Equal(t, 1000.0, b.TotalEquity)
	assert.Equal(t, b.TotalAssets, b.TotalLiabilitiesAndEquity)
	assert.Equal(t, 100.0, b.WorkingCapital())
}

func TestNewBalanceSheetMinorityInterestOptional(t *testing.T) {
	rec := balanceRecord(date(2023, 12, 31))
	delete(rec.Fields, FieldMinorityInterest)
	rec.Fields[FieldStockholdersEquity] = 1000

	b, err := NewBalanceSheet("ACME", 0, rec)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.MinorityInterest)
	assert.Equal(t, 1000.0, b.TotalEquity)
}

func TestNewBalanceSheetIntegrityViolation(t *testing.T) {
	rec := balanceRecord(date(2023, 12, 31))
	rec.Fields[FieldStockholdersEquity] = 940

	b, err := NewBalanceSheet("ACME", 0, rec)
	assert.Nil(t, b)

	var ie *StatementIntegrityError
	require.True(t, errors.As(err, &ie))
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Equal(t, 2000.0, ie.TotalAssets)
	assert.Equal(t, 1990.0, ie.TotalLiabilitiesAndEquity)
	assert.Contains(t, err.Error(), "A = L + E did not compute")
	assert.Contains(t, ie.Dump(), "total_assets")
	assert.Contains(t, ie.Dump(), "2,000")
}

func TestNewBalanceSheetMissingField(t *testing.T) {
	rec := balanceRecord(date(2023, 12, 31))
	delete(rec.Fields, FieldGoodwill)

	_, err := NewBalanceSheet("ACME", 0, rec)
	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, FieldGoodwill, mf.Field)
}

func TestBalanceSheetRows(t *testing.T) {
	b, err := NewBalanceSheet("ACME", 0, balanceRecord(date(2023, 12, 31)))
	require.NoError(t, err)

	rows := b.Rows()
	require.Len(t, rows, 15)
	assert.Equal(t, "1.1 - Cash & Cash Equivalents", rows[0].Account)
	assert.Equal(t, "5.1 - Stockholders Equity", rows[14].Account)
	assert.Equal(t, 1000.0, rows[14].Amount)
}

func TestCashFlowStatement(t *testing.T) {
	var stmts []*CashFlowStatement
	for _, d := range []time.Time{date(2023, 3, 31), date(2023, 12, 31)} {
		c, err := NewCashFlowStatement("ACME", 0, models.RawRecord{
			StatementDate: d,
			Fields:        map[string]float64{FieldCapitalExpenditure: -25},
		})
		require.NoError(t, err)
		stmts = append(stmts, c)
	}

	annual, err := CombineCashFlowStatements("ACME", 0, stmts...)
	require.NoError(t, err)
	assert.Equal(t, -50.0, annual.CapitalExpenditure)
	assert.Equal(t, date(2023, 12, 31), annual.StatementDate)

	_, err = NewCashFlowStatement("ACME", 0, models.RawRecord{StatementDate: date(2023, 3, 31)})
	assert.ErrorIs(t, err, ErrMissingField)
}
