package fundamental

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finratios/internal/statement"
)

const eps = 1e-9

func sampleIncome() *statement.IncomeStatement {
	return &statement.IncomeStatement{
		Ticker:                      "ACME",
		StatementDate:               time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		FiscalPeriod:                statement.FiscalPeriod{Quarter: 4, Year: 2023},
		GrossProfit:                 400,
		COGS:                        -600,
		Revenue:                     1000,
		OperatingIncome:             200,
		SGA:                         -120,
		ResearchAndDevelopment:      -50,
		NetIncome:                   144,
		NOPAT:                       160,
		InterestExpense:             10,
		EBIT:                        190,
		DepreciationAndAmortization: 30,
		EBITDA:                      220,
		PreferredDividends:          4,
		DilutedEPS:                  1.38,
	}
}

func sampleBalance() *statement.BalanceSheet {
	return &statement.BalanceSheet{
		Ticker:               "ACME",
		StatementDate:        time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		FiscalPeriod:         statement.FiscalPeriod{Quarter: 4, Year: 2023},
		CurrentAssets:        500,
		Cash:                 100,
		ShortTermInvestments: 50,
		AccountsReceivable:   80,
		Inventory:            70,
		CurrentLiabilities:   400,
		AccountsPayable:      120,
		GrossPPE:             900,
		TotalAssets:          2000,
		TotalLiabilities:     1000,
		TotalEquity:          1000,
		TotalDebt:            550,
		RetainedEarnings:     700,
		SharesOutstanding:    100,
	}
}

func samplePriorBalance() *statement.BalanceSheet {
	return &statement.BalanceSheet{
		Ticker:             "ACME",
		StatementDate:      time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
		FiscalPeriod:       statement.FiscalPeriod{Quarter: 4, Year: 2022},
		CurrentAssets:      450,
		CurrentLiabilities: 350,
		AccountsReceivable: 60,
		Inventory:          50,
		AccountsPayable:    100,
		GrossPPE:           850,
		TotalAssets:        1800,
		TotalLiabilities:   900,
		TotalEquity:        900,
		TotalDebt:          540,
		SharesOutstanding:  100,
	}
}

func sampleInput() Input {
	return Input{
		Ticker:       "ACME",
		Year:         2023,
		Income:       sampleIncome(),
		Balance:      sampleBalance(),
		PriorBalance: samplePriorBalance(),
		MarketClose:  20,
	}
}

func TestNewConsolidatedRatios(t *testing.T) {
	c, err := NewConsolidated(sampleInput())
	require.NoError(t, err)

	want := map[string]float64{
		KeyGrossMargin:            0.4,
		KeyOperatingMargin:        0.2,
		KeyEBITDAMargin:           0.22,
		KeyNetProfitMargin:        0.144,
		KeyCurrentRatio:           1.25,
		KeyQuickRatio:             0.575,
		KeyCashRatio:              0.25,
		KeyARDays:                 29.2,
		KeyARTurnover:             1000.0 / 70,
		KeyInventoryDays:          70 * 365.0 / 600,
		KeyInventoryTurnover:      10,
		KeyAPDays:                 73,
		KeyAPTurnover:             600.0 / 110,
		KeyCashConversionCycle:    70*365.0/600 + 29.2 - 73,
		KeyWorkingCapitalTurnover: 10,
		KeyEBITInterestCoverage:   19,
		KeyEBITDAInterestCoverage: 22,
		KeyDebtToCapital:          550.0 / 1550,
		KeyDebtToEquity:           0.55,
		KeyDebtToEnterpriseValue:  1000.0 / 2900,
		KeyEquityMultiplierBook:   2,
		KeyEquityMultiplierMarket: 1.45,
		KeyRnDToSales:             0.05,
		KeyCapexToSales:           0.08,
		KeyMarketToBook:           2,
		KeyPriceToEarnings:        20 / 1.4,
		KeyMarketToSales:          2,
		KeyEVToEBITDA:             2900.0 / 220,
		KeyEVToSales:              2.9,
		KeyEPSDiluted:             1.38,
		KeyEPSBasic:               1.4,
		KeySharePrice:             20,
		KeySharesOutstanding:      100,
		KeyMarketCap:              2000,
		KeyNetDebt:                900,
		KeyEnterpriseValue:        2900,
		KeyAssetTurnover:          1000.0 / 1900,
		KeyROA:                    0.072,
		KeyROE:                    0.144,
		KeyROIC:                   0.08,
		KeyAltmanA:                0.05,
		KeyAltmanB:                0.35,
		KeyAltmanC:                0.095,
		KeyAltmanD:                2,
		KeyAltmanE:                0.5,
		KeyAltmanZ:                2.5635,
	}

	for key, v := range want {
		got, ok := c.Ratio(key)
		require.True(t, ok, key)
		assert.InDelta(t, v, got, 1e-6, key)
	}
	assert.Empty(t, c.Undefined())
}

func TestAltmanRecomposition(t *testing.T) {
	c, err := NewConsolidated(sampleInput())
	require.NoError(t, err)

	z := 1.2*c.MustRatio(KeyAltmanA) + 1.4*c.MustRatio(KeyAltmanB) + 3.3*c.MustRatio(KeyAltmanC) +
		0.6*c.MustRatio(KeyAltmanD) + 1.0*c.MustRatio(KeyAltmanE)
	assert.InDelta(t, z, c.AltmanZ(), eps)
}

func TestRowsOrderAndLabels(t *testing.T) {
	c, err := NewConsolidated(sampleInput())
	require.NoError(t, err)

	rows := c.Rows()
	require.Len(t, rows, 46)
	assert.Equal(t, "1.1 - Gross Margin", rows[0].Ratio)
	assert.Equal(t, CategoryProfitability, rows[0].RatioType)
	assert.Equal(t, "2.3 - Cash Ratio", rows[6].Ratio)
	assert.Equal(t, "9.1 - Altman Z-Score (1.2A + 1.4B + 3.3C + 0.6D + 1.0E)", rows[40].Ratio)
	assert.Equal(t, "9.1.E - Total Sales / Total Assets", rows[45].Ratio)
	for _, r := range rows {
		assert.Equal(t, "ACME", r.Company)
		assert.Equal(t, 2023, r.Year)
	}

	keys := RatioKeys()
	assert.Len(t, keys, 47)
	assert.Equal(t, KeyGrossMargin, keys[0])
}

func TestZeroRevenueGuards(t *testing.T) {
	in := sampleInput()
	in.Income.Revenue = 0
	in.Lenient = true

	c, err := NewConsolidated(in)
	require.NoError(t, err)

	for _, key := range []string{KeyGrossMargin, KeyOperatingMargin, KeyEBITDAMargin, KeyNetProfitMargin, KeyARDays} {
		assert.Equal(t, 0.0, c.MustRatio(key), key)
	}
	assert.True(t, math.IsNaN(c.MustRatio(KeyRnDToSales)))
	assert.Contains(t, c.Undefined(), KeyRnDToSales)
	assert.Contains(t, c.Undefined(), KeyMarketToSales)
}

func TestZeroRevenueStrict(t *testing.T) {
	in := sampleInput()
	in.Income.Revenue = 0

	c, err := NewConsolidated(in)
	assert.Nil(t, c)

	var ue *UndefinedRatioError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "6.1 - R&D-to-Sales", ue.Ratio)
	assert.ErrorIs(t, err, ErrUndefinedRatio)
}

func TestZeroInterestExpense(t *testing.T) {
	in := sampleInput()
	in.Income.InterestExpense = 0

	c, err := NewConsolidated(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.MustRatio(KeyEBITInterestCoverage))
	assert.Equal(t, 0.0, c.MustRatio(KeyEBITDAInterestCoverage))
}

func TestZeroCOGS(t *testing.T) {
	in := sampleInput()
	in.Income.COGS = 0

	c, err := NewConsolidated(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.MustRatio(KeyAPDays))
	assert.Equal(t, 0.0, c.MustRatio(KeyInventoryDays))
	assert.InDelta(t, 29.2, c.MustRatio(KeyCashConversionCycle), 1e-9)
}

func TestZeroSharesUndefined(t *testing.T) {
	in := sampleInput()
	in.Balance.SharesOutstanding = 0

	_, err := NewConsolidated(in)
	assert.ErrorIs(t, err, ErrUndefinedRatio)

	in.Lenient = true
	c, err := NewConsolidated(in)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(c.MustRatio(KeyEPSBasic)))
	assert.True(t, math.IsNaN(c.MustRatio(KeyPriceToEarnings)))

	undefined := c.Undefined()
	assert.Contains(t, undefined, KeyEPSBasic)
	assert.Contains(t, undefined, KeyPriceToEarnings)
	for _, r := range c.Ratios() {
		if math.IsNaN(r.Value) {
			assert.Contains(t, undefined, r.Key, "NaN ratio missing from Undefined()")
		}
	}
}

func TestReportedCapex(t *testing.T) {
	in := sampleInput()
	in.CashFlow = &statement.CashFlowStatement{Ticker: "ACME", CapitalExpenditure: -75}

	c, err := NewConsolidated(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.075, c.MustRatio(KeyCapexToSalesReported), eps)

	rows := c.Rows()
	require.Len(t, rows, 47)
	assert.Equal(t, "6.3 - CAPEX-to-Sales (Reported)", rows[24].Ratio)
}

func TestSharedBalanceSheets(t *testing.T) {
	in := sampleInput()
	c, err := NewConsolidated(in)
	require.NoError(t, err)
	assert.Same(t, in.Balance, c.Balance)
	assert.Same(t, in.PriorBalance, c.PriorBalance)
}

func TestIncompleteInput(t *testing.T) {
	in := sampleInput()
	in.PriorBalance = nil
	_, err := NewConsolidated(in)
	assert.ErrorIs(t, err, ErrIncompleteInput)
}

func TestMarketCloseDate(t *testing.T) {
	got := MarketCloseDate(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestAltmanZone(t *testing.T) {
	tests := []struct {
		z    float64
		want Zone
	}{
		{3.5, ZoneSafe},
		{2.99, ZoneGrey},
		{2.0, ZoneGrey},
		{1.81, ZoneGrey},
		{1.2, ZoneDistress},
		{math.NaN(), ZoneUndefined},
	}
	for _, tt := range tests {
		if got := AltmanZone(tt.z); got != tt.want {
			t.Errorf("AltmanZone(%v): got %s, want %s", tt.z, got, tt.want)
		}
	}
}

func factForYear(t *testing.T, ticker string, year int, scale float64) *Consolidated {
	t.Helper()
	in := sampleInput()
	in.Ticker = ticker
	in.Year = year
	in.Income.Revenue *= scale
	in.Income.NetIncome *= scale
	in.Income.EBITDA *= scale
	c, err := NewConsolidated(in)
	require.NoError(t, err)
	return c
}

func TestComputeGrowth(t *testing.T) {
	facts := []*Consolidated{
		factForYear(t, "ACME", 2023, 1.331),
		factForYear(t, "ACME", 2020, 1.0),
		factForYear(t, "ACME", 2022, 1.21),
	}

	g := ComputeGrowth(facts)
	assert.Equal(t, 2023, g.Year)
	assert.InDelta(t, 10.0, g.RevenueGrowthYoY, 1e-6)
	assert.InDelta(t, 10.0, g.NetIncomeGrowthYoY, 1e-6)
	assert.InDelta(t, 10.0, g.RevenueCAGR3Y, 1e-6)
}

func TestComputeGrowthEmpty(t *testing.T) {
	g := ComputeGrowth(nil)
	if g.RevenueGrowthYoY != 0 {
		t.Error("expected zero growth for no facts")
	}
}

func TestComputeGrowthZeroBase(t *testing.T) {
	prev := factForYear(t, "ACME", 2022, 1.0)
	prev.Income.NetIncome = 0
	prev.Income.EBITDA = 0
	curr := factForYear(t, "ACME", 2023, 1.1)

	g := ComputeGrowth([]*Consolidated{prev, curr})
	assert.Equal(t, 2023, g.Year)
	assert.Zero(t, g.NetIncomeGrowthYoY)
	assert.Zero(t, g.EBITDAGrowthYoY)
	assert.False(t, math.IsNaN(g.NetIncomeGrowthYoY))
	assert.InDelta(t, 10.0, g.RevenueGrowthYoY, 1e-6)
	assert.Zero(t, g.RevenueCAGR3Y)
}

func TestAssessFinancialHealth(t *testing.T) {
	c, err := NewConsolidated(sampleInput())
	require.NoError(t, err)

	health := AssessFinancialHealth(c, GrowthRates{RevenueGrowthYoY: 12, NetIncomeGrowthYoY: 25})

	if health.Score <= 0 || health.Score > 100 {
		t.Errorf("score out of range: %.2f", health.Score)
	}
	if health.Grade == "" {
		t.Error("expected non-empty grade")
	}
	assert.Equal(t, ZoneGrey, health.Zone)
	assert.Len(t, health.Components, 5)
}

func TestPiotroskiFScore(t *testing.T) {
	prev := factForYear(t, "ACME", 2022, 0.9)
	curr := factForYear(t, "ACME", 2023, 1.0)

	qs := PiotroskiFScore(curr, prev)
	assert.Equal(t, 8, qs.Max)
	assert.Len(t, qs.Checks, 8)
	assert.GreaterOrEqual(t, qs.Score, 3)

	alone := PiotroskiFScore(curr, nil)
	assert.Equal(t, 5, alone.Max)

	assert.Equal(t, 0, PiotroskiFScore(nil, nil).Score)
}

func TestSummarize(t *testing.T) {
	c, err := NewConsolidated(sampleInput())
	require.NoError(t, err)

	g := GrowthRates{}
	summary := Summarize(c, g, AssessFinancialHealth(c, g))
	assert.True(t, strings.HasPrefix(summary, "ACME 2023"))
	assert.Contains(t, summary, "Altman Z: 2.56 (Grey)")
	assert.Contains(t, summary, "Revenue: 1,000")
}

func TestComparePeers(t *testing.T) {
	target := factForYear(t, "ACME", 2023, 1.0)
	strong := factForYear(t, "BOLT", 2023, 2.0)
	weak := factForYear(t, "CRAG", 2023, 0.5)

	pc := ComparePeers(target, []*Consolidated{strong, weak, target})
	assert.Equal(t, "ACME", pc.Target.Ticker)
	assert.Equal(t, 2, pc.Target.Rank)
	require.Len(t, pc.Peers, 2)
	assert.Equal(t, "BOLT", pc.Peers[0].Ticker)
	assert.NotEmpty(t, pc.Summary)
	assert.NotEmpty(t, pc.Metrics)
}
