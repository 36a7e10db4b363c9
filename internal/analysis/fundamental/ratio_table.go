package fundamental

import "github.com/seenimoa/finratios/internal/statement"

// Ratio keys.
const (
	KeyGrossMargin     = "gross_margin"
	KeyOperatingMargin = "operating_margin"
	KeyEBITDAMargin    = "ebitda_margin"
	KeyNetProfitMargin = "net_profit_margin"

	KeyCurrentRatio = "current_ratio"
	KeyQuickRatio   = "quick_ratio"
	KeyCashRatio    = "cash_ratio"

	KeyARDays                 = "ar_days"
	KeyARTurnover             = "ar_turnover"
	KeyInventoryDays          = "inventory_days"
	KeyInventoryTurnover      = "inventory_turnover"
	KeyAPDays                 = "ap_days"
	KeyAPTurnover             = "ap_turnover"
	KeyCashConversionCycle    = "cash_conversion_cycle"
	KeyWorkingCapitalTurnover = "working_capital_turnover"

	KeyEBITInterestCoverage   = "ebit_interest_coverage"
	KeyEBITDAInterestCoverage = "ebitda_interest_coverage"

	KeyDebtToCapital          = "debt_to_capital"
	KeyDebtToEquity           = "debt_to_equity"
	KeyDebtToEnterpriseValue  = "debt_to_enterprise_value"
	KeyEquityMultiplierBook   = "equity_multiplier_book"
	KeyEquityMultiplierMarket = "equity_multiplier_market"

	KeyRnDToSales           = "rnd_to_sales"
	KeyCapexToSales         = "capex_to_sales"
	KeyCapexToSalesReported = "capex_to_sales_reported"

	KeyMarketToBook      = "market_to_book"
	KeyPriceToEarnings   = "price_to_earnings"
	KeyMarketToSales     = "market_to_sales"
	KeyEVToEBITDA        = "ev_to_ebitda"
	KeyEVToSales         = "ev_to_sales"
	KeyEPSDiluted        = "eps_diluted"
	KeyEPSBasic          = "eps_basic"
	KeySharePrice        = "share_price"
	KeySharesOutstanding = "shares_outstanding"
	KeyMarketCap         = "market_cap"
	KeyNetDebt           = "net_debt"
	KeyEnterpriseValue   = "enterprise_value"

	KeyAssetTurnover = "asset_turnover"
	KeyROA           = "return_on_assets"
	KeyROE           = "return_on_equity"
	KeyROIC          = "return_on_invested_capital"

	KeyAltmanZ = "altman_z"
	KeyAltmanA = "altman_a"
	KeyAltmanB = "altman_b"
	KeyAltmanC = "altman_c"
	KeyAltmanD = "altman_d"
	KeyAltmanE = "altman_e"
)

type valueFunc func(c *Consolidated, get func(string) float64) float64

// ratioDef describes one ratio as num/den. A nil den means the ratio is num
// itself. When den is zero a guarded ratio is 0 and an unguarded one is
// undefined.
type ratioDef struct {
	key      string
	category string
	label    string
	num      valueFunc
	den      valueFunc
	guarded  bool
	when     func(c *Consolidated) bool
}

func is(f func(s *statement.IncomeStatement) float64) valueFunc {
	return func(c *Consolidated, _ func(string) float64) float64 { return f(c.Income) }
}

func bs(f func(b *statement.BalanceSheet) float64) valueFunc {
	return func(c *Consolidated, _ func(string) float64) float64 { return f(c.Balance) }
}

func field(f func(c *Consolidated) float64) valueFunc {
	return func(c *Consolidated, _ func(string) float64) float64 { return f(c) }
}

func ratio(key string) valueFunc {
	return func(_ *Consolidated, get func(string) float64) float64 { return get(key) }
}

// avg averages a balance sheet item over the current and prior year end.
func avg(f func(b *statement.BalanceSheet) float64) valueFunc {
	return func(c *Consolidated, _ func(string) float64) float64 {
		return (f(c.Balance) + f(c.PriorBalance)) / 2
	}
}

var (
	revenue     = is(func(s *statement.IncomeStatement) float64 { return s.Revenue })
	cogs        = is(func(s *statement.IncomeStatement) float64 { return s.COGS })
	ebitda      = is(func(s *statement.IncomeStatement) float64 { return s.EBITDA })
	netIncome   = is(func(s *statement.IncomeStatement) float64 { return s.NetIncome })
	interestExp = is(func(s *statement.IncomeStatement) float64 { return s.InterestExpense })

	totalAssets      = bs(func(b *statement.BalanceSheet) float64 { return b.TotalAssets })
	totalEquity      = bs(func(b *statement.BalanceSheet) float64 { return b.TotalEquity })
	totalLiabilities = bs(func(b *statement.BalanceSheet) float64 { return b.TotalLiabilities })
	currentLiabs     = bs(func(b *statement.BalanceSheet) float64 { return b.CurrentLiabilities })

	marketCap       = field(func(c *Consolidated) float64 { return c.MarketCap })
	enterpriseValue = field(func(c *Consolidated) float64 { return c.EnterpriseValue })
)

func perDay(f valueFunc) valueFunc {
	return func(c *Consolidated, get func(string) float64) float64 { return f(c, get) / 365 }
}

func negate(f valueFunc) valueFunc {
	return func(c *Consolidated, get func(string) float64) float64 { return -f(c, get) }
}

var ratioTable = []*ratioDef{
	{key: KeyGrossMargin, category: CategoryProfitability, label: "1.1 - Gross Margin",
		num: is(func(s *statement.IncomeStatement) float64 { return s.GrossProfit }), den: revenue, guarded: true},
	{key: KeyOperatingMargin, category: CategoryProfitability, label: "1.2 - Operating Margin",
		num: is(func(s *statement.IncomeStatement) float64 { return s.OperatingIncome }), den: revenue, guarded: true},
	{key: KeyEBITDAMargin, category: CategoryProfitability, label: "1.3 - EBITDA Margin",
		num: ebitda, den: revenue, guarded: true},
	{key: KeyNetProfitMargin, category: CategoryProfitability, label: "1.4 - Net Profit Margin",
		num: netIncome, den: revenue, guarded: true},

	{key: KeyCurrentRatio, category: CategoryLiquidity, label: "2.1 - Current Ratio",
		num: bs(func(b *statement.BalanceSheet) float64 { return b.CurrentAssets }), den: currentLiabs},
	{key: KeyQuickRatio, category: CategoryLiquidity, label: "2.2 - Quick Ratio",
		num: bs(func(b *statement.BalanceSheet) float64 {
			return b.Cash + b.ShortTermInvestments + b.AccountsReceivable
		}), den: currentLiabs},
	{key: KeyCashRatio, category: CategoryLiquidity, label: "2.3 - Cash Ratio",
		num: bs(func(b *statement.BalanceSheet) float64 { return b.Cash }), den: currentLiabs},

	{key: KeyARDays, category: CategoryWorkingCapital, label: "3.1 - Days in A/R",
		num: bs(func(b *statement.BalanceSheet) float64 { return b.AccountsReceivable }), den: perDay(revenue), guarded: true},
	{key: KeyARTurnover, category: CategoryWorkingCapital, label: "3.2 - A/R Turnover",
		num: revenue, den: avg(func(b *statement.BalanceSheet) float64 { return b.AccountsReceivable })},
	{key: KeyInventoryDays, category: CategoryWorkingCapital, label: "3.3 - Days in Inventory",
		num: negate(bs(func(b *statement.BalanceSheet) float64 { return b.Inventory })), den: perDay(cogs), guarded: true},
	{key: KeyInventoryTurnover, category: CategoryWorkingCapital, label: "3.4 - Inventory Turnover",
		num: negate(cogs), den: avg(func(b *statement.BalanceSheet) float64 { return b.Inventory })},
	{key: KeyAPDays, category: CategoryWorkingCapital, label: "3.5 - Days in A/P",
		num: negate(bs(func(b *statement.BalanceSheet) float64 { return b.AccountsPayable })), den: perDay(cogs), guarded: true},
	{key: KeyAPTurnover, category: CategoryWorkingCapital, label: "3.6 - A/P Turnover",
		num: negate(cogs), den: avg(func(b *statement.BalanceSheet) float64 { return b.AccountsPayable })},
	{key: KeyCashConversionCycle, category: CategoryWorkingCapital, label: "3.7 - Cash Conversion Cycle",
		num: func(_ *Consolidated, get func(string) float64) float64 {
			return get(KeyInventoryDays) + get(KeyARDays) - get(KeyAPDays)
		}},
	{key: KeyWorkingCapitalTurnover, category: CategoryWorkingCapital, label: "3.8 - Working Capital Turnover",
		num: revenue, den: field(func(c *Consolidated) float64 {
			return (c.WorkingCapital + c.PriorWorkingCapital) / 2
		})},

	{key: KeyEBITInterestCoverage, category: CategoryCoverage, label: "4.1 - EBIT / Interest Coverage Ratio",
		num: is(func(s *statement.IncomeStatement) float64 { return s.EBIT }), den: interestExp, guarded: true},
	{key: KeyEBITDAInterestCoverage, category: CategoryCoverage, label: "4.2 - EBITDA / Interest Coverage Ratio",
		num: ebitda, den: interestExp, guarded: true},

	{key: KeyDebtToCapital, category: CategoryLeverage, label: "5.1 - Debt-to-Capital Ratio",
		num: bs(func(b *statement.BalanceSheet) float64 { return b.TotalDebt }),
		den: bs(func(b *statement.BalanceSheet) float64 { return b.TotalDebt + b.TotalEquity })},
	{key: KeyDebtToEquity, category: CategoryLeverage, label: "5.2 - Debt-to-Equity Ratio",
		num: bs(func(b *statement.BalanceSheet) float64 { return b.TotalDebt }), den: totalEquity},
	{key: KeyDebtToEnterpriseValue, category: CategoryLeverage, label: "5.3 - Debt-to-Enterprise Value Ratio",
		num: totalLiabilities, den: enterpriseValue},
	{key: KeyEquityMultiplierBook, category: CategoryLeverage, label: "5.4 - Equity Multiplier (book)",
		num: totalAssets, den: totalEquity},
	{key: KeyEquityMultiplierMarket, category: CategoryLeverage, label: "5.5 - Equity Multiplier (market)",
		num: enterpriseValue, den: marketCap},

	{key: KeyRnDToSales, category: CategoryIndustry, label: "6.1 - R&D-to-Sales",
		num: negate(is(func(s *statement.IncomeStatement) float64 { return s.ResearchAndDevelopment })), den: revenue},
	{key: KeyCapexToSales, category: CategoryIndustry, label: "6.2 - CAPEX-to-Sales",
		num: field(func(c *Consolidated) float64 { return c.Capex }), den: revenue},
	{key: KeyCapexToSalesReported, category: CategoryIndustry, label: "6.3 - CAPEX-to-Sales (Reported)",
		num: field(func(c *Consolidated) float64 { return -c.CashFlow.CapitalExpenditure }), den: revenue,
		when: func(c *Consolidated) bool { return c.CashFlow != nil }},

	{key: KeyMarketToBook, category: CategoryValuation, label: "7.1 - Market-to-Book Ratio",
		num: marketCap, den: totalEquity},
	{key: KeyPriceToEarnings, category: CategoryValuation, label: "7.2 - Price-to-Earning Ratio",
		num: field(func(c *Consolidated) float64 { return c.MarketClose }), den: ratio(KeyEPSBasic)},
	{key: KeyMarketToSales, category: CategoryValuation, label: "7.3 - Market-to-Sales Ratio",
		num: marketCap, den: revenue},
	{key: KeyEVToEBITDA, category: CategoryValuation, label: "7.4 - EV-to-EBITDA Ratio",
		num: enterpriseValue, den: ebitda},
	{key: KeyEVToSales, category: CategoryValuation, label: "7.5 - EV-to-Sales Ratio",
		num: enterpriseValue, den: revenue},
	{key: KeyEPSDiluted, category: CategoryValuation, label: "7.6 - EPS (Fully Diluted)",
		num: is(func(s *statement.IncomeStatement) float64 { return s.DilutedEPS })},
	{key: KeyEPSBasic, category: CategoryValuation, label: "7.6.1 - EPS (Basic)",
		num: is(func(s *statement.IncomeStatement) float64 { return s.NetIncome - s.PreferredDividends }),
		den: bs(func(b *statement.BalanceSheet) float64 { return b.SharesOutstanding })},
	{key: KeySharePrice, category: CategoryValuation, label: "7.7.1 - Share Price",
		num: field(func(c *Consolidated) float64 { return c.MarketClose })},
	{key: KeySharesOutstanding, category: CategoryValuation, label: "7.7.2 - Common Shares O/S",
		num: bs(func(b *statement.BalanceSheet) float64 { return b.SharesOutstanding })},
	{key: KeyMarketCap, category: CategoryValuation, label: "7.7.3 - Market Capitalization (Share Price * Common Shares O/S)",
		num: marketCap},
	{key: KeyNetDebt, category: CategoryValuation, label: "7.7.4 - Net Debt",
		num: field(func(c *Consolidated) float64 { return c.NetDebt })},
	{key: KeyEnterpriseValue, category: CategoryValuation, label: "7.7.5 - Enterprise Value",
		num: enterpriseValue},

	{key: KeyAssetTurnover, category: CategoryOperating, label: "8.1 - Asset Turnover",
		num: revenue, den: avg(func(b *statement.BalanceSheet) float64 { return b.TotalAssets })},
	{key: KeyROA, category: CategoryOperating, label: "8.2 - Return on Assets (ROA)",
		num: netIncome, den: totalAssets},
	{key: KeyROE, category: CategoryOperating, label: "8.3 - Return on Equity (ROE)",
		num: netIncome, den: totalEquity},
	{key: KeyROIC, category: CategoryOperating, label: "8.4 - Return on Invested Capital (ROIC)",
		num: is(func(s *statement.IncomeStatement) float64 { return s.NOPAT }), den: totalAssets},

	{key: KeyAltmanZ, category: CategoryAltman, label: "9.1 - Altman Z-Score (1.2A + 1.4B + 3.3C + 0.6D + 1.0E)",
		num: func(_ *Consolidated, get func(string) float64) float64 {
			return 1.2*get(KeyAltmanA) + 1.4*get(KeyAltmanB) + 3.3*get(KeyAltmanC) +
				0.6*get(KeyAltmanD) + 1.0*get(KeyAltmanE)
		}},
	{key: KeyAltmanA, category: CategoryAltman, label: "9.1.A - Working Capital / Total Assets Ratio",
		num: field(func(c *Consolidated) float64 { return c.WorkingCapital }), den: totalAssets},
	{key: KeyAltmanB, category: CategoryAltman, label: "9.1.B - Retained Earnings / Total Assets Ratio",
		num: bs(func(b *statement.BalanceSheet) float64 { return b.RetainedEarnings }), den: totalAssets},
	{key: KeyAltmanC, category: CategoryAltman, label: "9.1.C - EBIT / Total Assets Ratio",
		num: is(func(s *statement.IncomeStatement) float64 { return s.EBIT }), den: totalAssets},
	{key: KeyAltmanD, category: CategoryAltman, label: "9.1.D - Market Value of Equity / Total Liabilities",
		num: marketCap, den: totalLiabilities},
	{key: KeyAltmanE, category: CategoryAltman, label: "9.1.E - Total Sales / Total Assets",
		num: revenue, den: totalAssets},
}

var ratioIndex = func() map[string]*ratioDef {
	m := make(map[string]*ratioDef, len(ratioTable))
	for _, d := range ratioTable {
		m[d.key] = d
	}
	return m
}()

// RatioKeys returns every ratio key in reporting order.
func RatioKeys() []string {
	keys := make([]string, 0, len(ratioTable))
	for _, d := range ratioTable {
		keys = append(keys, d.key)
	}
	return keys
}
