package statement

// Raw income statement line items.
const (
	FieldGrossProfit             = "GrossProfit"
	FieldCostOfRevenue           = "CostOfRevenue"
	FieldOperatingIncome         = "OperatingIncome"
	FieldSellingGeneralAdmin     = "SellingGeneralAndAdministration"
	FieldResearchAndDevelopment  = "ResearchAndDevelopment"
	FieldPretaxIncome            = "PretaxIncome"
	FieldNetInterestIncome       = "NetInterestIncome"
	FieldNetIncome               = "NetIncome"
	FieldInterestExpense         = "InterestExpense"
	FieldEBIT                    = "EBIT"
	FieldReconciledDepreciation  = "ReconciledDepreciation"
	FieldDilutedEPS              = "DilutedEPS"
	FieldPreferredStockDividends = "PreferredStockDividends"
)

// Raw balance sheet line items.
const (
	FieldCurrentAssets                = "CurrentAssets"
	FieldCash                         = "CashAndCashEquivalents"
	FieldCashAndShortTermInvestments  = "CashCashEquivalentsAndShortTermInvestments"
	FieldReceivables                  = "Receivables"
	FieldInventory                    = "Inventory"
	FieldTotalNonCurrentAssets        = "TotalNonCurrentAssets"
	FieldNetPPE                       = "NetPPE"
	FieldGrossPPE                     = "GrossPPE"
	FieldGoodwill                     = "Goodwill"
	FieldOtherIntangibleAssets        = "OtherIntangibleAssets"
	FieldCurrentLiabilities           = "CurrentLiabilities"
	FieldPayables                     = "Payables"
	FieldCurrentAccruedExpenses       = "CurrentAccruedExpenses"
	FieldTotalNonCurrentLiabilities   = "TotalNonCurrentLiabilitiesNetMinorityInterest"
	FieldLongTermDebtAndCapitalLeases = "LongTermDebtAndCapitalLeaseObligation"
	FieldTotalDebt                    = "TotalDebt"
	FieldStockholdersEquity           = "StockholdersEquity"
	FieldMinorityInterest             = "MinorityInterest"
	FieldRetainedEarnings             = "RetainedEarnings"
	FieldOrdinarySharesNumber         = "OrdinarySharesNumber"
)

// Raw cash flow line items.
const (
	FieldCapitalExpenditure = "CapitalExpenditure"
)

// IncomeStatementFields lists the required income statement line items.
var IncomeStatementFields = []string{
	FieldGrossProfit, FieldCostOfRevenue, FieldOperatingIncome,
	FieldSellingGeneralAdmin, FieldResearchAndDevelopment, FieldPretaxIncome,
	FieldNetInterestIncome, FieldNetIncome, FieldInterestExpense, FieldEBIT,
	FieldReconciledDepreciation, FieldDilutedEPS,
}

// BalanceSheetFields lists the required balance sheet line items.
var BalanceSheetFields = []string{
	FieldCurrentAssets, FieldCash, FieldCashAndShortTermInvestments,
	FieldReceivables, FieldInventory, FieldTotalNonCurrentAssets, FieldNetPPE,
	FieldGrossPPE, FieldGoodwill, FieldOtherIntangibleAssets,
	FieldCurrentLiabilities, FieldPayables, FieldCurrentAccruedExpenses,
	FieldTotalNonCurrentLiabilities, FieldLongTermDebtAndCapitalLeases,
	FieldTotalDebt, FieldStockholdersEquity, FieldRetainedEarnings,
	FieldOrdinarySharesNumber,
}

// CashFlowFields lists the required cash flow line items.
var CashFlowFields = []string{FieldCapitalExpenditure}

// fieldReader pulls required and optional values out of a raw field map and
// remembers the first missing required field.
type fieldReader struct {
	fields  map[string]float64
	missing string
}

func (r *fieldReader) required(name string) float64 {
	v, ok := r.fields[name]
	if !ok && r.missing == "" {
		r.missing = name
	}
	return v
}

func (r *fieldReader) optional(name string) float64 {
	return r.fields[name]
}
