package statement

import (
	"fmt"
	"time"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// BalanceSheet is the derived view of one quarter-end balance sheet. A
// BalanceSheet value always satisfies TotalAssets == TotalLiabilitiesAndEquity;
// NewBalanceSheet refuses to build one that does not.
type BalanceSheet struct {
	Ticker        string
	StatementDate time.Time
	FiscalPeriod

	CurrentAssets        float64
	Cash                 float64
	ShortTermInvestments float64
	AccountsReceivable   float64
	Inventory            float64
	OtherCurrentAssets   float64

	NonCurrentAssets      float64
	NetPPE                float64
	GrossPPE              float64
	Goodwill              float64
	OtherIntangibles      float64
	OtherNonCurrentAssets float64

	TotalAssets float64

	CurrentLiabilities      float64
	AccountsPayable         float64
	AccruedLiabilities      float64
	OtherCurrentLiabilities float64

	NonCurrentLiabilities    float64
	LongTermDebt             float64
	OtherLongTermLiabilities float64
	TotalDebt                float64
	TotalLiabilities         float64

	StockholdersEquity float64
	MinorityInterest   float64
	TotalEquity        float64
	RetainedEarnings   float64
	SharesOutstanding  float64

	TotalLiabilitiesAndEquity float64
}

// NewBalanceSheet derives a balance sheet from a raw record and checks that
// assets equal liabilities plus equity exactly.
func NewBalanceSheet(ticker string, offset int, rec models.RawRecord) (*BalanceSheet, error) {
	if rec.StatementDate.IsZero() {
		return nil, &MissingFieldError{Statement: "balance sheet", Ticker: ticker, Field: "StatementDate"}
	}
	period, err := NormalizePeriod(rec.StatementDate, offset)
	if err != nil {
		return nil, err
	}

	date := utils.Day(rec.StatementDate)
	r := &fieldReader{fields: rec.Fields}
	b := &BalanceSheet{Ticker: ticker, StatementDate: date, FiscalPeriod: period}

	b.CurrentAssets = r.required(FieldCurrentAssets)
	b.Cash = r.required(FieldCash)
	cashAndSTI := r.required(FieldCashAndShortTermInvestments)
	b.AccountsReceivable = r.required(FieldReceivables)
	b.Inventory = r.required(FieldInventory)

	b.NonCurrentAssets = r.required(FieldTotalNonCurrentAssets)
	b.NetPPE = r.required(FieldNetPPE)
	b.GrossPPE = r.required(FieldGrossPPE)
	b.Goodwill = r.required(FieldGoodwill)
	b.OtherIntangibles = r.required(FieldOtherIntangibleAssets)

	b.CurrentLiabilities = r.required(FieldCurrentLiabilities)
	b.AccountsPayable = r.required(FieldPayables)
	b.AccruedLiabilities = r.required(FieldCurrentAccruedExpenses)

	b.NonCurrentLiabilities = r.required(FieldTotalNonCurrentLiabilities)
	b.LongTermDebt = r.required(FieldLongTermDebtAndCapitalLeases)
	b.TotalDebt = r.required(FieldTotalDebt)

	b.StockholdersEquity = r.required(FieldStockholdersEquity)
	b.MinorityInterest = r.optional(FieldMinorityInterest)
	b.RetainedEarnings = r.required(FieldRetainedEarnings)
	b.SharesOutstanding = r.required(FieldOrdinarySharesNumber)

	if r.missing != "" {
		return nil, &MissingFieldError{
			Statement:     "balance sheet",
			Ticker:        ticker,
			StatementDate: date,
			Field:         r.missing,
		}
	}

	b.ShortTermInvestments = cashAndSTI - b.Cash
	b.OtherCurrentAssets = b.CurrentAssets - b.Cash - b.ShortTermInvestments - b.AccountsReceivable - b.Inventory
	b.OtherNonCurrentAssets = b.NonCurrentAssets - b.NetPPE - b.Goodwill - b.OtherIntangibles
	b.TotalAssets = b.CurrentAssets + b.NonCurrentAssets

	b.OtherCurrentLiabilities = b.CurrentLiabilities - b.AccountsPayable - b.AccruedLiabilities
	b.OtherLongTermLiabilities = b.NonCurrentLiabilities - b.LongTermDebt
	b.TotalLiabilities = b.CurrentLiabilities + b.NonCurrentLiabilities

	b.TotalEquity = b.StockholdersEquity + b.MinorityInterest
	b.TotalLiabilitiesAndEquity = b.TotalLiabilities + b.TotalEquity

	if b.TotalAssets != b.TotalLiabilitiesAndEquity {
		return nil, &StatementIntegrityError{
			Ticker:                    ticker,
			StatementDate:             date,
			Period:                    period,
			TotalAssets:               b.TotalAssets,
			TotalLiabilitiesAndEquity: b.TotalLiabilitiesAndEquity,
			Items:                     b.LineItems(),
		}
	}

	return b, nil
}

// WorkingCapital is current assets less current liabilities.
func (b *BalanceSheet) WorkingCapital() float64 {
	return b.CurrentAssets - b.CurrentLiabilities
}

// LineItems returns the derived items in reporting order.
func (b *BalanceSheet) LineItems() []LineItem {
	return []LineItem{
		{"cash_and_equivalents", b.Cash},
		{"short_term_investments", b.ShortTermInvestments},
		{"accounts_receivable", b.AccountsReceivable},
		{"inventory", b.Inventory},
		{"other_current_assets", b.OtherCurrentAssets},
		{"current_assets", b.CurrentAssets},
		{"net_ppe", b.NetPPE},
		{"goodwill", b.Goodwill},
		{"other_intangibles", b.OtherIntangibles},
		{"other_non_current_assets", b.OtherNonCurrentAssets},
		{"non_current_assets", b.NonCurrentAssets},
		{"total_assets", b.TotalAssets},
		{"accounts_payable", b.AccountsPayable},
		{"accrued_liabilities", b.AccruedLiabilities},
		{"other_current_liabilities", b.OtherCurrentLiabilities},
		{"current_liabilities", b.CurrentLiabilities},
		{"long_term_debt", b.LongTermDebt},
		{"other_long_term_liabilities", b.OtherLongTermLiabilities},
		{"non_current_liabilities", b.NonCurrentLiabilities},
		{"total_liabilities", b.TotalLiabilities},
		{"stockholders_equity", b.StockholdersEquity},
		{"minority_interest", b.MinorityInterest},
		{"total_liabilities_and_equity", b.TotalLiabilitiesAndEquity},
	}
}

// Dump renders the sheet's line items for diagnostics.
func (b *BalanceSheet) Dump() string {
	return dumpLineItems(b.LineItems(), 30)
}

// Rows returns the sheet as output rows.
func (b *BalanceSheet) Rows() []models.StatementRow {
	return buildRows(b.Ticker, b.StatementDate, b.FiscalPeriod, []accountLine{
		{"1 - Current Assets", "1.1 - Cash & Cash Equivalents", b.Cash},
		{"1 - Current Assets", "1.2 - Short Term Investments", b.ShortTermInvestments},
		{"1 - Current Assets", "1.3 - Accounts Receivable", b.AccountsReceivable},
		{"1 - Current Assets", "1.4 - Inventory", b.Inventory},
		{"1 - Current Assets", "1.5 - Other Current Assets", b.OtherCurrentAssets},
		{"2 - Non-Current Assets", "2.1 - Net PPE", b.NetPPE},
		{"2 - Non-Current Assets", "2.2 - Goodwill", b.Goodwill},
		{"2 - Non-Current Assets", "2.3 - Other Intangible Assets", b.OtherIntangibles},
		{"2 - Non-Current Assets", "2.4 - Other Non-Current Assets", b.OtherNonCurrentAssets},
		{"3 - Current Liabilities", "3.1 - Accounts Payable", b.AccountsPayable},
		{"3 - Current Liabilities", "3.2 - Accrued Liabilities", b.AccruedLiabilities},
		{"3 - Current Liabilities", "3.3 - Other Current Liabilities", b.OtherCurrentLiabilities},
		{"4 - Non-Current Liabilities", "4.1 - Long-Term Debt", b.LongTermDebt},
		{"4 - Non-Current Liabilities", "4.2 - Other Non-Current Liabilities", b.OtherLongTermLiabilities},
		{"5 - Equity", "5.1 - Stockholders Equity", b.TotalEquity},
	})
}

func (b *BalanceSheet) String() string {
	return fmt.Sprintf("%s: %d-%d", b.Ticker, b.Quarter, b.Year)
}
