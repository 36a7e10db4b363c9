package models

import (
	"sort"
	"time"
)

// StatementKind identifies one of the three quarterly statement feeds of a ticker.
type StatementKind string

const (
	KindIncome   StatementKind = "income"
	KindBalance  StatementKind = "balance"
	KindCashFlow StatementKind = "cashflow"
)

// AllStatementKinds returns the statement kinds in construction order.
func AllStatementKinds() []StatementKind {
	return []StatementKind{KindIncome, KindBalance, KindCashFlow}
}

// RawRecord is one statement column as delivered by a source: a ticker, the
// statement date and the raw line items keyed by their source name
// (e.g. "GrossProfit", "CostOfRevenue").
type RawRecord struct {
	Ticker        string             `json:"ticker"`
	StatementDate time.Time          `json:"statement_date"`
	Fields        map[string]float64 `json:"fields"`
}

// Lookup returns the value of a line item and whether it was present.
func (r RawRecord) Lookup(name string) (float64, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// FieldNames returns the record's line-item names in sorted order.
func (r RawRecord) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// StatementRow is one reported line of an income statement or balance sheet.
type StatementRow struct {
	Company               string  `json:"company"               yaml:"company"               csv:"company"`
	StatementDate         string  `json:"statementDate"         yaml:"statementDate"         csv:"statementDate"`
	Quarter               int     `json:"quarter"               yaml:"quarter"               csv:"quarter"`
	Year                  int     `json:"year"                  yaml:"year"                  csv:"year"`
	AccountClassification string  `json:"accountClassification" yaml:"accountClassification" csv:"accountClassification"`
	Account               string  `json:"account"               yaml:"account"               csv:"account"`
	Amount                float64 `json:"amount"                yaml:"amount"                csv:"amount"`
}

// RatioRow is one ratio value of a company-year.
type RatioRow struct {
	Company   string  `json:"company"    yaml:"company"    csv:"company"`
	Year      int     `json:"year"       yaml:"year"       csv:"year"`
	RatioType string  `json:"ratio_type" yaml:"ratio_type" csv:"ratio_type"`
	Ratio     string  `json:"ratio"      yaml:"ratio"      csv:"ratio"`
	Value     float64 `json:"value"      yaml:"value"      csv:"value"`
}
