package statement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/seenimoa/finratios/pkg/utils"
)

// ErrMissingField matches any *MissingFieldError with errors.Is.
var ErrMissingField = errors.New("missing required field")

// ErrIntegrity matches any *StatementIntegrityError with errors.Is.
var ErrIntegrity = errors.New("statement integrity violation")

// MissingFieldError reports a required raw line item that was absent from a record.
type MissingFieldError struct {
	Statement     string // "income statement", "balance sheet", "cash flow statement"
	Ticker        string
	StatementDate time.Time
	Field         string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s %s %s: missing required field %q",
		e.Statement, e.Ticker, utils.DateKey(e.StatementDate), e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// LineItem is a named derived value, used for diagnostic dumps.
type LineItem struct {
	Name  string
	Value float64
}

// StatementIntegrityError reports a balance sheet whose total assets do not
// equal total liabilities plus total equity. It carries every derived line
// item so the offending filing can be inspected.
type StatementIntegrityError struct {
	Ticker                    string
	StatementDate             time.Time
	Period                    FiscalPeriod
	TotalAssets               float64
	TotalLiabilitiesAndEquity float64
	Items                     []LineItem
}

func (e *StatementIntegrityError) Error() string {
	return fmt.Sprintf("%s %s: A = L + E did not compute (assets %s, liabilities+equity %s, difference %s)",
		e.Ticker, e.Period,
		humanize.Commaf(e.TotalAssets),
		humanize.Commaf(e.TotalLiabilitiesAndEquity),
		humanize.Commaf(e.TotalAssets-e.TotalLiabilitiesAndEquity))
}

// Is reports whether target is ErrIntegrity.
func (e *StatementIntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// Dump renders all derived line items, one per line, with thousands separators.
func (e *StatementIntegrityError) Dump() string {
	return dumpLineItems(e.Items, 30)
}

func dumpLineItems(items []LineItem, width int) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(fmt.Sprintf("%-*s%20s\n", width, it.Name, humanize.Commaf(it.Value)))
	}
	return b.String()
}
