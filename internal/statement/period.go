package statement

import (
	"errors"
	"fmt"
	"time"
)

// ErrQuarterOffset is returned when a quarter offset falls outside {-1, 0, +1}.
var ErrQuarterOffset = errors.New("quarter offset must be -1, 0 or 1")

// FiscalPeriod is a (quarter, year) pair after quarter-offset adjustment.
// It is distinct from the calendar quarter of the statement date.
type FiscalPeriod struct {
	Quarter int `json:"quarter"`
	Year    int `json:"year"`
}

func (p FiscalPeriod) String() string {
	return fmt.Sprintf("Q%d-%d", p.Quarter, p.Year)
}

// CalendarQuarter returns the calendar quarter (1-4) of t.
func CalendarQuarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// ValidateOffset reports whether offset is a usable quarter offset.
func ValidateOffset(offset int) error {
	if offset < -1 || offset > 1 {
		return fmt.Errorf("%w: got %d", ErrQuarterOffset, offset)
	}
	return nil
}

// NormalizePeriod maps a statement date and a quarter offset to the adjusted
// fiscal period. The date's calendar quarter q is placed in the window
// [q-1, q, q+1] (rolling the year over at Q1 and Q4), and the entry at
// offset+1 is returned: -1 selects the prior quarter, 0 the calendar quarter
// and +1 the next one.
func NormalizePeriod(date time.Time, offset int) (FiscalPeriod, error) {
	if err := ValidateOffset(offset); err != nil {
		return FiscalPeriod{}, err
	}

	q := CalendarQuarter(date)
	y := date.Year()

	var window [3]FiscalPeriod
	switch q {
	case 1:
		window = [3]FiscalPeriod{{4, y - 1}, {1, y}, {2, y}}
	case 4:
		window = [3]FiscalPeriod{{3, y}, {4, y}, {1, y + 1}}
	default:
		window = [3]FiscalPeriod{{q - 1, y}, {q, y}, {q + 1, y}}
	}

	return window[offset+1], nil
}
