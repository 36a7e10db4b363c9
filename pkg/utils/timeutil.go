package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical day layout used for price lookups and report output.
const DateLayout = "2006-01-02"

// statementDateLayouts are the layouts accepted for statement column headers.
// The first one is the layout of the quarterly exports (MM/DD/YYYY).
var statementDateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	DateLayout,
	"2006/01/02",
}

// ParseStatementDate parses a statement date header. Time of day is dropped
// and the result is in UTC.
func ParseStatementDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised statement date %q", s)
}

// IsStatementDate reports whether s parses as a statement date header.
func IsStatementDate(s string) bool {
	_, err := ParseStatementDate(s)
	return err == nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextCalendarDay returns the calendar day after t, regardless of weekends or holidays.
func NextCalendarDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1)
}

// DateKey formats t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// LatestDate returns the latest of the given dates, or the zero time if none are given.
func LatestDate(dates ...time.Time) time.Time {
	var latest time.Time
	for _, d := range dates {
		if d.After(latest) {
			latest = d
		}
	}
	return latest
}
