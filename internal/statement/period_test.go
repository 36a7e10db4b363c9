package statement

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizePeriod(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		offset int
		want   FiscalPeriod
	}{
		{"march no offset", date(2023, 3, 31), 0, FiscalPeriod{1, 2023}},
		{"march back rolls year", date(2023, 3, 31), -1, FiscalPeriod{4, 2022}},
		{"march forward", date(2023, 3, 31), 1, FiscalPeriod{2, 2023}},
		{"june back", date(2023, 6, 30), -1, FiscalPeriod{1, 2023}},
		{"september forward", date(2023, 9, 30), 1, FiscalPeriod{4, 2023}},
		{"december no offset", date(2023, 12, 31), 0, FiscalPeriod{4, 2023}},
		{"december forward rolls year", date(2023, 12, 31), 1, FiscalPeriod{1, 2024}},
		{"december back", date(2023, 12, 31), -1, FiscalPeriod{3, 2023}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePeriod(tt.date, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizePeriod(%s, %d): got %v, want %v",
					tt.date.Format("2006-01-02"), tt.offset, got, tt.want)
			}
		})
	}
}

func TestNormalizePeriodRejectsOffset(t *testing.T) {
	for _, off := range []int{-2, 2, 5} {
		_, err := NormalizePeriod(date(2023, 6, 30), off)
		if !errors.Is(err, ErrQuarterOffset) {
			t.Errorf("offset %d: got %v, want ErrQuarterOffset", off, err)
		}
	}
}

func TestCalendarQuarter(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		want := (int(m) + 2) / 3
		if got := CalendarQuarter(date(2020, m, 1)); got != want {
			t.Errorf("CalendarQuarter(%s): got %d, want %d", m, got, want)
		}
	}
}

func TestFiscalPeriodString(t *testing.T) {
	if got := (FiscalPeriod{Quarter: 4, Year: 2022}).String(); got != "Q4-2022" {
		t.Errorf("String: got %q, want %q", got, "Q4-2022")
	}
}
