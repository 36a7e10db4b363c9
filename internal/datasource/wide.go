package datasource

import (
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// wideTable is a statement export laid out with one row per line item and one
// column per statement date. The first column holds the line-item name.
type wideTable struct {
	header []string
	rows   [][]string
}

// records transposes the table into one RawRecord per date column. Columns
// whose header is not a date (such as "ttm") are dropped, tabs are stripped
// from line-item names and empty cells read as 0.
func (t wideTable) records(ticker string) ([]models.RawRecord, error) {
	if len(t.header) < 2 {
		return nil, fmt.Errorf("%w: need a name column and at least one date column", ErrMalformedTable)
	}

	type dateCol struct {
		idx  int
		date time.Time
	}
	var cols []dateCol
	for i, h := range t.header[1:] {
		d, err := utils.ParseStatementDate(h)
		if err != nil {
			continue
		}
		cols = append(cols, dateCol{idx: i + 1, date: d})
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no statement date columns", ErrMalformedTable)
	}

	recs := make([]models.RawRecord, len(cols))
	for i, c := range cols {
		recs[i] = models.RawRecord{
			Ticker:        ticker,
			StatementDate: c.date,
			Fields:        make(map[string]float64, len(t.rows)),
		}
	}

	for _, row := range t.rows {
		if len(row) == 0 {
			continue
		}
		name := cleanName(row[0])
		if name == "" {
			continue
		}
		for i, c := range cols {
			var cell string
			if c.idx < len(row) {
				cell = row[c.idx]
			}
			v, err := utils.ParseAmount(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: %s on %s: %v", ErrMalformedTable, name, utils.DateKey(c.date), err)
			}
			recs[i].Fields[name] = v
		}
	}

	return recs, nil
}

func cleanName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\t", ""))
}
