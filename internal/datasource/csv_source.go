package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/seenimoa/finratios/pkg/models"
)

// CSVSource reads quarterly statement exports from a directory. Files are
// named {ticker}_quarterly_financials.csv, {ticker}_quarterly_balance-sheet.csv
// and {ticker}_quarterly_cash-flow.csv.
type CSVSource struct {
	Dir string
}

// NewCSVSource creates a CSV statement source rooted at dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{Dir: dir}
}

// Records reads and transposes the export of the given kind.
func (s *CSVSource) Records(ctx context.Context, ticker string, kind models.StatementKind) ([]models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.Dir, FileName(ticker, kind, "csv"))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s %s: %w", ticker, kind, ErrStatementsNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := readWideCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	recs, err := table.records(ticker)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

func readWideCSV(r io.Reader) (wideTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return wideTable{}, err
	}
	if len(all) == 0 {
		return wideTable{}, fmt.Errorf("%w: empty file", ErrMalformedTable)
	}
	return wideTable{header: all[0], rows: all[1:]}, nil
}
