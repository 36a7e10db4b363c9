package datasource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/seenimoa/finratios/internal/infra"
	"github.com/seenimoa/finratios/pkg/utils"
)

// PriceBar is one row of a daily price export.
type PriceBar struct {
	Date     string `csv:"Date"`
	Open     string `csv:"Open"`
	High     string `csv:"High"`
	Low      string `csv:"Low"`
	Close    string `csv:"Close"`
	AdjClose string `csv:"Adj Close"`
	Volume   string `csv:"Volume"`
}

// CSVPriceBook looks up closes in {ticker}.csv daily price exports
// (Date,Open,High,Low,Close,Adj Close,Volume). Each file is read once and its
// date→close table cached.
type CSVPriceBook struct {
	Dir   string
	cache *infra.Cache[map[string]float64]
}

// NewCSVPriceBook creates a price book reading exports from dir. A ttl of 0
// keeps tables for the life of the process.
func NewCSVPriceBook(dir string, ttl time.Duration) *CSVPriceBook {
	return &CSVPriceBook{
		Dir:   dir,
		cache: infra.NewCache[map[string]float64](ttl),
	}
}

// Close returns the close of ticker on exactly date.
func (p *CSVPriceBook) Close(ctx context.Context, ticker string, date time.Time) (float64, error) {
	table, err := p.cache.GetOrLoad(ctx, ticker, func(ctx context.Context) (map[string]float64, error) {
		return p.load(ctx, ticker)
	})
	if err != nil {
		return 0, err
	}

	key := utils.DateKey(date)
	v, ok := table[key]
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", ticker, key, ErrPriceNotFound)
	}
	return v, nil
}

func (p *CSVPriceBook) load(ctx context.Context, ticker string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.Dir, ticker+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("price book %s: %w", path, ErrPriceNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var bars []*PriceBar
	if err := gocsv.UnmarshalFile(f, &bars); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return closeTable(bars)
}

// closeTable indexes bars by YYYY-MM-DD. Rows without a usable close
// ("null" in Yahoo exports) are skipped.
func closeTable(bars []*PriceBar) (map[string]float64, error) {
	table := make(map[string]float64, len(bars))
	for _, b := range bars {
		d, err := utils.ParseStatementDate(b.Date)
		if err != nil {
			return nil, fmt.Errorf("price date: %w", err)
		}
		c := strings.TrimSpace(b.Close)
		if c == "" || strings.EqualFold(c, "null") {
			continue
		}
		v, err := utils.ParseAmount(c)
		if err != nil {
			return nil, fmt.Errorf("close on %s: %w", b.Date, err)
		}
		table[utils.DateKey(d)] = v
	}
	return table, nil
}
