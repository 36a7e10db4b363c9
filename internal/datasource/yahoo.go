package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/seenimoa/finratios/internal/infra"
	"github.com/seenimoa/finratios/pkg/utils"
)

// DailyClose is one daily close returned by a chart fetch.
type DailyClose struct {
	Date  time.Time
	Close float64
}

// ChartFetcher fetches daily closes for a Yahoo symbol between start and end.
type ChartFetcher func(ctx context.Context, symbol string, start, end time.Time) ([]DailyClose, error)

// YahooPrices looks up closes through the Yahoo Finance chart API. Each fetch
// covers a window around the requested date and every returned close is
// cached, so neighbouring lookups do not hit the network again.
type YahooPrices struct {
	// Suffix is appended to tickers to form Yahoo symbols (e.g. ".L").
	Suffix string
	// Window is the number of days fetched on each side of a requested date.
	Window int

	fetch   ChartFetcher
	cache   *infra.Cache[float64]
	misses  *infra.Cache[bool]
	limiter *infra.RateLimiter
}

// NewYahooPrices creates a Yahoo price lookup limited to rps requests per second.
func NewYahooPrices(suffix string, rps int, ttl time.Duration) *YahooPrices {
	return &YahooPrices{
		Suffix:  suffix,
		Window:  5,
		fetch:   fetchYahooChart,
		cache:   infra.NewCache[float64](ttl),
		misses:  infra.NewCache[bool](ttl),
		limiter: infra.PerSecond(rps),
	}
}

// WithFetcher replaces the chart fetcher, mainly for tests.
func (y *YahooPrices) WithFetcher(f ChartFetcher) *YahooPrices {
	y.fetch = f
	return y
}

// Close returns the close of ticker on exactly date.
func (y *YahooPrices) Close(ctx context.Context, ticker string, date time.Time) (float64, error) {
	symbol := utils.YahooSymbol(ticker, y.Suffix)
	day := utils.Day(date)
	key := priceKey(symbol, day)

	if v, ok := y.cache.Get(key); ok {
		return v, nil
	}
	if _, miss := y.misses.Get(key); miss {
		return 0, fmt.Errorf("%s on %s: %w", symbol, utils.DateKey(day), ErrPriceNotFound)
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	window := time.Duration(y.Window) * 24 * time.Hour
	closes, err := y.fetch(ctx, symbol, day.Add(-window), day.Add(window+24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	for _, c := range closes {
		y.cache.Set(priceKey(symbol, c.Date), c.Close)
	}

	if v, ok := y.cache.Get(key); ok {
		return v, nil
	}
	y.misses.Set(key, true)
	return 0, fmt.Errorf("%s on %s: %w", symbol, utils.DateKey(day), ErrPriceNotFound)
}

func fetchYahooChart(ctx context.Context, symbol string, start, end time.Time) ([]DailyClose, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	params.Context = &ctx

	var out []DailyClose
	iter := chart.Get(params)
	for iter.Next() {
		bar := iter.Bar()
		c, _ := bar.Close.Float64()
		out = append(out, DailyClose{
			Date:  utils.Day(time.Unix(int64(bar.Timestamp), 0).UTC()),
			Close: c,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
