// Package datasource provides the raw inputs of the ratio pipeline: quarterly
// statement records per ticker and market close prices. Statements come from
// CSV exports, HTML tables, the Yahoo Finance fundamentals timeseries or memory;
// prices from CSV price books, Yahoo Finance or memory.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seenimoa/finratios/pkg/models"
)

// StatementSource returns the raw quarterly records of one statement kind for
// a ticker, in the order the source lists them.
type StatementSource interface {
	Records(ctx context.Context, ticker string, kind models.StatementKind) ([]models.RawRecord, error)
}

// PriceLookup returns the market close of a ticker on an exact date.
type PriceLookup interface {
	Close(ctx context.Context, ticker string, date time.Time) (float64, error)
}

// --- Sentinel errors ---

// ErrStatementsNotFound is returned when a source has no data for a ticker and kind.
var ErrStatementsNotFound = errors.New("statements not found")

// ErrPriceNotFound is returned when no close exists for the requested date.
var ErrPriceNotFound = errors.New("market close not found")

// ErrMalformedTable is returned when a wide statement table cannot be read.
var ErrMalformedTable = errors.New("malformed statement table")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// FileName returns the conventional file name of a ticker's quarterly
// statement export with the given extension ("csv" or "html").
func FileName(ticker string, kind models.StatementKind, ext string) string {
	var stem string
	switch kind {
	case models.KindIncome:
		stem = "financials"
	case models.KindBalance:
		stem = "balance-sheet"
	case models.KindCashFlow:
		stem = "cash-flow"
	default:
		stem = string(kind)
	}
	return fmt.Sprintf("%s_quarterly_%s.%s", ticker, stem, ext)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html, text/csv, */*")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}
