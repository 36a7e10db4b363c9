package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/finratios/internal/infra"
	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// YahooTimeseriesURL is the Yahoo Finance fundamentals timeseries endpoint.
const YahooTimeseriesURL = "https://query1.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries"

const quarterlyPrefix = "quarterly"

// YahooStatements reads quarterly statements from the Yahoo Finance
// fundamentals timeseries API. Each line item is requested as
// "quarterly" + its raw name, so the returned records carry the names the
// derivers read.
type YahooStatements struct {
	Suffix  string
	BaseURL string
	// Since bounds the oldest statement requested.
	Since time.Time

	cache   *infra.Cache[[]models.RawRecord]
	limiter *infra.RateLimiter
	now     func() time.Time
}

// NewYahooStatements creates a statement source limited to rps requests per
// second. Parsed statements are cached for ttl.
func NewYahooStatements(suffix string, rps int, ttl time.Duration) *YahooStatements {
	return &YahooStatements{
		Suffix:  suffix,
		BaseURL: YahooTimeseriesURL,
		Since:   time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		cache:   infra.NewCache[[]models.RawRecord](ttl),
		limiter: infra.PerSecond(rps),
		now:     time.Now,
	}
}

// Records returns the statements of a kind, newest first.
func (y *YahooStatements) Records(ctx context.Context, ticker string, kind models.StatementKind) ([]models.RawRecord, error) {
	fields, err := yahooFields(kind)
	if err != nil {
		return nil, err
	}
	symbol := utils.YahooSymbol(ticker, y.Suffix)

	recs, err := y.cache.GetOrLoad(ctx, symbol+"|"+string(kind), func(ctx context.Context) ([]models.RawRecord, error) {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return y.fetch(ctx, ticker, symbol, fields)
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s %s: %w", ticker, kind, ErrStatementsNotFound)
	}
	out := make([]models.RawRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func yahooFields(kind models.StatementKind) ([]string, error) {
	switch kind {
	case models.KindIncome:
		return append(append([]string{}, statement.IncomeStatementFields...), statement.FieldPreferredStockDividends), nil
	case models.KindBalance:
		return append(append([]string{}, statement.BalanceSheetFields...), statement.FieldMinorityInterest), nil
	case models.KindCashFlow:
		return statement.CashFlowFields, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
}

// --- Yahoo timeseries response types ---

type yfTimeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *yfError                     `json:"error"`
	} `json:"timeseries"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yfTimeseriesMeta struct {
	Symbol []string `json:"symbol"`
	Type   []string `json:"type"`
}

type yfTimeseriesPoint struct {
	AsOfDate      string   `json:"asOfDate"`
	PeriodType    string   `json:"periodType"`
	ReportedValue yfFinVal `json:"reportedValue"`
}

type yfFinVal struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

func (y *YahooStatements) fetch(ctx context.Context, ticker, symbol string, fields []string) ([]models.RawRecord, error) {
	types := make([]string, len(fields))
	for i, f := range fields {
		types[i] = quarterlyPrefix + f
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", strings.Join(types, ","))
	q.Set("period1", fmt.Sprint(y.Since.Unix()))
	q.Set("period2", fmt.Sprint(y.now().Unix()))
	endpoint := fmt.Sprintf("%s/%s?%s", strings.TrimRight(y.BaseURL, "/"), url.PathEscape(symbol), q.Encode())

	var resp yfTimeseriesResponse
	if err := fetchJSON(ctx, endpoint, &resp); err != nil {
		var he *ErrHTTP
		if errors.As(err, &he) && he.StatusCode == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("yahoo timeseries %s: %w", symbol, err)
	}
	if e := resp.Timeseries.Error; e != nil {
		return nil, fmt.Errorf("yahoo timeseries %s: %s: %s", symbol, e.Code, e.Description)
	}

	byDate := make(map[time.Time]map[string]float64)
	seen := make(map[string]bool)
	for _, result := range resp.Timeseries.Result {
		var meta yfTimeseriesMeta
		if err := json.Unmarshal(result["meta"], &meta); err != nil || len(meta.Type) == 0 {
			continue
		}
		typ := meta.Type[0]
		raw, ok := result[typ]
		if !ok {
			continue
		}
		var points []*yfTimeseriesPoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("yahoo timeseries %s %s: %w", symbol, typ, err)
		}
		field := strings.TrimPrefix(typ, quarterlyPrefix)
		for _, p := range points {
			if p == nil || p.AsOfDate == "" {
				continue
			}
			d, err := utils.ParseStatementDate(p.AsOfDate)
			if err != nil {
				continue
			}
			if byDate[d] == nil {
				byDate[d] = make(map[string]float64)
			}
			byDate[d][field] = p.ReportedValue.Raw
			seen[field] = true
		}
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	// A line item reported for some quarters reads as 0 in the others, like
	// an empty cell of a wide export.
	recs := make([]models.RawRecord, 0, len(dates))
	for _, d := range dates {
		values := byDate[d]
		for field := range seen {
			if _, ok := values[field]; !ok {
				values[field] = 0
			}
		}
		recs = append(recs, models.RawRecord{Ticker: ticker, StatementDate: d, Fields: values})
	}
	return recs, nil
}

// fetchJSON performs a GET request and decodes the JSON response into v.
func fetchJSON(ctx context.Context, endpoint string, v any) error {
	body, err := doGet(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
