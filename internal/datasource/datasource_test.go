package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finratios/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const incomeCSV = `name,ttm,12/31/2023,9/30/2023
	GrossProfit,"1,700","1,000",700
	CostOfRevenue,"2,000","1,200",800
EBIT,,400,-
`

func TestFileName(t *testing.T) {
	assert.Equal(t, "AAPL_quarterly_financials.csv", FileName("AAPL", models.KindIncome, "csv"))
	assert.Equal(t, "AAPL_quarterly_balance-sheet.csv", FileName("AAPL", models.KindBalance, "csv"))
	assert.Equal(t, "AAPL_quarterly_cash-flow.html", FileName("AAPL", models.KindCashFlow, "html"))
}

func TestCSVSourceRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ACME_quarterly_financials.csv", incomeCSV)

	recs, err := NewCSVSource(dir).Records(context.Background(), "ACME", models.KindIncome)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, day(2023, 12, 31), recs[0].StatementDate)
	assert.Equal(t, "ACME", recs[0].Ticker)
	assert.Equal(t, 1000.0, recs[0].Fields["GrossProfit"])
	assert.Equal(t, 1200.0, recs[0].Fields["CostOfRevenue"])
	assert.Equal(t, 400.0, recs[0].Fields["EBIT"])

	assert.Equal(t, day(2023, 9, 30), recs[1].StatementDate)
	assert.Equal(t, 700.0, recs[1].Fields["GrossProfit"])
	v, ok := recs[1].Lookup("EBIT")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(t.TempDir()).Records(context.Background(), "NOPE", models.KindBalance)
	assert.ErrorIs(t, err, ErrStatementsNotFound)
}

func TestCSVSourceNoDateColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ACME_quarterly_financials.csv", "name,ttm\nEBIT,1\n")

	_, err := NewCSVSource(dir).Records(context.Background(), "ACME", models.KindIncome)
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestCSVSourceBadNumber(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ACME_quarterly_financials.csv", "name,12/31/2023\nEBIT,abc\n")

	_, err := NewCSVSource(dir).Records(context.Background(), "ACME", models.KindIncome)
	assert.ErrorIs(t, err, ErrMalformedTable)
}

const balanceHTML = `<html><body>
<table>
  <tr><th>name</th><th>12/31/2023</th><th>12/31/2022</th></tr>
  <tr><td>CurrentAssets</td><td>1,500</td><td>1,200</td></tr>
  <tr><td>	Inventory</td><td>(20)</td><td></td></tr>
</table>
</body></html>`

func TestHTMLSourceRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ACME_quarterly_balance-sheet.html", balanceHTML)

	recs, err := NewHTMLSource(dir).Records(context.Background(), "ACME", models.KindBalance)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1500.0, recs[0].Fields["CurrentAssets"])
	assert.Equal(t, -20.0, recs[0].Fields["Inventory"])
	assert.Equal(t, 0.0, recs[1].Fields["Inventory"])
	assert.Equal(t, day(2022, 12, 31), recs[1].StatementDate)
}

func TestRemoteHTMLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ACME_quarterly_balance-sheet.html" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(balanceHTML))
	}))
	defer srv.Close()

	src := NewRemoteHTMLSource(srv.URL+"/", 100)
	recs, err := src.Records(context.Background(), "ACME", models.KindBalance)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = src.Records(context.Background(), "ACME", models.KindIncome)
	assert.ErrorIs(t, err, ErrStatementsNotFound)
}

func TestMemorySource(t *testing.T) {
	m := NewMemorySource()
	m.Add("ACME", models.KindIncome, models.RawRecord{StatementDate: day(2023, 3, 31)})
	m.Add("ACME", models.KindIncome, models.RawRecord{StatementDate: day(2023, 6, 30)})

	recs, err := m.Records(context.Background(), "ACME", models.KindIncome)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, day(2023, 6, 30), recs[1].StatementDate)

	_, err = m.Records(context.Background(), "ACME", models.KindCashFlow)
	assert.ErrorIs(t, err, ErrStatementsNotFound)
}

const priceCSV = `Date,Open,High,Low,Close,Adj Close,Volume
2024-01-02,10,11,9,10.5,10.4,1000
2024-01-03,10.5,12,10,11.25,11.1,1500
2024-01-04,null,null,null,null,null,null
`

func TestCSVPriceBook(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ACME.csv", priceCSV)

	book := NewCSVPriceBook(dir, 0)
	ctx := context.Background()

	v, err := book.Close(ctx, "ACME", day(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 11.25, v)

	_, err = book.Close(ctx, "ACME", day(2024, 1, 4))
	assert.ErrorIs(t, err, ErrPriceNotFound)

	_, err = book.Close(ctx, "ACME", day(2024, 1, 1))
	assert.ErrorIs(t, err, ErrPriceNotFound)

	// Table is cached: removing the file does not affect later lookups.
	require.NoError(t, os.Remove(filepath.Join(dir, "ACME.csv")))
	v, err = book.Close(ctx, "ACME", day(2024, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 10.5, v)

	_, err = book.Close(ctx, "NOPE", day(2024, 1, 2))
	assert.ErrorIs(t, err, ErrPriceNotFound)
}

func TestYahooPrices(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, symbol string, start, end time.Time) ([]DailyClose, error) {
		calls++
		assert.Equal(t, "ACME.L", symbol)
		assert.True(t, start.Before(day(2024, 1, 2)))
		assert.True(t, end.After(day(2024, 1, 2)))
		return []DailyClose{
			{Date: day(2024, 1, 2), Close: 101.5},
			{Date: day(2024, 1, 3), Close: 102},
		}, nil
	}

	y := NewYahooPrices(".L", 100, time.Hour).WithFetcher(fetch)
	ctx := context.Background()

	v, err := y.Close(ctx, "acme", day(2024, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 101.5, v)

	v, err = y.Close(ctx, "ACME", day(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 102.0, v)
	assert.Equal(t, 1, calls)

	_, err = y.Close(ctx, "ACME", day(2024, 1, 6))
	assert.ErrorIs(t, err, ErrPriceNotFound)
	_, err = y.Close(ctx, "ACME", day(2024, 1, 6))
	assert.ErrorIs(t, err, ErrPriceNotFound)
	assert.Equal(t, 2, calls)
}

func TestYahooPricesFetchError(t *testing.T) {
	boom := errors.New("boom")
	y := NewYahooPrices("", 100, time.Hour).WithFetcher(func(context.Context, string, time.Time, time.Time) ([]DailyClose, error) {
		return nil, boom
	})
	_, err := y.Close(context.Background(), "ACME", day(2024, 1, 2))
	assert.ErrorIs(t, err, boom)
}

func TestMemoryPrices(t *testing.T) {
	p := NewMemoryPrices()
	p.Set("ACME", day(2024, 1, 1), 42)

	v, err := p.Close(context.Background(), "ACME", day(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	_, err = p.Close(context.Background(), "ACME", day(2024, 1, 2))
	assert.ErrorIs(t, err, ErrPriceNotFound)
}
