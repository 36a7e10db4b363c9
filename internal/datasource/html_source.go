package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/finratios/internal/infra"
	"github.com/seenimoa/finratios/pkg/models"
)

// HTMLSource reads quarterly statements from saved HTML pages holding the
// wide table layout: a header row of dates after a name column, then one row
// per line item. Pages are read from Dir, or fetched from BaseURL when set.
type HTMLSource struct {
	Dir      string
	BaseURL  string
	Selector string // table selector, "table" by default

	limiter *infra.RateLimiter
}

// NewHTMLSource creates a source reading {ticker}_quarterly_{kind}.html files from dir.
func NewHTMLSource(dir string) *HTMLSource {
	return &HTMLSource{Dir: dir, Selector: "table"}
}

// NewRemoteHTMLSource creates a source fetching pages from baseURL, limited
// to rps requests per second.
func NewRemoteHTMLSource(baseURL string, rps int) *HTMLSource {
	return &HTMLSource{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Selector: "table",
		limiter:  infra.PerSecond(rps),
	}
}

// Records parses the first matching table of the page for the given kind.
func (s *HTMLSource) Records(ctx context.Context, ticker string, kind models.StatementKind) ([]models.RawRecord, error) {
	name := FileName(ticker, kind, "html")

	body, err := s.open(ctx, ticker, kind, name)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	table := s.parseTable(doc)
	recs, err := table.records(ticker)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return recs, nil
}

func (s *HTMLSource) open(ctx context.Context, ticker string, kind models.StatementKind, name string) (io.ReadCloser, error) {
	if s.BaseURL == "" {
		f, err := os.Open(filepath.Join(s.Dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s %s: %w", ticker, kind, ErrStatementsNotFound)
			}
			return nil, err
		}
		return f, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	body, err := doGet(ctx, s.BaseURL+"/"+name, map[string]string{"Accept": "text/html"})
	if err != nil {
		var he *ErrHTTP
		if errors.As(err, &he) && he.StatusCode == 404 {
			return nil, fmt.Errorf("%s %s: %w", ticker, kind, ErrStatementsNotFound)
		}
		return nil, err
	}
	return body, nil
}

func (s *HTMLSource) parseTable(doc *goquery.Document) wideTable {
	sel := s.Selector
	if sel == "" {
		sel = "table"
	}

	var t wideTable
	table := doc.Find(sel).First()

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if t.header == nil {
			t.header = cells
			return
		}
		t.rows = append(t.rows, cells)
	})

	return t
}
