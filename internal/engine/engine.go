// Package engine runs the statement pipeline over a list of companies,
// isolating failures per ticker.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seenimoa/finratios/internal/analysis/fundamental"
	"github.com/seenimoa/finratios/internal/company"
	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/datasource"
	"github.com/seenimoa/finratios/internal/report"
	"github.com/seenimoa/finratios/pkg/utils"
)

// Engine builds companies one at a time in the configured order.
type Engine struct {
	sources company.Sources
	policy  company.Policy
	log     *zap.Logger
}

// New creates an engine from explicit sources and policy.
func New(sources company.Sources, policy company.Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{sources: sources, policy: policy, log: logger}
}

// FromConfig creates an engine whose sources and policy come from cfg.
func FromConfig(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	src, err := SourcesFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return New(src, PolicyFromConfig(cfg.Policy), logger), nil
}

// SourcesFromConfig builds the statement source and price lookup.
func SourcesFromConfig(cfg *config.Config) (company.Sources, error) {
	var src company.Sources

	switch cfg.Input.Format {
	case "csv":
		src.Statements = datasource.NewCSVSource(cfg.Input.Dir)
	case "html":
		if cfg.Input.BaseURL != "" {
			src.Statements = datasource.NewRemoteHTMLSource(cfg.Input.BaseURL, cfg.Input.RateLimit)
		} else {
			src.Statements = datasource.NewHTMLSource(cfg.Input.Dir)
		}
	case "yahoo":
		src.Statements = datasource.NewYahooStatements(cfg.Input.Suffix, cfg.Input.RateLimit,
			time.Duration(cfg.Input.CacheTTL)*time.Second)
	default:
		return src, fmt.Errorf("unknown input format %q", cfg.Input.Format)
	}

	ttl := time.Duration(cfg.Prices.CacheTTL) * time.Second
	switch cfg.Prices.Source {
	case "csv":
		src.Prices = datasource.NewCSVPriceBook(cfg.Prices.Dir, ttl)
	case "yahoo":
		src.Prices = datasource.NewYahooPrices(cfg.Prices.Suffix, cfg.Prices.RateLimit, ttl)
	case "none", "":
	default:
		return src, fmt.Errorf("unknown price source %q", cfg.Prices.Source)
	}
	return src, nil
}

// PolicyFromConfig maps the policy section onto a company policy.
func PolicyFromConfig(p config.PolicyConfig) company.Policy {
	return company.Policy{
		MinYear:             p.MinYear,
		MinConsolidatedYear: p.MinConsolidatedYear,
		MinQuarters:         p.MinQuarters,
		StrictRatios:        p.StrictRatios,
		IncludeCashFlow:     p.IncludeCashFlow,
	}
}

// Failure records why a ticker produced no output.
type Failure struct {
	Ticker string
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Ticker, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result is the outcome of a run. Companies holds only tickers that were
// built completely, in request order.
type Result struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	Companies []*company.Company
	Failures  []Failure
	Peers     []fundamental.PeerComparison
}

// Err combines every failure, or returns nil when all tickers succeeded.
func (r *Result) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Tables flattens the built companies into the output tables.
func (r *Result) Tables() report.Tables {
	return report.CollectTables(r.Companies...)
}

// Company returns the built company for ticker, or nil.
func (r *Result) Company(ticker string) *company.Company {
	ticker = utils.NormalizeTicker(ticker)
	for _, c := range r.Companies {
		if utils.NormalizeTicker(c.Ticker) == ticker {
			return c
		}
	}
	return nil
}

// Run builds every company in order. A failing company contributes no rows;
// its error is kept in Result.Failures and the run continues. Run stops early
// only when ctx is cancelled.
func (e *Engine) Run(ctx context.Context, companies []config.CompanyConfig) *Result {
	res := &Result{RunID: uuid.New().String(), Started: time.Now()}
	log := e.log.With(zap.String("run_id", res.RunID))
	log.Info("run started", zap.Int("companies", len(companies)))

	for _, cc := range companies {
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, Failure{Ticker: cc.Ticker, Err: err})
			continue
		}

		c, err := company.Build(ctx, cc.Ticker, cc.QuarterOffset, e.sources, e.policy, log)
		if err != nil {
			log.Error("company failed", zap.String("ticker", cc.Ticker), zap.Error(err))
			res.Failures = append(res.Failures, Failure{Ticker: cc.Ticker, Err: err})
			continue
		}
		if len(c.Years) == 0 {
			log.Warn("no qualifying years", zap.String("ticker", cc.Ticker))
		}
		res.Companies = append(res.Companies, c)
	}

	res.Peers = comparePeers(res, companies, log)

	res.Duration = time.Since(res.Started)
	log.Info("run finished",
		zap.Int("built", len(res.Companies)),
		zap.Int("failed", len(res.Failures)),
		zap.Duration("duration", res.Duration))
	return res
}

// comparePeers ranks every company that lists peers against the peers'
// facts for the same year. Peers that failed or lack that year are skipped.
func comparePeers(res *Result, companies []config.CompanyConfig, log *zap.Logger) []fundamental.PeerComparison {
	var out []fundamental.PeerComparison
	for _, cc := range companies {
		if len(cc.Peers) == 0 {
			continue
		}
		target := res.Company(cc.Ticker)
		if target == nil || target.Latest() == nil {
			continue
		}
		latest := target.Latest()

		var peers []*fundamental.Consolidated
		for _, p := range cc.Peers {
			pc := res.Company(p)
			if pc == nil {
				log.Debug("peer not built", zap.String("ticker", cc.Ticker), zap.String("peer", p))
				continue
			}
			if fact, ok := pc.Consolidated[latest.Year]; ok {
				peers = append(peers, fact)
			}
		}
		if len(peers) == 0 {
			continue
		}
		out = append(out, fundamental.ComparePeers(latest, peers))
	}
	return out
}
