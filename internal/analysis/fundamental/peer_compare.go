package fundamental

import (
	"math"
	"sort"
)

// PeerEntry is one company-year in a cross-company comparison.
type PeerEntry struct {
	Ticker    string  `json:"ticker"`
	Year      int     `json:"year"`
	MarketCap float64 `json:"market_cap"`
	Price     float64 `json:"price"`
	Rank      int     `json:"rank"`  // computed rank
	Score     float64 `json:"score"` // composite score

	fact *Consolidated
}

// NewPeerEntry wraps a company-year for comparison.
func NewPeerEntry(c *Consolidated) PeerEntry {
	return PeerEntry{
		Ticker:    c.Ticker,
		Year:      c.Year,
		MarketCap: c.MarketCap,
		Price:     c.MarketClose,
		fact:      c,
	}
}

// PeerComparison holds comparative analysis across peers.
type PeerComparison struct {
	Target  PeerEntry        `json:"target"`
	Peers   []PeerEntry      `json:"peers"`
	Metrics []RelativeMetric `json:"metrics"`
	Summary string           `json:"summary"`
}

// ComparePeers ranks a target company-year against other companies.
func ComparePeers(target *Consolidated, peers []*Consolidated) PeerComparison {
	all := make([]PeerEntry, 0, len(peers)+1)
	all = append(all, NewPeerEntry(target))
	for _, p := range peers {
		if p == nil || p.Ticker == target.Ticker {
			continue
		}
		all = append(all, NewPeerEntry(p))
	}

	for i := range all {
		all[i].Score = scorePeer(all[i].fact)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	for i := range all {
		all[i].Rank = i + 1
	}

	pc := PeerComparison{Peers: make([]PeerEntry, 0, len(all)-1)}
	for _, p := range all {
		if p.Ticker == target.Ticker {
			pc.Target = p
		} else {
			pc.Peers = append(pc.Peers, p)
		}
	}

	others := make([]*Consolidated, 0, len(pc.Peers))
	for _, p := range pc.Peers {
		others = append(others, p.fact)
	}
	pc.Metrics = RelativeValuationMetrics(target, others)
	pc.Summary = buildPeerSummary(target.Ticker, pc.Target.Rank, len(all))

	return pc
}

// RelativeMetric positions one ratio of the target within its peers.
type RelativeMetric struct {
	Metric      string  `json:"metric"`
	TargetValue float64 `json:"target_value"`
	PeerAvg     float64 `json:"peer_avg"`
	PeerMedian  float64 `json:"peer_median"`
	Percentile  float64 `json:"percentile"` // 0-100
}

// RelativeValuationMetrics computes relative valuation against peers.
func RelativeValuationMetrics(target *Consolidated, peers []*Consolidated) []RelativeMetric {
	type metricExtractor struct {
		name string
		key  string
		// lower is better (P/E, P/B, D/E); false means higher is better (ROE, margins)
		lowerBetter bool
	}

	extractors := []metricExtractor{
		{"P/E", KeyPriceToEarnings, true},
		{"P/B", KeyMarketToBook, true},
		{"EV/EBITDA", KeyEVToEBITDA, true},
		{"ROE", KeyROE, false},
		{"ROIC", KeyROIC, false},
		{"Operating Margin", KeyOperatingMargin, false},
		{"D/E", KeyDebtToEquity, true},
		{"Altman Z", KeyAltmanZ, false},
	}

	var results []RelativeMetric

	for _, ext := range extractors {
		tv := target.MustRatio(ext.key)
		if tv == 0 || !finite(tv) {
			continue
		}

		var vals []float64
		for _, p := range peers {
			v := p.MustRatio(ext.key)
			if v > 0 && finite(v) {
				vals = append(vals, v)
			}
		}

		if len(vals) == 0 {
			continue
		}

		below := 0
		for _, v := range vals {
			if ext.lowerBetter {
				if v > tv {
					below++
				}
			} else {
				if v < tv {
					below++
				}
			}
		}

		results = append(results, RelativeMetric{
			Metric:      ext.name,
			TargetValue: tv,
			PeerAvg:     avgFloat(vals),
			PeerMedian:  medianFloat(vals),
			Percentile:  float64(below) / float64(len(vals)) * 100,
		})
	}

	return results
}

// --- helpers ---

func scorePeer(c *Consolidated) float64 {
	score := 0.0

	// Higher ROE is better (max 30 points).
	if roe := c.MustRatio(KeyROE) * 100; roe > 0 {
		score += math.Min(roe, 30)
	}

	// Higher ROIC is better (max 30 points).
	if roic := c.MustRatio(KeyROIC) * 100; roic > 0 {
		score += math.Min(roic, 30)
	}

	// Lower P/E is better (max 20 points).
	if pe := c.MustRatio(KeyPriceToEarnings); pe > 0 && pe < 100 {
		score += (100 - pe) / 5
	}

	// Lower D/E is better (max 10 points).
	if de := c.MustRatio(KeyDebtToEquity); de >= 0 && de < 5 {
		score += (5 - de) * 2
	}

	// Altman safety bonus (max 10 points).
	switch AltmanZone(c.AltmanZ()) {
	case ZoneSafe:
		score += 10
	case ZoneGrey:
		score += 5
	}

	return score
}

func buildPeerSummary(ticker string, rank, total int) string {
	pctile := (1 - float64(rank-1)/float64(total)) * 100
	switch {
	case pctile >= 80:
		return ticker + " ranks in the top quintile among peers"
	case pctile >= 60:
		return ticker + " ranks above average among peers"
	case pctile >= 40:
		return ticker + " ranks average among peers"
	case pctile >= 20:
		return ticker + " ranks below average among peers"
	default:
		return ticker + " ranks in the bottom quintile among peers"
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func avgFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func medianFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
