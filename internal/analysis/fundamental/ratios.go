package fundamental

import (
	"math"
	"sort"
)

// GrowthRates holds year-over-year and multi-year growth of a company-year,
// in percent.
type GrowthRates struct {
	Year               int     `json:"year"`
	RevenueGrowthYoY   float64 `json:"revenue_growth_yoy"`
	NetIncomeGrowthYoY float64 `json:"net_income_growth_yoy"`
	EPSGrowthYoY       float64 `json:"eps_growth_yoy"`
	EBITDAGrowthYoY    float64 `json:"ebitda_growth_yoy"`
	RevenueCAGR3Y      float64 `json:"revenue_cagr_3y"`
	NetIncomeCAGR3Y    float64 `json:"net_income_cagr_3y"`
	MarketCapGrowthYoY float64 `json:"market_cap_growth_yoy"`
}

// ComputeGrowth calculates growth rates for the latest company-year in facts
// against the facts one and three years earlier. Missing comparison years
// leave the corresponding rates at 0.
func ComputeGrowth(facts []*Consolidated) GrowthRates {
	g := GrowthRates{}
	if len(facts) == 0 {
		return g
	}

	byYear := make(map[int]*Consolidated, len(facts))
	years := make([]int, 0, len(facts))
	for _, f := range facts {
		if f == nil {
			continue
		}
		if _, dup := byYear[f.Year]; !dup {
			years = append(years, f.Year)
		}
		byYear[f.Year] = f
	}
	if len(years) == 0 {
		return g
	}
	sort.Ints(years)

	curr := byYear[years[len(years)-1]]
	g.Year = curr.Year

	if prev, ok := byYear[curr.Year-1]; ok {
		g.RevenueGrowthYoY = pctChange(prev.Income.Revenue, curr.Income.Revenue)
		g.NetIncomeGrowthYoY = pctChange(prev.Income.NetIncome, curr.Income.NetIncome)
		g.EBITDAGrowthYoY = pctChange(prev.Income.EBITDA, curr.Income.EBITDA)
		g.EPSGrowthYoY = pctChange(prev.MustRatio(KeyEPSBasic), curr.MustRatio(KeyEPSBasic))
		g.MarketCapGrowthYoY = pctChange(prev.MarketCap, curr.MarketCap)
	}

	if base, ok := byYear[curr.Year-3]; ok {
		g.RevenueCAGR3Y = cagr(base.Income.Revenue, curr.Income.Revenue, 3)
		g.NetIncomeCAGR3Y = cagr(base.Income.NetIncome, curr.Income.NetIncome, 3)
	}

	return g
}

// --- helpers ---

func pctChange(old, new_ float64) float64 {
	if old == 0 || math.IsNaN(old) || math.IsNaN(new_) {
		return 0
	}
	return (new_ - old) / math.Abs(old) * 100
}

func cagr(start, end float64, years float64) float64 {
	if start <= 0 || end <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(end/start, 1/years) - 1) * 100
}
