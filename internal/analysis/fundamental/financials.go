package fundamental

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Zone is the Altman Z-score distress classification.
type Zone string

const (
	ZoneSafe      Zone = "Safe"
	ZoneGrey      Zone = "Grey"
	ZoneDistress  Zone = "Distress"
	ZoneUndefined Zone = "Undefined"
)

// Altman zone boundaries for public manufacturers.
const (
	AltmanSafeAbove     = 2.99
	AltmanDistressBelow = 1.81
)

// AltmanZone classifies a Z-score.
func AltmanZone(z float64) Zone {
	switch {
	case math.IsNaN(z) || math.IsInf(z, 0):
		return ZoneUndefined
	case z > AltmanSafeAbove:
		return ZoneSafe
	case z < AltmanDistressBelow:
		return ZoneDistress
	default:
		return ZoneGrey
	}
}

// FinancialHealth scores the overall financial robustness of a company-year.
type FinancialHealth struct {
	Score      float64            // 0-100 composite score
	Grade      string             // "A+", "A", "B+", "B", "C", "D"
	Zone       Zone               // Altman classification
	Strengths  []string           // positive factors
	Weaknesses []string           // negative factors
	Components map[string]float64 // individual component scores
}

// AssessFinancialHealth evaluates a company-year from its ratios and growth.
func AssessFinancialHealth(c *Consolidated, growth GrowthRates) FinancialHealth {
	h := FinancialHealth{
		Components: make(map[string]float64),
	}
	if c == nil {
		h.Zone = ZoneUndefined
		h.Grade = "D"
		return h
	}

	totalScore := 0.0
	totalWeight := 0.0

	// Profitability (30 points).
	profScore := 0.0
	roe := c.MustRatio(KeyROE)
	if roe > 0.20 {
		profScore += 10
		h.Strengths = append(h.Strengths, fmt.Sprintf("High ROE: %.1f%%", roe*100))
	} else if roe > 0.12 {
		profScore += 6
	} else if roe > 0 {
		profScore += 3
	} else {
		h.Weaknesses = append(h.Weaknesses, "Negative or zero ROE")
	}

	roic := c.MustRatio(KeyROIC)
	if roic > 0.15 {
		profScore += 10
		h.Strengths = append(h.Strengths, fmt.Sprintf("High ROIC: %.1f%%", roic*100))
	} else if roic > 0.08 {
		profScore += 6
	} else if roic > 0 {
		profScore += 3
	}

	opm := c.MustRatio(KeyOperatingMargin)
	if opm > 0.20 {
		profScore += 10
		h.Strengths = append(h.Strengths, fmt.Sprintf("Strong operating margin: %.1f%%", opm*100))
	} else if opm > 0.10 {
		profScore += 6
	} else if opm > 0 {
		profScore += 3
	} else {
		h.Weaknesses = append(h.Weaknesses, "Negative operating margin")
	}

	h.Components["profitability"] = profScore
	totalScore += profScore
	totalWeight += 30

	// Solvency (25 points).
	solvScore := 0.0
	de := c.MustRatio(KeyDebtToEquity)
	if de >= 0 && de < 0.5 {
		solvScore += 12.5
		h.Strengths = append(h.Strengths, "Low debt-to-equity ratio")
	} else if de >= 0 && de < 1 {
		solvScore += 8
	} else if de >= 0 && de < 2 {
		solvScore += 4
	} else {
		h.Weaknesses = append(h.Weaknesses, fmt.Sprintf("High D/E ratio: %.2f", de))
	}

	cov := c.MustRatio(KeyEBITInterestCoverage)
	if cov > 5 {
		solvScore += 12.5
	} else if cov > 2 {
		solvScore += 8
	} else if cov > 1 {
		solvScore += 4
	} else if cov > 0 {
		solvScore += 2
		h.Weaknesses = append(h.Weaknesses, "Low interest coverage")
	}

	h.Components["solvency"] = solvScore
	totalScore += solvScore
	totalWeight += 25

	// Liquidity (15 points).
	liqScore := 0.0
	cr := c.MustRatio(KeyCurrentRatio)
	if cr > 2 {
		liqScore += 15
		h.Strengths = append(h.Strengths, "Strong current ratio")
	} else if cr > 1.5 {
		liqScore += 12
	} else if cr > 1 {
		liqScore += 7
	} else {
		h.Weaknesses = append(h.Weaknesses, fmt.Sprintf("Weak current ratio: %.2f", cr))
	}

	h.Components["liquidity"] = liqScore
	totalScore += liqScore
	totalWeight += 15

	// Growth (20 points).
	growthScore := 0.0
	if growth.RevenueGrowthYoY > 20 {
		growthScore += 10
		h.Strengths = append(h.Strengths, fmt.Sprintf("Strong revenue growth: %.1f%% YoY", growth.RevenueGrowthYoY))
	} else if growth.RevenueGrowthYoY > 10 {
		growthScore += 6
	} else if growth.RevenueGrowthYoY > 0 {
		growthScore += 3
	} else {
		h.Weaknesses = append(h.Weaknesses, "Declining revenue")
	}

	if growth.NetIncomeGrowthYoY > 20 {
		growthScore += 10
	} else if growth.NetIncomeGrowthYoY > 10 {
		growthScore += 6
	} else if growth.NetIncomeGrowthYoY > 0 {
		growthScore += 3
	} else {
		h.Weaknesses = append(h.Weaknesses, "Declining profits")
	}

	h.Components["growth"] = growthScore
	totalScore += growthScore
	totalWeight += 20

	// Distress (10 points).
	h.Zone = AltmanZone(c.AltmanZ())
	distScore := 0.0
	switch h.Zone {
	case ZoneSafe:
		distScore = 10
		h.Strengths = append(h.Strengths, fmt.Sprintf("Altman Z-score in safe zone: %.2f", c.AltmanZ()))
	case ZoneGrey:
		distScore = 5
	case ZoneDistress:
		h.Weaknesses = append(h.Weaknesses, fmt.Sprintf("Altman Z-score in distress zone: %.2f", c.AltmanZ()))
	}

	h.Components["distress"] = distScore
	totalScore += distScore
	totalWeight += 10

	if totalWeight > 0 {
		h.Score = totalScore / totalWeight * 100
	}

	switch {
	case h.Score >= 85:
		h.Grade = "A+"
	case h.Score >= 70:
		h.Grade = "A"
	case h.Score >= 55:
		h.Grade = "B+"
	case h.Score >= 40:
		h.Grade = "B"
	case h.Score >= 25:
		h.Grade = "C"
	default:
		h.Grade = "D"
	}

	return h
}

// QualityScore is a simplified Piotroski-style F-score.
type QualityScore struct {
	Score  int      // checks passed
	Max    int      // checks evaluated
	Checks []string // descriptions of each check passed/failed
}

// PiotroskiFScore computes a simplified F-score for curr. Checks that need the
// previous company-year are skipped when prev is nil; the rest compare the
// current and prior year-end balance sheets carried by curr.
func PiotroskiFScore(curr, prev *Consolidated) QualityScore {
	qs := QualityScore{}
	if curr == nil {
		return qs
	}

	check := func(ok bool, pass, fail string) {
		qs.Max++
		if ok {
			qs.Score++
			qs.Checks = append(qs.Checks, "✓ "+pass)
		} else {
			qs.Checks = append(qs.Checks, "✗ "+fail)
		}
	}

	bs, prior := curr.Balance, curr.PriorBalance

	// 1. Positive net income.
	check(curr.Income.NetIncome > 0, "Positive net income", "Negative net income")

	// 2. Positive operating income.
	check(curr.Income.OperatingIncome > 0, "Positive operating income", "Negative operating income")

	// 3. Declining leverage.
	if bs.TotalEquity > 0 && prior.TotalEquity > 0 {
		check(bs.TotalDebt/bs.TotalEquity < prior.TotalDebt/prior.TotalEquity,
			"Declining leverage", "Increasing leverage")
	}

	// 4. Improving current ratio.
	if bs.CurrentLiabilities > 0 && prior.CurrentLiabilities > 0 {
		check(bs.CurrentAssets/bs.CurrentLiabilities > prior.CurrentAssets/prior.CurrentLiabilities,
			"Improving current ratio", "Declining current ratio")
	}

	// 5. No dilution.
	check(bs.SharesOutstanding <= prior.SharesOutstanding, "No equity dilution", "Equity diluted")

	if prev != nil {
		// 6. ROA improving.
		check(curr.MustRatio(KeyROA) > prev.MustRatio(KeyROA), "Improving ROA", "Declining ROA")

		// 7. Improving gross margin.
		check(curr.MustRatio(KeyGrossMargin) > prev.MustRatio(KeyGrossMargin),
			"Improving gross margin", "Declining gross margin")

		// 8. Improving asset turnover.
		check(curr.MustRatio(KeyAssetTurnover) > prev.MustRatio(KeyAssetTurnover),
			"Improving asset turnover", "Declining asset turnover")
	}

	return qs
}

// Summarize generates a readable summary of a company-year.
func Summarize(c *Consolidated, growth GrowthRates, health FinancialHealth) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %d\n", c.Ticker, c.Year))
	b.WriteString(fmt.Sprintf("Financial Health: %s (%.0f/100)\n", health.Grade, health.Score))
	b.WriteString(fmt.Sprintf("Revenue: %s | Net Income: %s | EBITDA: %s\n",
		humanize.Commaf(c.Income.Revenue), humanize.Commaf(c.Income.NetIncome), humanize.Commaf(c.Income.EBITDA)))
	b.WriteString(fmt.Sprintf("P/E: %.1f | P/B: %.1f | EV/EBITDA: %.1f\n",
		c.MustRatio(KeyPriceToEarnings), c.MustRatio(KeyMarketToBook), c.MustRatio(KeyEVToEBITDA)))
	b.WriteString(fmt.Sprintf("ROE: %.1f%% | ROIC: %.1f%% | D/E: %.2f\n",
		c.MustRatio(KeyROE)*100, c.MustRatio(KeyROIC)*100, c.MustRatio(KeyDebtToEquity)))
	b.WriteString(fmt.Sprintf("Altman Z: %.2f (%s)\n", c.AltmanZ(), health.Zone))
	b.WriteString(fmt.Sprintf("Revenue Growth YoY: %.1f%% | Net Income Growth YoY: %.1f%%\n",
		growth.RevenueGrowthYoY, growth.NetIncomeGrowthYoY))

	if len(health.Strengths) > 0 {
		b.WriteString("Strengths: ")
		b.WriteString(strings.Join(health.Strengths, "; "))
		b.WriteString("\n")
	}
	if len(health.Weaknesses) > 0 {
		b.WriteString("Weaknesses: ")
		b.WriteString(strings.Join(health.Weaknesses, "; "))
		b.WriteString("\n")
	}

	return b.String()
}
