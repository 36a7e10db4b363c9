package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/seenimoa/finratios/internal/analysis/fundamental"
	"github.com/seenimoa/finratios/internal/company"
	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	headerCell = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell       = lipgloss.NewStyle().Padding(0, 1)
	numberCell = cell.Align(lipgloss.Right)
	mutedCell  = cell.Foreground(lipgloss.Color("#6B7280"))

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

// RenderStatementTable renders statement rows as a bordered table.
func RenderStatementTable(rows []models.StatementRow) string {
	t := newTable("Company", "Date", "Period", "Classification", "Account", "Amount")
	for _, r := range rows {
		t.Row(r.Company, r.StatementDate, fmt.Sprintf("Q%d-%d", r.Quarter, r.Year),
			r.AccountClassification, r.Account, utils.FormatAmount(r.Amount))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerCell
		case col == 5:
			return numberCell
		default:
			return cell
		}
	})
	return t.String()
}

// RenderRatioTable renders ratio rows as a bordered table.
func RenderRatioTable(rows []models.RatioRow) string {
	t := newTable("Company", "Year", "Category", "Ratio", "Value")
	for _, r := range rows {
		t.Row(r.Company, strconv.Itoa(r.Year), r.RatioType, r.Ratio, utils.FormatRatio(r.Value))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerCell
		case col == 4:
			return numberCell
		default:
			return cell
		}
	})
	return t.String()
}

// RenderRatioMatrix renders one row per ratio and one column per year.
func RenderRatioMatrix(c *company.Company) string {
	facts := c.Facts()
	headers := []string{"Ratio"}
	for _, f := range facts {
		headers = append(headers, strconv.Itoa(f.Year))
	}
	t := newTable(headers...)

	if len(facts) > 0 {
		// Every fact of a company carries the same ratio set except the
		// cash-flow rows, so the latest year drives the row order.
		for _, rv := range facts[len(facts)-1].Ratios() {
			row := []string{rv.Label}
			for _, f := range facts {
				v, ok := f.Ratio(rv.Key)
				if !ok {
					row = append(row, "")
					continue
				}
				row = append(row, utils.FormatRatio(v))
			}
			t.Row(row...)
		}
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerCell
		case col == 0:
			return cell
		default:
			return numberCell
		}
	})
	return t.String()
}

// RenderCompany renders the terminal report of one company: a health
// summary of the latest year followed by the ratio matrix.
func RenderCompany(c *company.Company) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s  (quarter offset %+d)", c.Ticker, c.QuarterOffset)))
	sb.WriteString("\n")
	sb.WriteString(mutedCell.Render("Generated " + ReportTimestamp()))
	sb.WriteString("\n\n")

	latest := c.Latest()
	if latest == nil {
		sb.WriteString("No consolidated years.\n")
		return sb.String()
	}

	facts := c.Facts()
	growth := fundamental.ComputeGrowth(facts)
	health := fundamental.AssessFinancialHealth(latest, growth)

	sb.WriteString(sectionStyle.Render("Summary"))
	sb.WriteString("\n")
	sb.WriteString(fundamental.Summarize(latest, growth, health))

	var prev *fundamental.Consolidated
	if len(facts) > 1 {
		prev = facts[len(facts)-2]
	}
	fs := fundamental.PiotroskiFScore(latest, prev)
	sb.WriteString(fmt.Sprintf("Piotroski F-Score: %d/%d\n", fs.Score, fs.Max))
	sb.WriteString(fmt.Sprintf("Market Cap: %s | Enterprise Value: %s\n",
		humanize.Commaf(math.Round(latest.MarketCap)), humanize.Commaf(math.Round(latest.EnterpriseValue))))
	if undefined := latest.Undefined(); len(undefined) > 0 {
		sb.WriteString(fmt.Sprintf("Undefined ratios: %s\n", strings.Join(undefined, ", ")))
	}

	sb.WriteString("\n")
	sb.WriteString(sectionStyle.Render("Ratios"))
	sb.WriteString("\n")
	sb.WriteString(RenderRatioMatrix(c))
	sb.WriteString("\n")
	return sb.String()
}

// RenderPeers renders a peer comparison.
func RenderPeers(pc fundamental.PeerComparison) string {
	var sb strings.Builder
	sb.WriteString(sectionStyle.Render(fmt.Sprintf("Peer comparison %s %d", pc.Target.Ticker, pc.Target.Year)))
	sb.WriteString("\n")

	ranks := newTable("Rank", "Ticker", "Year", "Score", "Market Cap")
	entries := append([]fundamental.PeerEntry{pc.Target}, pc.Peers...)
	for _, e := range sortByRank(entries) {
		ranks.Row(strconv.Itoa(e.Rank), e.Ticker, strconv.Itoa(e.Year),
			fmt.Sprintf("%.1f", e.Score), humanize.Commaf(math.Round(e.MarketCap)))
	}
	ranks.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerCell
		case col == 1:
			return cell
		default:
			return numberCell
		}
	})
	sb.WriteString(ranks.String())
	sb.WriteString("\n")

	if len(pc.Metrics) > 0 {
		metrics := newTable("Metric", "Target", "Peer Avg", "Peer Median", "Percentile")
		for _, m := range pc.Metrics {
			metrics.Row(m.Metric, utils.FormatRatio(m.TargetValue), utils.FormatRatio(m.PeerAvg),
				utils.FormatRatio(m.PeerMedian), fmt.Sprintf("%.0f", m.Percentile))
		}
		metrics.StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCell
			case col == 0:
				return cell
			default:
				return numberCell
			}
		})
		sb.WriteString(metrics.String())
		sb.WriteString("\n")
	}

	sb.WriteString(pc.Summary)
	sb.WriteString("\n")
	return sb.String()
}

func sortByRank(entries []fundamental.PeerEntry) []fundamental.PeerEntry {
	out := make([]fundamental.PeerEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}
