package statement

import (
	"time"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

type accountLine struct {
	classification string
	account        string
	amount         float64
}

func buildRows(ticker string, date time.Time, period FiscalPeriod, lines []accountLine) []models.StatementRow {
	out := make([]models.StatementRow, 0, len(lines))
	for _, l := range lines {
		out = append(out, models.StatementRow{
			Company:               ticker,
			StatementDate:         utils.DateKey(date),
			Quarter:               period.Quarter,
			Year:                  period.Year,
			AccountClassification: l.classification,
			Account:               l.account,
			Amount:                l.amount,
		})
	}
	return out
}
