package calculator

import (
	"rfm-monthly/pkg/models"
)

// HistoryUpTo returns every transaction dated strictly before the end of
// (year, month). The window is cumulative from the start of the ledger.
// The input slice is not modified.
func HistoryUpTo(txs []models.Transaction, year, month int) ([]models.Transaction, error) {
	end, err := EndOfPeriod(year, month)
	if err != nil {
		return nil, err
	}
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.Before(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}
