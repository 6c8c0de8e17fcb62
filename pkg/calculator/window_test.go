package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfm-monthly/pkg/models"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func tx(id string, date time.Time, amount float64) models.Transaction {
	return models.Transaction{CustomerID: id, Date: date, Amount: amount}
}

func TestHistoryUpTo_BoundaryIsExclusive(t *testing.T) {
	txs := []models.Transaction{
		tx("C1", day(2021, 6, 1), 10),
		tx("C2", day(2022, 2, 28), 20),
		tx("C3", time.Date(2022, 2, 28, 23, 59, 59, 0, time.UTC), 30),
		tx("C4", day(2022, 3, 1), 40),
		tx("C5", day(2022, 7, 1), 50),
	}

	got, err := HistoryUpTo(txs, 2022, 2)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, tx := range got {
		ids = append(ids, tx.CustomerID)
	}
	assert.Equal(t, []string{"C1", "C2", "C3"}, ids)
	assert.Len(t, txs, 5, "input must not be modified")
}

func TestHistoryUpTo_Empty(t *testing.T) {
	got, err := HistoryUpTo(nil, 2022, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryUpTo_InvalidMonth(t *testing.T) {
	_, err := HistoryUpTo(nil, 2022, 13)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
