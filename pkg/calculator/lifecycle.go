package calculator

import (
	"sort"
	"time"

	"rfm-monthly/pkg/models"
)

// Cohorts partitions a transaction window by customer lifecycle.
// Every customer of the window appears in exactly one of the two sets.
type Cohorts struct {
	Alive          []models.Transaction
	Dead           []models.Transaction
	AliveCustomers []string
	DeadCustomers  []string
}

// Classify splits the window into alive and dead customers. A customer is
// alive iff the whole days between its last transaction and the end of
// (year, month) are strictly fewer than inactivityDays.
func Classify(window []models.Transaction, year, month, inactivityDays int) (Cohorts, error) {
	end, err := EndOfPeriod(year, month)
	if err != nil {
		return Cohorts{}, err
	}

	last := lastTransactionDates(window)
	alive := make(map[string]bool, len(last))
	var c Cohorts
	for id, d := range last {
		if daysBetween(d, end) < inactivityDays {
			alive[id] = true
			c.AliveCustomers = append(c.AliveCustomers, id)
		} else {
			c.DeadCustomers = append(c.DeadCustomers, id)
		}
	}
	sort.Strings(c.AliveCustomers)
	sort.Strings(c.DeadCustomers)

	for _, tx := range window {
		if alive[tx.CustomerID] {
			c.Alive = append(c.Alive, tx)
		} else {
			c.Dead = append(c.Dead, tx)
		}
	}
	return c, nil
}

func lastTransactionDates(txs []models.Transaction) map[string]time.Time {
	last := make(map[string]time.Time)
	for _, tx := range txs {
		if d, ok := last[tx.CustomerID]; !ok || tx.Date.After(d) {
			last[tx.CustomerID] = tx.Date
		}
	}
	return last
}

// daysBetween counts whole days from a to b, flooring partial days.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
