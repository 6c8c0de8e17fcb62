// Package summarizer reduces a transaction set to one RFM row per customer.
package summarizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"rfm-monthly/pkg/models"
)

// ErrContractViolation is returned when summarized rows do not match the input.
var ErrContractViolation = errors.New("summarizer contract violation")

// Summarizer turns transactions into per-customer recency/frequency/monetary rows.
type Summarizer interface {
	Summarize(txs []models.Transaction) ([]models.RFMRow, error)
}

// Daily collapses each customer's transactions to calendar days, summing the
// amounts of a day, then reports:
//   - Frequency: purchase days minus one (repeat purchases)
//   - Recency: days between the first and the last purchase day
//   - T: days between the first purchase day and the observation end
//   - MonetaryValue: mean daily amount over repeat days, 0 without repeats
//
// The observation end is ObservationEnd when set, the latest input date otherwise.
type Daily struct {
	ObservationEnd time.Time
}

type customerDays struct {
	days map[time.Time]float64
}

// Summarize implements Summarizer. Rows are sorted by customer id.
func (d Daily) Summarize(txs []models.Transaction) ([]models.RFMRow, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	obs := truncateDay(d.ObservationEnd)
	byCustomer := map[string]*customerDays{}
	for _, tx := range txs {
		if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
			return nil, fmt.Errorf("%w: customer %s: non-numeric amount", ErrContractViolation, tx.CustomerID)
		}
		day := truncateDay(tx.Date)
		if d.ObservationEnd.IsZero() && day.After(obs) {
			obs = day
		}
		c, ok := byCustomer[tx.CustomerID]
		if !ok {
			c = &customerDays{days: map[time.Time]float64{}}
			byCustomer[tx.CustomerID] = c
		}
		c.days[day] += tx.Amount
	}

	rows := make([]models.RFMRow, 0, len(byCustomer))
	for id, c := range byCustomer {
		days := make([]time.Time, 0, len(c.days))
		for day := range c.days {
			days = append(days, day)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

		first, last := days[0], days[len(days)-1]
		row := models.RFMRow{
			CustomerID: id,
			Frequency:  float64(len(days) - 1),
			Recency:    dayCount(first, last),
			T:          dayCount(first, obs),
		}
		if len(days) > 1 {
			sum := 0.0
			for _, day := range days[1:] {
				sum += c.days[day]
			}
			row.MonetaryValue = sum / float64(len(days)-1)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CustomerID < rows[j].CustomerID })
	return rows, nil
}

// Validate checks that rows cover exactly the customers present in txs, once
// each, with finite values and a non-negative monetary value.
func Validate(rows []models.RFMRow, txs []models.Transaction) error {
	known := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		known[tx.CustomerID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.CustomerID == "" {
			return fmt.Errorf("%w: row without customer id", ErrContractViolation)
		}
		if _, ok := known[r.CustomerID]; !ok {
			return fmt.Errorf("%w: customer %s not in input", ErrContractViolation, r.CustomerID)
		}
		if _, dup := seen[r.CustomerID]; dup {
			return fmt.Errorf("%w: customer %s summarized twice", ErrContractViolation, r.CustomerID)
		}
		seen[r.CustomerID] = struct{}{}
		for name, v := range map[string]float64{"recency": r.Recency, "frequency": r.Frequency, "monetary_value": r.MonetaryValue} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: customer %s: %s is not a number", ErrContractViolation, r.CustomerID, name)
			}
		}
		if r.MonetaryValue < 0 {
			return fmt.Errorf("%w: customer %s: negative monetary_value %v", ErrContractViolation, r.CustomerID, r.MonetaryValue)
		}
	}
	if len(seen) != len(known) {
		return fmt.Errorf("%w: %d of %d customers summarized", ErrContractViolation, len(seen), len(known))
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayCount(a, b time.Time) float64 {
	return math.Round(b.Sub(a).Hours() / 24)
}
