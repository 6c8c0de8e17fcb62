package calculator

import (
	"errors"
	"math"
	"sort"

	"rfm-monthly/pkg/models"
)

// ErrEmptyCohort is returned when breakpoints are requested for no values.
var ErrEmptyCohort = errors.New("empty cohort")

// Metric selects one RFM column.
type Metric int

const (
	Recency Metric = iota
	Frequency
	MonetaryValue
)

func (m Metric) value(r models.RFMRow) float64 {
	switch m {
	case Recency:
		return r.Recency
	case Frequency:
		return r.Frequency
	default:
		return r.MonetaryValue
	}
}

// ComputeBreakpoints returns the 20/40/60/80th empirical percentiles of one
// metric over rows, interpolating linearly between order statistics.
func ComputeBreakpoints(rows []models.RFMRow, m Metric) (models.QuantileBreakpoints, error) {
	if len(rows) == 0 {
		return models.QuantileBreakpoints{}, ErrEmptyCohort
	}
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = m.value(r)
	}
	sort.Float64s(values)
	return models.QuantileBreakpoints{
		P20: quantile(values, 0.20),
		P40: quantile(values, 0.40),
		P60: quantile(values, 0.60),
		P80: quantile(values, 0.80),
	}, nil
}

// ComputePeriodBreakpoints computes the breakpoints of all three metrics.
func ComputePeriodBreakpoints(rows []models.RFMRow) (models.PeriodBreakpoints, error) {
	var (
		bp  models.PeriodBreakpoints
		err error
	)
	if bp.Recency, err = ComputeBreakpoints(rows, Recency); err != nil {
		return bp, err
	}
	if bp.Frequency, err = ComputeBreakpoints(rows, Frequency); err != nil {
		return bp, err
	}
	if bp.MonetaryValue, err = ComputeBreakpoints(rows, MonetaryValue); err != nil {
		return bp, err
	}
	return bp, nil
}

// quantile expects sorted input.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// ScoreRecency scores on the inverted scale: lower recency scores higher.
func ScoreRecency(v float64, bp models.QuantileBreakpoints) int {
	switch {
	case v <= bp.P20:
		return 5
	case v <= bp.P40:
		return 4
	case v <= bp.P60:
		return 3
	case v <= bp.P80:
		return 2
	default:
		return 1
	}
}

// ScoreFrequencyOrMonetary scores on the standard scale.
func ScoreFrequencyOrMonetary(v float64, bp models.QuantileBreakpoints) int {
	switch {
	case v <= bp.P20:
		return 1
	case v <= bp.P40:
		return 2
	case v <= bp.P60:
		return 3
	case v <= bp.P80:
		return 4
	default:
		return 5
	}
}
