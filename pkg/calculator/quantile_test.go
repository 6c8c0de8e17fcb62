package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfm-monthly/pkg/models"
)

func rowsWithFrequency(values ...float64) []models.RFMRow {
	rows := make([]models.RFMRow, len(values))
	for i, v := range values {
		rows[i] = models.RFMRow{Frequency: v}
	}
	return rows
}

func TestComputeBreakpoints_Interpolates(t *testing.T) {
	bp, err := ComputeBreakpoints(rowsWithFrequency(5, 3, 1, 4, 2), Frequency)
	require.NoError(t, err)
	assert.InDelta(t, 1.8, bp.P20, 1e-9)
	assert.InDelta(t, 2.6, bp.P40, 1e-9)
	assert.InDelta(t, 3.4, bp.P60, 1e-9)
	assert.InDelta(t, 4.2, bp.P80, 1e-9)
}

func TestComputeBreakpoints_SingleValue(t *testing.T) {
	bp, err := ComputeBreakpoints(rowsWithFrequency(7), Frequency)
	require.NoError(t, err)
	assert.Equal(t, models.QuantileBreakpoints{P20: 7, P40: 7, P60: 7, P80: 7}, bp)
}

func TestComputeBreakpoints_PerMetric(t *testing.T) {
	rows := []models.RFMRow{
		{Recency: 10, Frequency: 1, MonetaryValue: 100},
		{Recency: 20, Frequency: 2, MonetaryValue: 200},
	}
	bp, err := ComputePeriodBreakpoints(rows)
	require.NoError(t, err)
	assert.InDelta(t, 12, bp.Recency.P20, 1e-9)
	assert.InDelta(t, 1.2, bp.Frequency.P20, 1e-9)
	assert.InDelta(t, 180, bp.MonetaryValue.P80, 1e-9)
}

func TestComputeBreakpoints_EmptyCohort(t *testing.T) {
	_, err := ComputeBreakpoints(nil, Recency)
	assert.ErrorIs(t, err, ErrEmptyCohort)
}

func TestScoreRecency_Bands(t *testing.T) {
	bp := models.QuantileBreakpoints{P20: 10, P40: 20, P60: 30, P80: 40}
	cases := []struct {
		v    float64
		want int
	}{
		{0, 5}, {10, 5}, {10.5, 4}, {20, 4}, {30, 3}, {35, 2}, {40, 2}, {41, 1}, {1e9, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ScoreRecency(c.v, bp), "recency %v", c.v)
	}
}

func TestScoreFrequencyOrMonetary_Bands(t *testing.T) {
	bp := models.QuantileBreakpoints{P20: 10, P40: 20, P60: 30, P80: 40}
	cases := []struct {
		v    float64
		want int
	}{
		{-1, 1}, {10, 1}, {10.5, 2}, {20, 2}, {30, 3}, {35, 4}, {40, 4}, {41, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ScoreFrequencyOrMonetary(c.v, bp), "value %v", c.v)
	}
}

func TestScores_TiedBreakpoints(t *testing.T) {
	// Degenerate cohort where most breakpoints collapse onto one value.
	bp := models.QuantileBreakpoints{P20: 0, P40: 0, P60: 0, P80: 3}
	assert.Equal(t, 5, ScoreRecency(0, bp))
	assert.Equal(t, 1, ScoreFrequencyOrMonetary(0, bp))
	assert.Equal(t, 2, ScoreRecency(2, bp))
	assert.Equal(t, 4, ScoreFrequencyOrMonetary(2, bp))
}

func TestScores_RangeAndMonotonicity(t *testing.T) {
	bp := models.QuantileBreakpoints{P20: 1, P40: 2.5, P60: 2.5, P80: 9}
	prevR, prevF := 6, 0
	for v := -5.0; v <= 15; v += 0.25 {
		r := ScoreRecency(v, bp)
		f := ScoreFrequencyOrMonetary(v, bp)
		require.True(t, r >= 1 && r <= 5, "recency score %d out of range", r)
		require.True(t, f >= 1 && f <= 5, "frequency score %d out of range", f)
		require.LessOrEqual(t, r, prevR, "recency score increased at %v", v)
		require.GreaterOrEqual(t, f, prevF, "frequency score decreased at %v", v)
		prevR, prevF = r, f
	}
}
