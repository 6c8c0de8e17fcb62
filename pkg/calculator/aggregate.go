package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"rfm-monthly/pkg/models"
)

// Aggregate rolls the assignments of one period up per segment: total
// monetary value and distinct customer count. Segments without customers
// are omitted. Rows are ordered by segment rank.
func Aggregate(assignments []models.SegmentAssignment, year, month int) []models.PeriodSegmentSummary {
	type group struct {
		seg       models.Segment
		total     decimal.Decimal
		customers map[string]struct{}
	}
	groups := map[string]*group{}
	for _, a := range assignments {
		g, ok := groups[a.Segment.ID]
		if !ok {
			g = &group{seg: a.Segment, total: decimal.Zero, customers: map[string]struct{}{}}
			groups[a.Segment.ID] = g
		}
		g.total = g.total.Add(decimal.NewFromFloat(a.MonetaryValue))
		g.customers[a.CustomerID] = struct{}{}
	}

	out := make([]models.PeriodSegmentSummary, 0, len(groups))
	for _, g := range groups {
		if len(g.customers) == 0 {
			continue
		}
		out = append(out, models.PeriodSegmentSummary{
			Year:               year,
			Month:              month,
			SegmentID:          g.seg.ID,
			SegmentName:        g.seg.Name,
			SegmentRank:        g.seg.Rank,
			TotalMonetaryValue: g.total,
			CustomerCount:      len(g.customers),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SegmentRank != out[j].SegmentRank {
			return out[i].SegmentRank < out[j].SegmentRank
		}
		return out[i].SegmentID < out[j].SegmentID
	})
	return out
}

// Concat joins per-period summaries into one report ordered by (year, month).
func Concat(periods ...[]models.PeriodSegmentSummary) []models.PeriodSegmentSummary {
	n := 0
	for _, p := range periods {
		n += len(p)
	}
	out := make([]models.PeriodSegmentSummary, 0, n)
	for _, p := range periods {
		out = append(out, p...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return models.Period{Year: out[i].Year, Month: out[i].Month}.
			Before(models.Period{Year: out[j].Year, Month: out[j].Month})
	})
	return out
}
