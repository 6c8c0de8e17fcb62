package calculator

import (
	"errors"
	"fmt"
	"strings"

	"rfm-monthly/pkg/models"
)

// ErrUnmatchedSegmentPattern means the rule table does not cover an (R, F) pair.
var ErrUnmatchedSegmentPattern = errors.New("unmatched segment pattern")

// Segments, ordered by ascending recency×frequency.
var (
	Churned            = models.Segment{ID: "churned", Name: "Churned", Rank: 0}
	Hibernating        = models.Segment{ID: "hibernating", Name: "Hibernating", Rank: 1}
	AtRisk             = models.Segment{ID: "at_risk", Name: "At risk", Rank: 2}
	CantLose           = models.Segment{ID: "cant_lose", Name: "Can't lose", Rank: 3}
	AboutToSleep       = models.Segment{ID: "about_to_sleep", Name: "About to sleep", Rank: 4}
	NeedAttention      = models.Segment{ID: "need_attention", Name: "Need attention", Rank: 5}
	Loyal              = models.Segment{ID: "loyal", Name: "Loyal customers", Rank: 6}
	Promising          = models.Segment{ID: "promising", Name: "Promising", Rank: 7}
	NewCustomers       = models.Segment{ID: "new_customers", Name: "New customers", Rank: 8}
	PotentialLoyalists = models.Segment{ID: "potential_loyalists", Name: "Potential loyalists", Rank: 9}
	VIP                = models.Segment{ID: "vip", Name: "VIP", Rank: 10}
)

// AllSegments lists the eleven segments by rank.
var AllSegments = []models.Segment{
	Churned, Hibernating, AtRisk, CantLose, AboutToSleep, NeedAttention,
	Loyal, Promising, NewCustomers, PotentialLoyalists, VIP,
}

// SegmentRule matches an (R, F) digit pair. R and F list the accepted digits
// of each position, e.g. "12" accepts 1 or 2.
type SegmentRule struct {
	R       string
	F       string
	Segment models.Segment
}

func (r SegmentRule) matches(rScore, fScore int) bool {
	return acceptsDigit(r.R, rScore) && acceptsDigit(r.F, fScore)
}

func acceptsDigit(class string, score int) bool {
	if score < 0 || score > 9 {
		return false
	}
	return strings.ContainsRune(class, rune('0'+score))
}

// DefaultSegmentRules is evaluated top to bottom; the first match wins.
var DefaultSegmentRules = []SegmentRule{
	{R: "0", F: "0", Segment: Churned},
	{R: "12", F: "12", Segment: Hibernating},
	{R: "12", F: "34", Segment: AtRisk},
	{R: "12", F: "5", Segment: CantLose},
	{R: "3", F: "12", Segment: AboutToSleep},
	{R: "3", F: "3", Segment: NeedAttention},
	{R: "34", F: "45", Segment: Loyal},
	{R: "4", F: "1", Segment: Promising},
	{R: "5", F: "1", Segment: NewCustomers},
	{R: "45", F: "23", Segment: PotentialLoyalists},
	{R: "5", F: "45", Segment: VIP},
}

// MapSegment returns the segment of the first rule matching (rScore, fScore).
func MapSegment(rules []SegmentRule, rScore, fScore int) (models.Segment, error) {
	for _, rule := range rules {
		if rule.matches(rScore, fScore) {
			return rule.Segment, nil
		}
	}
	return models.Segment{}, fmt.Errorf("%w: %d%d", ErrUnmatchedSegmentPattern, rScore, fScore)
}

// ScoreAlive scores every alive row against the period breakpoints and maps
// it to a segment. M is computed but does not take part in the mapping.
func ScoreAlive(rows []models.RFMRow, bp models.PeriodBreakpoints, rules []SegmentRule) ([]models.SegmentAssignment, error) {
	out := make([]models.SegmentAssignment, 0, len(rows))
	for _, r := range rows {
		a := models.SegmentAssignment{
			CustomerID:    r.CustomerID,
			RScore:        ScoreRecency(r.Recency, bp.Recency),
			FScore:        ScoreFrequencyOrMonetary(r.Frequency, bp.Frequency),
			MScore:        ScoreFrequencyOrMonetary(r.MonetaryValue, bp.MonetaryValue),
			MonetaryValue: r.MonetaryValue,
		}
		seg, err := MapSegment(rules, a.RScore, a.FScore)
		if err != nil {
			return nil, fmt.Errorf("customer %s: %w", r.CustomerID, err)
		}
		a.Segment = seg
		out = append(out, a)
	}
	return out, nil
}

// AssignDead puts every dead customer in the churned segment with R=F=M=0.
// monetary may be nil, in which case the monetary value is 0.
func AssignDead(customers []string, monetary map[string]float64) []models.SegmentAssignment {
	out := make([]models.SegmentAssignment, 0, len(customers))
	for _, id := range customers {
		out = append(out, models.SegmentAssignment{
			CustomerID:    id,
			Segment:       Churned,
			MonetaryValue: monetary[id],
		})
	}
	return out
}
