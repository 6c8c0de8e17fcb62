package calculator

import (
	"errors"
	"fmt"
	"time"

	"rfm-monthly/pkg/models"
)

// ErrInvalidDate is returned when a (year, month) pair cannot be turned into a date.
var ErrInvalidDate = errors.New("invalid date")

const (
	minYear = 1
	maxYear = 9999
)

// EndOfPeriod returns the first day (UTC) of the month following (year, month).
// It is the exclusive upper bound of the period.
func EndOfPeriod(year, month int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if year < minYear || year > maxYear {
		return time.Time{}, fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0), nil
}

// parseMonth("MMYYYY") -> first day of the month, UTC
func parseMonth(mmyyyy string) (time.Time, error) {
	if len(mmyyyy) != 6 {
		return time.Time{}, fmt.Errorf("%w: expected MMYYYY (e.g. 012025), got %q", ErrInvalidDate, mmyyyy)
	}
	for _, c := range mmyyyy {
		if c < '0' || c > '9' {
			return time.Time{}, fmt.Errorf("%w: non-digit in %q", ErrInvalidDate, mmyyyy)
		}
	}
	month := int(mmyyyy[0]-'0')*10 + int(mmyyyy[1]-'0')
	year := int(mmyyyy[2]-'0')*1000 + int(mmyyyy[3]-'0')*100 + int(mmyyyy[4]-'0')*10 + int(mmyyyy[5]-'0')
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if year < minYear {
		return time.Time{}, fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

func monthsBetweenInclusive(start, end time.Time) []models.Period {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []models.Period
	for !cur.After(last) {
		out = append(out, models.Period{Year: cur.Year(), Month: int(cur.Month())})
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

func formatMonth(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}
