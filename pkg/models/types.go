package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

/*
LOAD → types for the raw transaction ledger.
*/

// Transaction is one immutable purchase line from the ledger.
type Transaction struct {
	CustomerID string
	Date       time.Time
	Amount     float64
}

/*
COMPUTE → per-period intermediate types.
*/

// Period identifies a (year, month) analysis window.
type Period struct {
	Year  int
	Month int
}

// String renders the period as "MM/YYYY".
func (p Period) String() string {
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

// Before orders periods by (year, month).
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// RFMRow is one summarized customer: recency and frequency as defined by the
// summarizer, MonetaryValue >= 0. T is the customer age at the observation end.
type RFMRow struct {
	CustomerID    string
	Frequency     float64
	Recency       float64
	T             float64
	MonetaryValue float64
}

// QuantileBreakpoints holds the 20th/40th/60th/80th percentiles of one metric.
type QuantileBreakpoints struct {
	P20 float64
	P40 float64
	P60 float64
	P80 float64
}

// PeriodBreakpoints groups the breakpoints of the three metrics of a period.
type PeriodBreakpoints struct {
	Recency       QuantileBreakpoints
	Frequency     QuantileBreakpoints
	MonetaryValue QuantileBreakpoints
}

// Segment is a named customer cluster. Rank orders segments by recency×frequency.
type Segment struct {
	ID   string
	Name string
	Rank int
}

// SegmentAssignment is the scored and mapped state of one customer.
// Dead customers carry R=F=M=0 and the churned segment.
type SegmentAssignment struct {
	CustomerID    string
	RScore        int
	FScore        int
	MScore        int
	Segment       Segment
	MonetaryValue float64
}

/*
OUTPUT → one row per (period, segment).
*/

// PeriodSegmentSummary is the rollup of one segment for one period.
type PeriodSegmentSummary struct {
	Year               int
	Month              int
	SegmentID          string
	SegmentName        string
	SegmentRank        int
	TotalMonetaryValue decimal.Decimal
	CustomerCount      int
}

/*
CONFIG → run parameters.
*/

// Config holds the parameters passed to calculator.Run.
type Config struct {
	StartMonthInclusive string // "MMYYYY"
	EndMonthInclusive   string // "MMYYYY"
	InactivityDays      int    // alive iff days since last purchase < InactivityDays
	IncludeDeadMonetary bool   // add the dead cohort's monetary value to the churned total
	Workers             int    // periods computed concurrently
	Verbose             bool
}
