/*
Package report builds time-bucketed revenue matrices for dashboard views.

PURPOSE:
  Buckets dated activity amounts into monthly/quarterly/yearly periods and
  rolls them up by project and by contract. Contract figures are the sum of
  their child project figures - computed bottom-up, never independently, so a
  contract row always equals the sum of its visible children.
*/
package report

import (
	"fmt"

	"github.com/warp/revenue-engine/engine"
)

// =============================================================================
// BUCKETS - Labeled periods generated for a date range
// =============================================================================

type Granularity string

const (
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

// Bucket is one labeled reporting period.
type Bucket struct {
	Label  string
	Period engine.Period
}

// Buckets generates the labeled periods covering [from, to] at the given
// granularity. Unknown granularities default to monthly.
func Buckets(from, to engine.TimePoint, g Granularity) []Bucket {
	switch g {
	case Quarterly:
		return QuarterlyBuckets(from, to)
	case Yearly:
		return YearlyBuckets(from, to)
	default:
		return MonthlyBuckets(from, to)
	}
}

// MonthlyBuckets returns one bucket per calendar month, labeled "2006-01".
func MonthlyBuckets(from, to engine.TimePoint) []Bucket {
	var buckets []Bucket
	for cur := from.MonthStart(); cur.BeforeOrEqual(to); cur = cur.AddMonths(1) {
		buckets = append(buckets, Bucket{
			Label:  cur.Time.Format("2006-01"),
			Period: engine.MonthPeriod(cur),
		})
	}
	return buckets
}

// QuarterlyBuckets returns one bucket per calendar quarter, labeled "2006-Q1".
func QuarterlyBuckets(from, to engine.TimePoint) []Bucket {
	var buckets []Bucket
	cur := engine.QuarterPeriod(from).Start
	for cur.BeforeOrEqual(to) {
		p := engine.QuarterPeriod(cur)
		q := (int(cur.Month())-1)/3 + 1
		buckets = append(buckets, Bucket{
			Label:  fmt.Sprintf("%d-Q%d", cur.Year(), q),
			Period: p,
		})
		cur = p.End.AddDays(1)
	}
	return buckets
}

// YearlyBuckets returns one bucket per calendar year, labeled "2006".
func YearlyBuckets(from, to engine.TimePoint) []Bucket {
	var buckets []Bucket
	for year := from.Year(); year <= to.Year(); year++ {
		buckets = append(buckets, Bucket{
			Label:  fmt.Sprintf("%d", year),
			Period: engine.Period{Start: engine.StartOfYear(year), End: engine.EndOfYear(year)},
		})
	}
	return buckets
}
