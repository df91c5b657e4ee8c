package engine

import "time"

// =============================================================================
// PERIOD - Time boundary for bucketed revenue aggregation
// =============================================================================

// Period is an inclusive date range [Start, End]. Activity dated exactly on
// either boundary belongs to the period.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Valid reports whether the period is well-formed (start not after end).
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.BeforeOrEqual(p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the calendar month containing tp as a period.
func MonthPeriod(tp TimePoint) Period {
	return Period{
		Start: StartOfMonth(tp.Year(), tp.Month()),
		End:   EndOfMonth(tp.Year(), tp.Month()),
	}
}

// QuarterPeriod returns the calendar quarter containing tp as a period.
func QuarterPeriod(tp TimePoint) Period {
	q := (int(tp.Month()) - 1) / 3
	start := time.Month(q*3 + 1)
	return Period{
		Start: StartOfMonth(tp.Year(), start),
		End:   EndOfMonth(tp.Year(), start+2),
	}
}

// YearPeriod returns the calendar year containing tp as a period.
func YearPeriod(tp TimePoint) Period {
	return Period{Start: StartOfYear(tp.Year()), End: EndOfYear(tp.Year())}
}
