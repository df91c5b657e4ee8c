/*
Package evm computes Earned Value Management figures for project snapshots.

PURPOSE:
  Given budget at completion (BAC), earned value (EV), actual cost (AC) and a
  reference date, this package derives planned value (PV) and the performance
  indices CPI, SPI, TCPI plus the completion projections EAC and VAC.

ONE SNAPSHOT, FIVE NUMBERS:
  The indices are only meaningful when EV, AC and PV come from the same
  moment. Compute takes them together in one Inputs value and returns all
  derived figures in one Metrics value; callers must not mix figures from
  different snapshots.

DEGENERACY POLICY:
  Division by zero never raises: CPI and SPI fall back to the neutral 1 when
  their denominator is zero, and TCPI uses explicit sentinels when the budget
  is exhausted. See indices.go.
*/
package evm

import (
	"github.com/shopspring/decimal"
	"github.com/warp/revenue-engine/engine"
)

// =============================================================================
// PLANNED VALUE
// =============================================================================

// PlannedValue returns the budgeted value of work scheduled by asOf.
//
// With a monthly budget curve: all allocations for months strictly before the
// reference month count in full, the reference month's allocation is prorated
// by day-of-month over days-in-month, and the result is capped at the budget.
//
// Without a curve: straight-line interpolation between the project dates.
// Before the start nothing is planned; after the end the full budget is.
func PlannedValue(p engine.Project, asOf engine.TimePoint) engine.Amount {
	if len(p.MonthlyBudget) > 0 {
		return curvePV(p, asOf)
	}
	return straightLinePV(p, asOf)
}

func curvePV(p engine.Project, asOf engine.TimePoint) engine.Amount {
	refMonth := asOf.MonthStart()
	frac := decimal.NewFromInt(int64(asOf.Day())).
		Div(decimal.NewFromInt(int64(engine.DaysInMonth(asOf))))

	pv := engine.ZeroAmount()
	for _, e := range p.MonthlyBudget {
		m := e.Month.MonthStart()
		switch {
		case m.Before(refMonth):
			pv = pv.Add(e.Amount)
		case m.Equal(refMonth):
			pv = pv.Add(e.Amount.Mul(frac))
		}
	}
	return pv.Min(p.Budget)
}

func straightLinePV(p engine.Project, asOf engine.TimePoint) engine.Amount {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		// No curve and no schedule: nothing is planned yet. SPI then reads
		// neutral rather than flagging a schedule that was never set.
		return engine.ZeroAmount()
	}
	if asOf.Before(p.StartDate) {
		return engine.ZeroAmount()
	}
	if asOf.AfterOrEqual(p.EndDate) {
		return p.Budget
	}

	total := engine.DaysBetween(p.StartDate, p.EndDate)
	if total <= 0 {
		return p.Budget
	}
	elapsed := engine.DaysBetween(p.StartDate, asOf)
	ratio := decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(total)))
	return p.Budget.Mul(ratio)
}
