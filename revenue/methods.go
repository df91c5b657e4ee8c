package revenue

import (
	"github.com/shopspring/decimal"
	"github.com/warp/revenue-engine/engine"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// Average Gregorian month length. Every historical linear figure depends
	// on this value; do not replace with calendar-month counting.
	avgDaysPerMonth = decimal.NewFromFloat(30.44)
)

// =============================================================================
// LINEAR - Time-proportional recognition
// =============================================================================

// Linear recognizes a fixed amount per elapsed month between the project
// start and min(asOf, end), using the 30.44-day average month.
type Linear struct {
	MonthlyAmount engine.Amount
}

func (m Linear) Kind() Kind { return KindLinear }

func (m Linear) Recognize(in Input) engine.Amount {
	if in.Start.IsZero() || in.AsOf.Before(in.Start) {
		return engine.ZeroAmount()
	}

	cutoff := in.AsOf
	if !in.End.IsZero() {
		cutoff = cutoff.Min(in.End)
	}

	days := engine.DaysBetween(in.Start, cutoff)
	if days < 0 {
		days = 0
	}

	months := decimal.NewFromInt(int64(days)).Div(avgDaysPerMonth)
	return m.MonthlyAmount.Mul(months).Clamp(engine.ZeroAmount(), in.Budget)
}

// =============================================================================
// COST-TO-COST - "Input" recognition, progress from incurred cost
// =============================================================================

// CostToCost recognizes budget in proportion to cost progress:
// progress = min(incurred / estimated, 1). Without a positive cost estimate
// the method is not computable and recognizes zero.
type CostToCost struct {
	EstimatedCosts engine.Amount
}

func (m CostToCost) Kind() Kind { return KindInput }

func (m CostToCost) Recognize(in Input) engine.Amount {
	if !m.EstimatedCosts.IsPositive() {
		return engine.ZeroAmount()
	}

	progress := in.IncurredCost.Value.Div(m.EstimatedCosts.Value)
	if progress.GreaterThan(one) {
		progress = one
	}
	if progress.IsNegative() {
		progress = decimal.Zero
	}
	return in.Budget.Mul(progress)
}

// =============================================================================
// MILESTONE OUTPUT - Completed milestones earn budget shares
// =============================================================================

// MilestoneOutput recognizes the budget share of completed milestones. There
// is no partial credit; an incomplete milestone contributes nothing.
type MilestoneOutput struct {
	Milestones []engine.Milestone
}

func (m MilestoneOutput) Kind() Kind { return KindOutput }

func (m MilestoneOutput) Recognize(in Input) engine.Amount {
	pct := decimal.Zero
	for _, ms := range m.Milestones {
		if ms.Completed {
			pct = pct.Add(ms.Percentage)
		}
	}
	// Percentages summing past 100 are the provider's data problem, but
	// recognized revenue still never exceeds the budget.
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	return in.Budget.Mul(pct).Div(hundred)
}

// =============================================================================
// COST PLUS - Pass-through for T&M and internal projects
// =============================================================================

// CostPlus recognizes incurred cost directly. For internal projects this is a
// shadow figure only; it is never billed.
type CostPlus struct{}

func (m CostPlus) Kind() Kind { return KindCostPlus }

func (m CostPlus) Recognize(in Input) engine.Amount {
	return in.IncurredCost
}

// =============================================================================
// MANUAL - Explicit fallback variant
// =============================================================================

// Manual returns the last manually recorded recognized amount. This is the
// explicit form of "no method applies": overrides entered outside the engine
// are preserved rather than recomputed away.
type Manual struct {
	Amount engine.Amount
}

func (m Manual) Kind() Kind { return KindManual }

func (m Manual) Recognize(Input) engine.Amount {
	return m.Amount
}
