/*
Package revenue implements revenue recognition for project snapshots.

PURPOSE:
  Converts a project's recognition configuration into a recognized-revenue
  figure at a point in time. Recognition behavior is a tagged variant: each
  method carries exactly the configuration it needs, so a linear project
  without a monthly amount cannot exist past the dispatch boundary.

METHODS:
  Linear:          revenue accrues with elapsed time (amount per month)
  CostToCost:      "input" method, progress = incurred / estimated costs
  MilestoneOutput: "output" method, completed milestones earn budget shares
  CostPlus:        time & materials / internal, revenue = incurred cost
  Manual:          explicit fallback returning the last recorded amount

FALLBACK SEMANTICS:
  The dispatch never fails. A fixed-price project with no method configured
  resolves to Manual, which preserves externally entered figures instead of
  recomputing them. Methods with impossible configuration (estimated costs
  missing or <= 0, monthly amount unset) recognize zero. A dashboard renders
  a zero, not an error page.

PURITY:
  Recognize is a pure function of its input; no I/O, no mutation, safe to
  call from any number of goroutines.
*/
package revenue

import (
	"github.com/warp/revenue-engine/engine"
)

// =============================================================================
// METHOD - Tagged recognition variant
// =============================================================================

// Method computes recognized revenue from a recognition input. Implementations
// are value types carrying their own configuration.
type Method interface {
	// Recognize returns the revenue recognized as of in.AsOf.
	Recognize(in Input) engine.Amount

	// Kind identifies the variant for display and serialization.
	Kind() Kind
}

type Kind string

const (
	KindLinear   Kind = "linear"
	KindInput    Kind = "input"
	KindOutput   Kind = "output"
	KindCostPlus Kind = "cost_plus"
	KindManual   Kind = "manual"
)

// Input bundles the project figures every method may draw on. One Input, one
// moment: IncurredCost must be the actual cost as of AsOf.
type Input struct {
	Budget       engine.Amount // BAC
	Start        engine.TimePoint
	End          engine.TimePoint
	IncurredCost engine.Amount
	AsOf         engine.TimePoint
}

// =============================================================================
// DISPATCH
// =============================================================================

// MethodFor resolves a project snapshot to its recognition method. Fixed-price
// projects dispatch on the configured model; time & materials and internal
// projects are cost pass-through. Anything unresolvable becomes Manual so the
// last recorded figure survives recomputation.
func MethodFor(p engine.Project) Method {
	switch p.Type {
	case engine.TimeAndMaterials, engine.Internal:
		return CostPlus{}
	case engine.FixedPrice:
		switch p.RevenueMethod {
		case engine.ModelLinear:
			return Linear{MonthlyAmount: p.LinearMonthlyAmount}
		case engine.ModelInput:
			return CostToCost{EstimatedCosts: p.TotalEstimatedCosts}
		case engine.ModelOutput:
			return MilestoneOutput{Milestones: p.Milestones}
		}
	}
	return Manual{Amount: p.RecognizedManual}
}

// Recognized computes recognized revenue for a project with the given actual
// cost, evaluated at asOf. Convenience over MethodFor + Recognize.
func Recognized(p engine.Project, incurredCost engine.Amount, asOf engine.TimePoint) engine.Amount {
	return MethodFor(p).Recognize(Input{
		Budget:       p.Budget,
		Start:        p.StartDate,
		End:          p.EndDate,
		IncurredCost: incurredCost,
		AsOf:         asOf,
	})
}
