/*
Package engine provides the core types for the revenue analytics engine.

PURPOSE:
  This package contains the entity snapshots and value types shared by the
  calculation packages (revenue, evm, billing, report, risk). The engine is a
  pure read -> compute -> return pipeline: entities are supplied by a snapshot
  provider, never mutated, and every derived figure is returned to the caller.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A currency quantity backed by decimal.Decimal
  - Contract/Project/Milestone/WorkLog/Invoice: read-only entity snapshots
  - Typed identifiers: prevent mixing project and contract IDs

DESIGN PRINCIPLES:
  1. Purity: No I/O, no mutation, no hidden state in any calculation
  2. Precision: decimal.Decimal for currency, no rounding inside the engine
  3. Degradation: incomplete records resolve to defined numeric fallbacks,
     never to panics - a dashboard must render with partial data

USAGE:
  budget := engine.NewAmount(120000)
  p := engine.Project{ID: "prj-1", Type: engine.FixedPrice, Budget: budget}

SEE ALSO:
  - snapshot.go: SnapshotProvider interface and Portfolio bundle
  - time.go: TimePoint day-granularity date type
  - period.go: Period boundaries for bucketed aggregation
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Currency quantity (single consistent currency, no conversion)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromInt(value int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value))}
}

func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{Value: d}
}

func MustParseAmount(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Value: decimal.Zero}
	}
	return Amount{Value: d}
}

func ZeroAmount() Amount { return Amount{Value: decimal.Zero} }

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s)} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s)} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) Min(b Amount) Amount          { if a.LessThan(b) { return a }; return b }
func (a Amount) Max(b Amount) Amount          { if a.GreaterThan(b) { return a }; return b }
func (a Amount) Float64() float64             { f, _ := a.Value.Float64(); return f }
func (a Amount) String() string               { return a.Value.String() }

// Clamp bounds the amount to [lo, hi].
func (a Amount) Clamp(lo, hi Amount) Amount {
	return a.Max(lo).Min(hi)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ContractID string
type ProjectID string
type MilestoneID string
type WorkLogID string
type InvoiceID string

// =============================================================================
// CONTRACT - Master agreement aggregating one or more projects
// =============================================================================

type ContractStatus string

const (
	ContractActive ContractStatus = "active"
	ContractClosed ContractStatus = "closed"
)

type Contract struct {
	ID        ContractID
	Name      string
	TCV       Amount // total contract value, >= 0
	StartDate TimePoint
	EndDate   TimePoint
	Status    ContractStatus
}

// =============================================================================
// PROJECT - Unit of delivery and the subject of all derived figures
// =============================================================================

type ProjectType string

const (
	TimeAndMaterials ProjectType = "time_and_materials"
	FixedPrice       ProjectType = "fixed_price"
	Internal         ProjectType = "internal"
)

type ProjectStatus string

const (
	StatusPlanned    ProjectStatus = "planned"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
)

// RecognitionModel names the configured recognition method for fixed-price
// projects. Empty means none configured; the revenue package then falls back
// to the manually recorded amount.
type RecognitionModel string

const (
	ModelLinear RecognitionModel = "linear"
	ModelInput  RecognitionModel = "input"
	ModelOutput RecognitionModel = "output"
	ModelNone   RecognitionModel = ""
)

type Project struct {
	ID         ProjectID
	ContractID ContractID // empty = unassigned to any contract
	Name       string
	Type       ProjectType
	Status     ProjectStatus

	// Recognition configuration. Which fields are meaningful depends on the
	// model; the revenue package turns this into a tagged method variant.
	RevenueMethod       RecognitionModel
	Budget              Amount // BAC, >= 0
	TotalEstimatedCosts Amount // input (cost-to-cost) model; zero = unset
	LinearMonthlyAmount Amount // linear model; zero = unset
	Milestones          []Milestone

	// Billing state, maintained by the write boundary. Reflects only Sent and
	// Paid invoices; monotonically non-decreasing.
	BilledAmount Amount

	// Last manually recorded recognized revenue. Used when no recognition
	// method applies so externally entered overrides survive recomputation.
	RecognizedManual Amount

	StartDate TimePoint // zero = unset
	EndDate   TimePoint // zero = unset

	// Planned-value curve: monthly budget allocations. Optional.
	MonthlyBudget []BudgetEntry

	// Management reserve as a percent of budget (0-100). nil = not set.
	ContingencyReserve *decimal.Decimal
}

// Milestone earns a share of the budget when completed. Partial credit is not
// supported; only Completed milestones contribute.
type Milestone struct {
	ID         MilestoneID
	Name       string
	Percentage decimal.Decimal // 0-100, share of budget
	Completed  bool
	TargetDate TimePoint // zero = unset
}

// BudgetEntry is one month of the planned-value curve. Month is normalized to
// the first day of the month.
type BudgetEntry struct {
	PhaseID string
	Month   TimePoint
	Amount  Amount
}

// =============================================================================
// WORK LOG - Dated billable activity attributed to a project
// =============================================================================

// WorkLog records revenue-equivalent value and internal cost for one dated
// entry. Amount may be zero for output-model projects, where revenue comes
// from milestones rather than activity.
type WorkLog struct {
	ID         WorkLogID
	ProjectID  ProjectID
	Date       TimePoint // zero = unparseable source date; excluded everywhere
	Amount     Amount
	Hours      decimal.Decimal
	CostAmount Amount
}

// =============================================================================
// INVOICE
// =============================================================================

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

// Invoice carries the pre-tax amount. Only Sent and Paid invoices count
// toward billed totals; Draft invoices are invisible to the engine.
type Invoice struct {
	ID         InvoiceID
	ProjectID  ProjectID
	Date       TimePoint
	BaseAmount Amount
	Status     InvoiceStatus
}

// Billable reports whether the invoice counts toward the billed total.
func (i Invoice) Billable() bool {
	return i.Status == InvoiceSent || i.Status == InvoicePaid
}
