/*
Package factory converts loose JSON records into engine entities.

PURPOSE:
  External systems supply records with optional, informally typed fields
  (a revenue method name here, a matching config field there). This package
  is the write boundary where that looseness is resolved: fields are parsed,
  defaults applied, and consistency problems reported - so the pure engine
  never has to validate anything.

VALIDATION POLICY:
  Problems that would change derived figures are WARNINGS, not errors:
  milestone percentages summing past 100, a budget curve exceeding the
  budget, a named method missing its configuration, an unparseable date.
  The record is still ingested (degraded where needed) because the dashboard
  must render with partial data. Only undecodable JSON is an error.

WARNING vs DROP:
  - Project/contract dates that fail to parse become unset (zero) + warning.
  - Work logs with unparseable dates are DROPPED + warning; a zero-date log
    would otherwise leak epoch-dated activity into reports.

EXAMPLE:
  f := factory.New()
  pf, warns, err := f.ParsePortfolio(raw)
  for _, w := range warns {
      logger.Warn("record issue", zap.String("record", w.Record), zap.String("msg", w.Message))
  }
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type PortfolioJSON struct {
	Contracts []ContractJSON `json:"contracts"`
	Projects  []ProjectJSON  `json:"projects"`
	WorkLogs  []WorkLogJSON  `json:"work_logs"`
	Invoices  []InvoiceJSON  `json:"invoices"`
}

type ContractJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	TCV       float64 `json:"tcv"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Status    string  `json:"status"`
}

type ProjectJSON struct {
	ID                  string            `json:"id"`
	ContractID          string            `json:"contract_id"`
	Name                string            `json:"name"`
	Type                string            `json:"type"`
	Status              string            `json:"status"`
	RevenueMethod       string            `json:"revenue_method"`
	Budget              float64           `json:"budget"`
	BilledAmount        float64           `json:"billed_amount"`
	RecognizedManual    float64           `json:"recognized_manual"`
	TotalEstimatedCosts *float64          `json:"total_estimated_costs"`
	LinearMonthlyAmount *float64          `json:"linear_monthly_amount"`
	ContingencyReserve  *float64          `json:"contingency_reserve"`
	Milestones          []MilestoneJSON   `json:"milestones"`
	StartDate           string            `json:"start_date"`
	EndDate             string            `json:"end_date"`
	MonthlyBudget       []BudgetEntryJSON `json:"monthly_budget"`
}

type MilestoneJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Completed  bool    `json:"completed"`
	TargetDate string  `json:"target_date"`
}

type BudgetEntryJSON struct {
	PhaseID string  `json:"phase_id"`
	Month   string  `json:"month"` // "2006-01"
	Amount  float64 `json:"amount"`
}

type WorkLogJSON struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"project_id"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Hours      float64 `json:"hours"`
	CostAmount float64 `json:"cost_amount"`
}

type InvoiceJSON struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"project_id"`
	Date       string  `json:"date"`
	BaseAmount float64 `json:"base_amount"`
	Status     string  `json:"status"`
}

// Warning reports a recoverable record problem found during ingestion.
type Warning struct {
	Record  string // e.g. "project prj-1"
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Record, w.Field, w.Message)
}

// =============================================================================
// FACTORY
// =============================================================================

type Factory struct{}

func New() *Factory { return &Factory{} }

// ParsePortfolio decodes a full record set. Recoverable problems come back
// as warnings; only undecodable JSON is an error.
func (f *Factory) ParsePortfolio(data []byte) (*engine.Portfolio, []Warning, error) {
	var raw PortfolioJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", engine.ErrInvalidRecord, err)
	}

	pf := &engine.Portfolio{}
	var warns []Warning

	for _, cj := range raw.Contracts {
		c, w := f.Contract(cj)
		pf.Contracts = append(pf.Contracts, c)
		warns = append(warns, w...)
	}
	for _, pj := range raw.Projects {
		p, w := f.Project(pj)
		pf.Projects = append(pf.Projects, p)
		warns = append(warns, w...)
	}
	for _, lj := range raw.WorkLogs {
		l, w, ok := f.WorkLog(lj)
		warns = append(warns, w...)
		if ok {
			pf.WorkLogs = append(pf.WorkLogs, l)
		}
	}
	for _, ij := range raw.Invoices {
		inv, w := f.Invoice(ij)
		pf.Invoices = append(pf.Invoices, inv)
		warns = append(warns, w...)
	}
	return pf, warns, nil
}

// Contract converts one contract record.
func (f *Factory) Contract(j ContractJSON) (engine.Contract, []Warning) {
	id := j.ID
	if id == "" {
		id = uuid.NewString()
	}
	record := "contract " + id
	var warns []Warning

	c := engine.Contract{
		ID:     engine.ContractID(id),
		Name:   j.Name,
		TCV:    engine.NewAmount(j.TCV),
		Status: engine.ContractActive,
	}
	if j.TCV < 0 {
		warns = append(warns, Warning{record, "tcv", "negative total contract value, kept as-is"})
	}
	switch j.Status {
	case "", "active":
	case "closed":
		c.Status = engine.ContractClosed
	default:
		warns = append(warns, Warning{record, "status", "unknown status " + j.Status + ", defaulting to active"})
	}
	c.StartDate, warns = parseDate(j.StartDate, record, "start_date", warns)
	c.EndDate, warns = parseDate(j.EndDate, record, "end_date", warns)
	return c, warns
}

// Project converts one project record, resolving the informal method fields
// and flagging configuration gaps that will degrade recognition to zero or
// to the manual fallback.
func (f *Factory) Project(j ProjectJSON) (engine.Project, []Warning) {
	id := j.ID
	if id == "" {
		id = uuid.NewString()
	}
	record := "project " + id
	var warns []Warning

	p := engine.Project{
		ID:               engine.ProjectID(id),
		ContractID:       engine.ContractID(j.ContractID),
		Name:             j.Name,
		Budget:           engine.NewAmount(j.Budget),
		BilledAmount:     engine.NewAmount(j.BilledAmount),
		RecognizedManual: engine.NewAmount(j.RecognizedManual),
	}

	p.Type, warns = parseProjectType(j.Type, record, warns)
	p.Status, warns = parseProjectStatus(j.Status, record, warns)
	p.StartDate, warns = parseDate(j.StartDate, record, "start_date", warns)
	p.EndDate, warns = parseDate(j.EndDate, record, "end_date", warns)

	if j.TotalEstimatedCosts != nil {
		p.TotalEstimatedCosts = engine.NewAmount(*j.TotalEstimatedCosts)
	}
	if j.LinearMonthlyAmount != nil {
		p.LinearMonthlyAmount = engine.NewAmount(*j.LinearMonthlyAmount)
	}
	if j.ContingencyReserve != nil {
		r := decimal.NewFromFloat(*j.ContingencyReserve)
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(100)) {
			warns = append(warns, Warning{record, "contingency_reserve", "reserve percent outside 0-100, ignored"})
		} else {
			p.ContingencyReserve = &r
		}
	}

	pctSum := decimal.Zero
	for _, mj := range j.Milestones {
		mid := mj.ID
		if mid == "" {
			mid = uuid.NewString()
		}
		ms := engine.Milestone{
			ID:         engine.MilestoneID(mid),
			Name:       mj.Name,
			Percentage: decimal.NewFromFloat(mj.Percentage),
			Completed:  mj.Completed,
		}
		ms.TargetDate, warns = parseDate(mj.TargetDate, record, "milestone "+mid+" target_date", warns)
		pctSum = pctSum.Add(ms.Percentage)
		p.Milestones = append(p.Milestones, ms)
	}
	if pctSum.GreaterThan(decimal.NewFromInt(100)) {
		warns = append(warns, Warning{record, "milestones", "milestone percentages sum to " + pctSum.String() + " (over 100); recognition is clamped at the budget"})
	}

	curveTotal := engine.ZeroAmount()
	for _, bj := range j.MonthlyBudget {
		month, err := parseMonth(bj.Month)
		if err != nil {
			warns = append(warns, Warning{record, "monthly_budget", "unparseable month " + bj.Month + ", entry dropped"})
			continue
		}
		entry := engine.BudgetEntry{PhaseID: bj.PhaseID, Month: month, Amount: engine.NewAmount(bj.Amount)}
		curveTotal = curveTotal.Add(entry.Amount)
		p.MonthlyBudget = append(p.MonthlyBudget, entry)
	}
	if curveTotal.GreaterThan(p.Budget) {
		warns = append(warns, Warning{record, "monthly_budget", "curve total " + curveTotal.String() + " exceeds budget; planned value is capped at the budget"})
	}

	warns = f.checkMethodConfig(j, p, record, warns)
	p.RevenueMethod = parseModel(j.RevenueMethod)
	if j.RevenueMethod != "" && p.RevenueMethod == engine.ModelNone {
		warns = append(warns, Warning{record, "revenue_method", "unknown method " + j.RevenueMethod + ", falling back to manual amounts"})
	}
	return p, warns
}

// checkMethodConfig flags a named method missing its required configuration.
// The record is still ingested; recognition degrades per the method's rules.
func (f *Factory) checkMethodConfig(j ProjectJSON, p engine.Project, record string, warns []Warning) []Warning {
	switch parseModel(j.RevenueMethod) {
	case engine.ModelInput:
		if !p.TotalEstimatedCosts.IsPositive() {
			warns = append(warns, Warning{record, "total_estimated_costs", "input method requires positive estimated costs; recognition degrades to zero"})
		}
	case engine.ModelLinear:
		if !p.LinearMonthlyAmount.IsPositive() {
			warns = append(warns, Warning{record, "linear_monthly_amount", "linear method without a monthly amount recognizes zero"})
		}
	case engine.ModelOutput:
		if len(j.Milestones) == 0 {
			warns = append(warns, Warning{record, "milestones", "output method without milestones recognizes zero"})
		}
	}
	return warns
}

// WorkLog converts one activity record. Returns ok=false when the log must
// be dropped (unparseable date).
func (f *Factory) WorkLog(j WorkLogJSON) (engine.WorkLog, []Warning, bool) {
	id := j.ID
	if id == "" {
		id = uuid.NewString()
	}
	record := "work log " + id

	date, err := engine.ParseTimePoint(j.Date)
	if err != nil {
		return engine.WorkLog{}, []Warning{{record, "date", "unparseable date " + j.Date + ", entry dropped"}}, false
	}
	return engine.WorkLog{
		ID:         engine.WorkLogID(id),
		ProjectID:  engine.ProjectID(j.ProjectID),
		Date:       date,
		Amount:     engine.NewAmount(j.Amount),
		Hours:      decimal.NewFromFloat(j.Hours),
		CostAmount: engine.NewAmount(j.CostAmount),
	}, nil, true
}

// Invoice converts one invoice record. Unknown statuses default to draft so
// a mistyped status can never inflate billed totals.
func (f *Factory) Invoice(j InvoiceJSON) (engine.Invoice, []Warning) {
	id := j.ID
	if id == "" {
		id = uuid.NewString()
	}
	record := "invoice " + id
	var warns []Warning

	inv := engine.Invoice{
		ID:         engine.InvoiceID(id),
		ProjectID:  engine.ProjectID(j.ProjectID),
		BaseAmount: engine.NewAmount(j.BaseAmount),
	}
	inv.Date, warns = parseDate(j.Date, record, "date", warns)

	switch j.Status {
	case "sent":
		inv.Status = engine.InvoiceSent
	case "paid":
		inv.Status = engine.InvoicePaid
	case "", "draft":
		inv.Status = engine.InvoiceDraft
	default:
		inv.Status = engine.InvoiceDraft
		warns = append(warns, Warning{record, "status", "unknown status " + j.Status + ", treated as draft"})
	}
	return inv, warns
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

func parseDate(s, record, field string, warns []Warning) (engine.TimePoint, []Warning) {
	if s == "" {
		return engine.TimePoint{}, warns
	}
	tp, err := engine.ParseTimePoint(s)
	if err != nil {
		return engine.TimePoint{}, append(warns, Warning{record, field, "unparseable date " + s + ", treated as unset"})
	}
	return tp, warns
}

func parseMonth(s string) (engine.TimePoint, error) {
	if t, err := time.Parse("2006-01", s); err == nil {
		return engine.NewTimePoint(t.Year(), t.Month(), 1), nil
	}
	tp, err := engine.ParseTimePoint(s)
	if err != nil {
		return engine.TimePoint{}, err
	}
	return tp.MonthStart(), nil
}

func parseModel(s string) engine.RecognitionModel {
	switch s {
	case "linear":
		return engine.ModelLinear
	case "input":
		return engine.ModelInput
	case "output":
		return engine.ModelOutput
	}
	return engine.ModelNone
}

func parseProjectType(s, record string, warns []Warning) (engine.ProjectType, []Warning) {
	switch s {
	case "time_and_materials":
		return engine.TimeAndMaterials, warns
	case "fixed_price":
		return engine.FixedPrice, warns
	case "internal", "":
		return engine.Internal, warns
	}
	return engine.Internal, append(warns, Warning{record, "type", "unknown type " + s + ", treated as internal"})
}

func parseProjectStatus(s, record string, warns []Warning) (engine.ProjectStatus, []Warning) {
	switch s {
	case "planned":
		return engine.StatusPlanned, warns
	case "in_progress", "":
		return engine.StatusInProgress, warns
	case "completed":
		return engine.StatusCompleted, warns
	}
	return engine.StatusInProgress, append(warns, Warning{record, "status", "unknown status " + s + ", treated as in progress"})
}
