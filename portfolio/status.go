/*
Package portfolio assembles every derived figure for a project from one
consistent snapshot.

PURPOSE:
  This is the orchestration layer over the pure calculators: actual cost from
  work logs, recognized revenue from the recognition method, planned value and
  EVM indices, and the billing position - all evaluated at a single reference
  date. Consumers (HTTP handlers, reports, the risk analyzer) read the
  resulting ProjectStatus instead of composing calculators themselves, which
  is what keeps EV, AC and PV from ever being mixed across moments.
*/
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/engine"
	"github.com/warp/revenue-engine/evm"
	"github.com/warp/revenue-engine/revenue"
	"github.com/warp/revenue-engine/risk"
)

// =============================================================================
// PROJECT STATUS - All derived figures from one evaluation instant
// =============================================================================

type ProjectStatus struct {
	ProjectID  engine.ProjectID
	ContractID engine.ContractID
	Name       string
	Type       engine.ProjectType
	Status     engine.ProjectStatus
	Method     revenue.Kind
	AsOf       engine.TimePoint

	BAC        engine.Amount
	Recognized engine.Amount // EV
	ActualCost engine.Amount // AC
	PV         engine.Amount

	CPI  decimal.Decimal
	SPI  decimal.Decimal
	TCPI decimal.Decimal
	EAC  engine.Amount
	VAC  engine.Amount

	Billed   engine.Amount
	WIP      engine.Amount
	Deferred engine.Amount
}

// Figures projects the status into the risk analyzer's input.
func (s ProjectStatus) Figures() risk.Figures {
	return risk.Figures{
		BAC: s.BAC,
		EAC: s.EAC,
		WIP: s.WIP,
		CPI: s.CPI,
		SPI: s.SPI,
	}
}

// =============================================================================
// EVALUATION
// =============================================================================

// ActualCost sums the cost of the project's work logs dated up to asOf.
// Logs with a zero date are excluded.
func ActualCost(logs []engine.WorkLog, projectID engine.ProjectID, asOf engine.TimePoint) engine.Amount {
	total := engine.ZeroAmount()
	for _, l := range logs {
		if l.ProjectID != projectID || l.Date.IsZero() || l.Date.After(asOf) {
			continue
		}
		total = total.Add(l.CostAmount)
	}
	return total
}

// Evaluate computes the full status of a project at asOf. Pure: the project
// and logs are read, never written; billed totals stay whatever the write
// boundary recorded.
func Evaluate(p engine.Project, logs []engine.WorkLog, asOf engine.TimePoint) ProjectStatus {
	ac := ActualCost(logs, p.ID, asOf)
	ev := revenue.Recognized(p, ac, asOf)
	pv := evm.PlannedValue(p, asOf)
	metrics := evm.Compute(evm.Inputs{BAC: p.Budget, EV: ev, AC: ac, PV: pv})
	position := billing.Reconcile(ev, p.BilledAmount)

	return ProjectStatus{
		ProjectID:  p.ID,
		ContractID: p.ContractID,
		Name:       p.Name,
		Type:       p.Type,
		Status:     p.Status,
		Method:     revenue.MethodFor(p).Kind(),
		AsOf:       asOf,
		BAC:        p.Budget,
		Recognized: ev,
		ActualCost: ac,
		PV:         pv,
		CPI:        metrics.CPI,
		SPI:        metrics.SPI,
		TCPI:       metrics.TCPI,
		EAC:        metrics.EAC,
		VAC:        metrics.VAC,
		Billed:     p.BilledAmount,
		WIP:        position.WIP,
		Deferred:   position.Deferred,
	}
}

// EvaluateAll computes the status of every project in the snapshot, in
// snapshot order.
func EvaluateAll(pf *engine.Portfolio, asOf engine.TimePoint) []ProjectStatus {
	statuses := make([]ProjectStatus, 0, len(pf.Projects))
	for _, p := range pf.Projects {
		statuses = append(statuses, Evaluate(p, pf.WorkLogs, asOf))
	}
	return statuses
}

// =============================================================================
// RISK ANALYSIS
// =============================================================================

// AnalyzeRisks evaluates the project and runs every alert rule against the
// resulting figures.
func AnalyzeRisks(p engine.Project, logs []engine.WorkLog, asOf engine.TimePoint) []risk.Alert {
	st := Evaluate(p, logs, asOf)
	return risk.Evaluate(p, st.Figures(), asOf)
}

// ProjectAlerts attributes a project's alerts for portfolio-wide feeds.
type ProjectAlerts struct {
	ProjectID engine.ProjectID
	Name      string
	Alerts    []risk.Alert
}

// AnalyzePortfolio runs the alert rules over every project in the snapshot.
// Projects with no alerts are omitted. Alerts within a project are sorted by
// severity.
func AnalyzePortfolio(pf *engine.Portfolio, asOf engine.TimePoint) []ProjectAlerts {
	var results []ProjectAlerts
	for _, p := range pf.Projects {
		alerts := AnalyzeRisks(p, pf.WorkLogs, asOf)
		if len(alerts) == 0 {
			continue
		}
		risk.SortBySeverity(alerts)
		results = append(results, ProjectAlerts{ProjectID: p.ID, Name: p.Name, Alerts: alerts})
	}
	return results
}
