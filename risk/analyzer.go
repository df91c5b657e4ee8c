/*
Package risk derives portfolio alerts from project performance figures.

PURPOSE:
  Applies fixed threshold rules over derived metrics (CPI, SPI, EAC, WIP) to
  produce a list of alerts per project. Rules are evaluated independently:
  several alerts may fire for the same project, and there is no implicit
  priority between rules - consumers sort by severity when they need order.

THRESHOLDS:
  The cutoffs are policy constants, not configuration. Changing them changes
  which projects surface on every oversight view.
*/
package risk

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/revenue-engine/engine"
)

// =============================================================================
// ALERTS
// =============================================================================

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

type Category string

const (
	CategoryFinancial Category = "financial"
	CategoryBudget    Category = "budget"
	CategorySchedule  Category = "schedule"
)

type Alert struct {
	Severity    Severity
	Category    Category
	Title       string
	Description string
}

// =============================================================================
// THRESHOLDS - Fixed policy constants
// =============================================================================

var (
	cpiCritical  = decimal.NewFromFloat(0.85)
	cpiWarning   = decimal.NewFromFloat(0.95)
	spiWarning   = decimal.NewFromFloat(0.90)
	wipThreshold = engine.NewAmountFromInt(15000)
)

// Figures are the derived metrics the rules read. They must all come from
// the same evaluation snapshot.
type Figures struct {
	BAC engine.Amount
	EAC engine.Amount
	WIP engine.Amount
	CPI decimal.Decimal
	SPI decimal.Decimal
}

// =============================================================================
// RULE EVALUATION
// =============================================================================

// Evaluate runs every rule against the project and its figures. The returned
// slice is in rule order; use SortBySeverity for display.
func Evaluate(p engine.Project, f Figures, asOf engine.TimePoint) []Alert {
	var alerts []Alert
	inProgress := p.Status == engine.StatusInProgress

	switch {
	case f.CPI.LessThan(cpiCritical):
		alerts = append(alerts, Alert{
			Severity: SeverityCritical, Category: CategoryFinancial,
			Title:       "Severe cost overrun",
			Description: fmt.Sprintf("CPI %s is below 0.85: every unit spent earns well under a unit of value", f.CPI.StringFixed(2)),
		})
	case f.CPI.LessThan(cpiWarning):
		alerts = append(alerts, Alert{
			Severity: SeverityWarning, Category: CategoryFinancial,
			Title:       "Cost efficiency degrading",
			Description: fmt.Sprintf("CPI %s is below 0.95", f.CPI.StringFixed(2)),
		})
	}

	if f.EAC.GreaterThan(f.BAC) {
		alerts = append(alerts, Alert{
			Severity: SeverityCritical, Category: CategoryBudget,
			Title:       "Projected budget overrun",
			Description: fmt.Sprintf("estimate at completion %s exceeds budget %s", f.EAC, f.BAC),
		})
	}

	if p.ContingencyReserve != nil {
		usable := f.BAC.Mul(decimal.NewFromInt(1).Sub(p.ContingencyReserve.Div(decimal.NewFromInt(100))))
		if f.EAC.GreaterThan(usable) {
			alerts = append(alerts, Alert{
				Severity: SeverityWarning, Category: CategoryBudget,
				Title:       "Contingency reserve at risk",
				Description: fmt.Sprintf("estimate at completion %s eats into the %s%% reserve", f.EAC, p.ContingencyReserve.StringFixed(0)),
			})
		}
	}

	if inProgress && f.SPI.LessThan(spiWarning) {
		alerts = append(alerts, Alert{
			Severity: SeverityWarning, Category: CategorySchedule,
			Title:       "Behind schedule",
			Description: fmt.Sprintf("SPI %s is below 0.90", f.SPI.StringFixed(2)),
		})
	}

	if inProgress && !p.EndDate.IsZero() && p.EndDate.Before(asOf) {
		alerts = append(alerts, Alert{
			Severity: SeverityCritical, Category: CategorySchedule,
			Title:       "Past planned end date",
			Description: fmt.Sprintf("planned end %s has passed and the project is still in progress", p.EndDate),
		})
	}

	if f.WIP.GreaterThan(wipThreshold) {
		alerts = append(alerts, Alert{
			Severity: SeverityWarning, Category: CategoryFinancial,
			Title:       "High unbilled work in progress",
			Description: fmt.Sprintf("WIP %s exceeds 15000; earned work is not being invoiced", f.WIP),
		})
	}

	return alerts
}

// SortBySeverity orders alerts critical first, then warning, then info.
// The sort is stable: rule order is preserved within a severity.
func SortBySeverity(alerts []Alert) {
	rank := map[Severity]int{SeverityCritical: 0, SeverityWarning: 1, SeverityInfo: 2}
	sort.SliceStable(alerts, func(i, j int) bool {
		return rank[alerts[i].Severity] < rank[alerts[j].Severity]
	})
}
