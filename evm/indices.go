package evm

import (
	"github.com/shopspring/decimal"
	"github.com/warp/revenue-engine/engine"
)

// =============================================================================
// INDEX CALCULATOR - State-free formulas over one consistent snapshot
// =============================================================================

var (
	neutralIndex = decimal.NewFromInt(1)

	// TCPIImpossible signals that finishing on budget is no longer possible:
	// funds are exhausted while work remains.
	TCPIImpossible = decimal.NewFromInt(999)
)

// Inputs is one consistent EV/AC/PV snapshot. All four figures must be taken
// at the same reference date.
type Inputs struct {
	BAC engine.Amount // budget at completion
	EV  engine.Amount // earned value (recognized revenue)
	AC  engine.Amount // actual cost to date
	PV  engine.Amount // planned value at the reference date
}

// Metrics holds every derived figure from one Inputs snapshot.
type Metrics struct {
	PV   engine.Amount   // echoed from Inputs for display
	CPI  decimal.Decimal // cost performance index
	SPI  decimal.Decimal // schedule performance index
	TCPI decimal.Decimal // to-complete performance index
	EAC  engine.Amount   // estimate at completion
	VAC  engine.Amount   // variance at completion (positive = underrun)
}

// Compute derives all indices from one snapshot.
//
// Degeneracy rules:
//   - CPI = 1 when AC = 0 (no work charged yet, efficiency unjudgeable)
//   - SPI = 1 when PV = 0 (nothing planned yet)
//   - TCPI = 999 when funds are exhausted but work remains, 0 when the
//     project finished exactly on budget
//   - EAC = BAC when CPI is not positive
func Compute(in Inputs) Metrics {
	m := Metrics{PV: in.PV}

	m.CPI = neutralIndex
	if in.AC.IsPositive() {
		m.CPI = in.EV.Value.Div(in.AC.Value)
	}

	m.SPI = neutralIndex
	if in.PV.IsPositive() {
		m.SPI = in.EV.Value.Div(in.PV.Value)
	}

	m.TCPI = tcpi(in)

	m.EAC = in.BAC
	if m.CPI.IsPositive() {
		m.EAC = in.BAC.Div(m.CPI)
	}
	m.VAC = in.BAC.Sub(m.EAC)

	return m
}

// tcpi is the efficiency required on remaining funds to finish on budget:
// max(0, BAC-EV) / (BAC-AC).
func tcpi(in Inputs) decimal.Decimal {
	remainingWork := in.BAC.Sub(in.EV).Max(engine.ZeroAmount())
	remainingFunds := in.BAC.Sub(in.AC)

	if !remainingFunds.IsPositive() {
		if remainingWork.IsPositive() {
			return TCPIImpossible
		}
		return decimal.Zero
	}
	return remainingWork.Value.Div(remainingFunds.Value)
}
