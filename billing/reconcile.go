/*
Package billing reconciles recognized revenue against invoiced amounts.

PURPOSE:
  Classifies a project's accounting position. Work performed but not yet
  invoiced is an asset (work in progress); amounts invoiced ahead of work
  performed are a liability (deferred revenue).

INVARIANT:
  For any reconciliation, wip >= 0, deferred >= 0, and at most one of them is
  non-zero. A project is either under-billed, over-billed, or settled - never
  both at once.
*/
package billing

import "github.com/warp/revenue-engine/engine"

// Position is a project's billing position at one evaluation instant.
type Position struct {
	// WIP is revenue earned but not yet invoiced (asset).
	WIP engine.Amount

	// Deferred is the amount invoiced ahead of work performed (liability),
	// e.g. advance payments.
	Deferred engine.Amount
}

// Reconcile compares recognized revenue with the billed total.
func Reconcile(recognized, billed engine.Amount) Position {
	zero := engine.ZeroAmount()
	return Position{
		WIP:      recognized.Sub(billed).Max(zero),
		Deferred: billed.Sub(recognized).Max(zero),
	}
}

// Settled reports whether the position is fully reconciled.
func (p Position) Settled() bool {
	return p.WIP.IsZero() && p.Deferred.IsZero()
}

// BilledTotal sums the base amounts of Sent and Paid invoices. Draft invoices
// never count. Write paths use this to maintain a project's pre-aggregated
// billed amount; the engine itself trusts that aggregate.
func BilledTotal(invoices []engine.Invoice) engine.Amount {
	total := engine.ZeroAmount()
	for _, inv := range invoices {
		if inv.Billable() {
			total = total.Add(inv.BaseAmount)
		}
	}
	return total
}
