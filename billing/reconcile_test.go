package billing_test

import (
	"testing"
	"time"

	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/engine"
)

func amount(v float64) engine.Amount {
	return engine.NewAmount(v)
}

func TestReconcile_UnderBilledIsWIP(t *testing.T) {
	// GIVEN: 30,000 recognized, 18,000 billed
	// WHEN: Reconciling
	// THEN: 12,000 WIP, no deferred revenue

	pos := billing.Reconcile(amount(30000), amount(18000))
	if !pos.WIP.Equal(amount(12000)) {
		t.Errorf("expected WIP 12000, got %s", pos.WIP)
	}
	if !pos.Deferred.IsZero() {
		t.Errorf("expected zero deferred, got %s", pos.Deferred)
	}
}

func TestReconcile_OverBilledIsDeferred(t *testing.T) {
	// GIVEN: Advance invoicing ahead of work performed
	// WHEN: Reconciling
	// THEN: The excess is a liability, WIP is zero

	pos := billing.Reconcile(amount(10000), amount(25000))
	if !pos.WIP.IsZero() {
		t.Errorf("expected zero WIP, got %s", pos.WIP)
	}
	if !pos.Deferred.Equal(amount(15000)) {
		t.Errorf("expected deferred 15000, got %s", pos.Deferred)
	}
}

func TestReconcile_ExactMatchIsSettled(t *testing.T) {
	pos := billing.Reconcile(amount(40000), amount(40000))
	if !pos.Settled() {
		t.Errorf("expected settled position, got WIP %s deferred %s", pos.WIP, pos.Deferred)
	}
}

func TestReconcile_AtMostOneSideNonZero(t *testing.T) {
	// GIVEN: Any pair of recognized/billed figures
	// WHEN: Reconciling
	// THEN: min(WIP, deferred) is always zero

	pairs := [][2]float64{
		{0, 0}, {100, 0}, {0, 100}, {57.5, 57.5}, {99999, 1}, {1, 99999},
	}
	for _, pair := range pairs {
		pos := billing.Reconcile(amount(pair[0]), amount(pair[1]))
		if pos.WIP.IsPositive() && pos.Deferred.IsPositive() {
			t.Errorf("recognized %v billed %v: both WIP %s and deferred %s are positive",
				pair[0], pair[1], pos.WIP, pos.Deferred)
		}
		if pos.WIP.IsNegative() || pos.Deferred.IsNegative() {
			t.Errorf("recognized %v billed %v: negative position WIP %s deferred %s",
				pair[0], pair[1], pos.WIP, pos.Deferred)
		}
	}
}

func TestBilledTotal_DraftInvoicesNeverCount(t *testing.T) {
	// GIVEN: Invoices in every status
	// WHEN: Summing the billed total
	// THEN: Only Sent and Paid contribute

	day := engine.NewTimePoint(2025, time.April, 30)
	invoices := []engine.Invoice{
		{ID: "inv-1", BaseAmount: amount(1000), Status: engine.InvoicePaid, Date: day},
		{ID: "inv-2", BaseAmount: amount(2000), Status: engine.InvoiceSent, Date: day},
		{ID: "inv-3", BaseAmount: amount(4000), Status: engine.InvoiceDraft, Date: day},
	}

	total := billing.BilledTotal(invoices)
	if !total.Equal(amount(3000)) {
		t.Errorf("expected 3000 (draft excluded), got %s", total)
	}
}
