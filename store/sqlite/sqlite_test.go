package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/revenue-engine/engine"
	"github.com/warp/revenue-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_ProjectRoundTrip(t *testing.T) {
	// GIVEN: A project with milestones, a budget curve, and a reserve
	// WHEN: Saving and snapshotting
	// THEN: Every field survives the round-trip, amounts exactly

	s := newStore(t)
	ctx := context.Background()

	reserve := decimal.NewFromFloat(12.5)
	p := engine.Project{
		ID:                  "prj-1",
		ContractID:          "con-1",
		Name:                "Build",
		Type:                engine.FixedPrice,
		Status:              engine.StatusInProgress,
		RevenueMethod:       engine.ModelOutput,
		Budget:              engine.MustParseAmount("199999.99"),
		TotalEstimatedCosts: engine.NewAmount(140000),
		BilledAmount:        engine.NewAmount(25000),
		StartDate:           engine.NewTimePoint(2025, time.February, 1),
		EndDate:             engine.NewTimePoint(2025, time.October, 31),
		ContingencyReserve:  &reserve,
		Milestones: []engine.Milestone{
			{ID: "ms-1", Name: "Design", Percentage: decimal.NewFromInt(30), Completed: true, TargetDate: engine.NewTimePoint(2025, time.April, 1)},
			{ID: "ms-2", Name: "Launch", Percentage: decimal.NewFromInt(70)},
		},
		MonthlyBudget: []engine.BudgetEntry{
			{PhaseID: "phase-1", Month: engine.NewTimePoint(2025, time.February, 1), Amount: engine.NewAmount(50000)},
			{PhaseID: "phase-1", Month: engine.NewTimePoint(2025, time.March, 1), Amount: engine.NewAmount(70000)},
		},
	}
	require.NoError(t, s.SaveProject(ctx, p))

	pf, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, pf.Projects, 1)

	got := pf.Projects[0]
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.ContractID, got.ContractID)
	assert.Equal(t, engine.ModelOutput, got.RevenueMethod)
	assert.True(t, got.Budget.Equal(p.Budget), "budget %s != %s", got.Budget, p.Budget)
	assert.True(t, got.StartDate.Equal(p.StartDate))
	require.NotNil(t, got.ContingencyReserve)
	assert.True(t, got.ContingencyReserve.Equal(reserve))

	require.Len(t, got.Milestones, 2)
	assert.True(t, got.Milestones[0].Completed)
	assert.True(t, got.Milestones[0].Percentage.Equal(decimal.NewFromInt(30)))

	require.Len(t, got.MonthlyBudget, 2)
	assert.True(t, got.MonthlyBudget[0].Month.Equal(engine.NewTimePoint(2025, time.February, 1)))
	assert.True(t, got.MonthlyBudget[1].Amount.Equal(engine.NewAmount(70000)))
}

func TestStore_SaveProjectReplacesChildren(t *testing.T) {
	// GIVEN: A saved project with two milestones
	// WHEN: Saving it again with one
	// THEN: The old children are gone, not accumulated

	s := newStore(t)
	ctx := context.Background()

	p := engine.Project{
		ID: "prj-1", Name: "Build", Type: engine.FixedPrice, Budget: engine.NewAmount(1000),
		Milestones: []engine.Milestone{
			{ID: "ms-1", Percentage: decimal.NewFromInt(50)},
			{ID: "ms-2", Percentage: decimal.NewFromInt(50)},
		},
	}
	require.NoError(t, s.SaveProject(ctx, p))

	p.Milestones = p.Milestones[:1]
	require.NoError(t, s.SaveProject(ctx, p))

	pf, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, pf.Projects[0].Milestones, 1)
}

func TestStore_AddInvoiceMaintainsBilledTotal(t *testing.T) {
	// GIVEN: A project receiving paid, sent and draft invoices
	// WHEN: Adding each through the write boundary
	// THEN: The billed total on the project row tracks Sent+Paid only

	s := newStore(t)
	ctx := context.Background()

	p := engine.Project{ID: "prj-1", Name: "Build", Type: engine.TimeAndMaterials, Budget: engine.NewAmount(100000)}
	require.NoError(t, s.SaveProject(ctx, p))
	day := engine.NewTimePoint(2025, time.May, 31)

	total, err := s.AddInvoice(ctx, engine.Invoice{ID: "i1", ProjectID: "prj-1", Date: day, BaseAmount: engine.NewAmount(10000), Status: engine.InvoicePaid})
	require.NoError(t, err)
	assert.True(t, total.Equal(engine.NewAmount(10000)))

	total, err = s.AddInvoice(ctx, engine.Invoice{ID: "i2", ProjectID: "prj-1", Date: day, BaseAmount: engine.NewAmount(5000), Status: engine.InvoiceDraft})
	require.NoError(t, err)
	assert.True(t, total.Equal(engine.NewAmount(10000)), "draft must not move the total")

	total, err = s.AddInvoice(ctx, engine.Invoice{ID: "i3", ProjectID: "prj-1", Date: day, BaseAmount: engine.NewAmount(7000), Status: engine.InvoiceSent})
	require.NoError(t, err)
	assert.True(t, total.Equal(engine.NewAmount(17000)))

	pf, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, pf.Projects[0].BilledAmount.Equal(engine.NewAmount(17000)))
	assert.Len(t, pf.Invoices, 3)
}

func TestStore_WorkLogsOrderedByDate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddWorkLog(ctx, engine.WorkLog{
		ID: "l2", ProjectID: "prj-1", Date: engine.NewTimePoint(2025, time.March, 1),
		Amount: engine.NewAmount(2), Hours: decimal.NewFromInt(8), CostAmount: engine.NewAmount(1),
	}))
	require.NoError(t, s.AddWorkLog(ctx, engine.WorkLog{
		ID: "l1", ProjectID: "prj-1", Date: engine.NewTimePoint(2025, time.January, 1),
		Amount: engine.NewAmount(1), Hours: decimal.NewFromInt(8), CostAmount: engine.NewAmount(1),
	}))

	pf, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, pf.WorkLogs, 2)
	assert.Equal(t, engine.WorkLogID("l1"), pf.WorkLogs[0].ID)
}

func TestStore_Reset(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveContract(ctx, engine.Contract{ID: "con-1", Name: "Deal", TCV: engine.NewAmount(1), Status: engine.ContractActive}))
	require.NoError(t, s.Reset(ctx))

	pf, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, pf.Contracts)
}
