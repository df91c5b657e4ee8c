package factory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/revenue-engine/engine"
	"github.com/warp/revenue-engine/factory"
)

func decimalFrom(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// =============================================================================
// PORTFOLIO PARSING
// =============================================================================

func TestParsePortfolio_FullRecordSet(t *testing.T) {
	// GIVEN: A well-formed record set
	// WHEN: Parsing
	// THEN: Every entity converts cleanly, with no warnings

	raw := []byte(`{
		"contracts": [
			{"id": "con-1", "name": "Acme MSA", "tcv": 300000, "start_date": "2025-01-01", "end_date": "2025-12-31", "status": "active"}
		],
		"projects": [
			{
				"id": "prj-1", "contract_id": "con-1", "name": "Build",
				"type": "fixed_price", "status": "in_progress",
				"revenue_method": "input", "budget": 200000,
				"total_estimated_costs": 140000,
				"start_date": "2025-02-01", "end_date": "2025-10-31"
			}
		],
		"work_logs": [
			{"id": "l1", "project_id": "prj-1", "date": "2025-03-15", "cost_amount": 12000, "hours": 150}
		],
		"invoices": [
			{"id": "i1", "project_id": "prj-1", "date": "2025-03-31", "base_amount": 50000, "status": "paid"}
		]
	}`)

	f := factory.New()
	pf, warns, err := f.ParsePortfolio(raw)
	require.NoError(t, err)
	assert.Empty(t, warns)

	require.Len(t, pf.Contracts, 1)
	require.Len(t, pf.Projects, 1)
	require.Len(t, pf.WorkLogs, 1)
	require.Len(t, pf.Invoices, 1)

	p := pf.Projects[0]
	assert.Equal(t, engine.FixedPrice, p.Type)
	assert.Equal(t, engine.ModelInput, p.RevenueMethod)
	assert.True(t, p.TotalEstimatedCosts.Equal(engine.NewAmount(140000)))
	assert.True(t, p.StartDate.Equal(engine.NewTimePoint(2025, time.February, 1)))
}

func TestParsePortfolio_UndecodableJSONIsAnError(t *testing.T) {
	f := factory.New()
	_, _, err := f.ParsePortfolio([]byte(`{"projects": [`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrInvalidRecord))
}

// =============================================================================
// PROJECTS
// =============================================================================

func TestProject_MethodConfigGapsWarnButIngest(t *testing.T) {
	cases := []struct {
		name      string
		record    factory.ProjectJSON
		wantField string
	}{
		{
			name:      "input method without estimate",
			record:    factory.ProjectJSON{ID: "p1", Type: "fixed_price", RevenueMethod: "input", Budget: 100000},
			wantField: "total_estimated_costs",
		},
		{
			name:      "linear method without monthly amount",
			record:    factory.ProjectJSON{ID: "p2", Type: "fixed_price", RevenueMethod: "linear", Budget: 100000},
			wantField: "linear_monthly_amount",
		},
		{
			name:      "output method without milestones",
			record:    factory.ProjectJSON{ID: "p3", Type: "fixed_price", RevenueMethod: "output", Budget: 100000},
			wantField: "milestones",
		},
	}

	f := factory.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, warns := f.Project(tc.record)
			assert.NotEmpty(t, p.ID, "record must still be ingested")

			found := false
			for _, w := range warns {
				if w.Field == tc.wantField {
					found = true
				}
			}
			assert.True(t, found, "expected a warning on %s, got %+v", tc.wantField, warns)
		})
	}
}

func TestProject_MilestonesSummingPast100Warn(t *testing.T) {
	f := factory.New()
	_, warns := f.Project(factory.ProjectJSON{
		ID: "p1", Type: "fixed_price", RevenueMethod: "output", Budget: 100000,
		Milestones: []factory.MilestoneJSON{
			{ID: "m1", Percentage: 60, Completed: true},
			{ID: "m2", Percentage: 70},
		},
	})

	found := false
	for _, w := range warns {
		if w.Field == "milestones" {
			found = true
		}
	}
	assert.True(t, found, "expected milestone sum warning, got %+v", warns)
}

func TestProject_CurveExceedingBudgetWarns(t *testing.T) {
	f := factory.New()
	p, warns := f.Project(factory.ProjectJSON{
		ID: "p1", Budget: 50000,
		MonthlyBudget: []factory.BudgetEntryJSON{
			{Month: "2025-01", Amount: 30000},
			{Month: "2025-02", Amount: 40000},
		},
	})

	require.Len(t, p.MonthlyBudget, 2)
	assert.True(t, p.MonthlyBudget[0].Month.Equal(engine.NewTimePoint(2025, time.January, 1)))

	found := false
	for _, w := range warns {
		if w.Field == "monthly_budget" {
			found = true
		}
	}
	assert.True(t, found, "expected curve total warning, got %+v", warns)
}

func TestProject_ReserveOutsideRangeIgnored(t *testing.T) {
	f := factory.New()
	bad := 150.0
	p, warns := f.Project(factory.ProjectJSON{ID: "p1", ContingencyReserve: &bad})
	assert.Nil(t, p.ContingencyReserve)
	assert.NotEmpty(t, warns)

	good := 15.0
	p, _ = f.Project(factory.ProjectJSON{ID: "p2", ContingencyReserve: &good})
	require.NotNil(t, p.ContingencyReserve)
	assert.True(t, p.ContingencyReserve.Equal(decimalFrom(15)))
}

func TestProject_UnknownEnumsDegradeWithWarnings(t *testing.T) {
	f := factory.New()
	p, warns := f.Project(factory.ProjectJSON{
		ID: "p1", Type: "mystery", Status: "limbo", RevenueMethod: "percentage_magic",
	})

	assert.Equal(t, engine.Internal, p.Type)
	assert.Equal(t, engine.StatusInProgress, p.Status)
	assert.Equal(t, engine.ModelNone, p.RevenueMethod)
	assert.Len(t, warns, 3)
}

func TestProject_MissingIDGenerated(t *testing.T) {
	f := factory.New()
	p, _ := f.Project(factory.ProjectJSON{Name: "anonymous"})
	assert.NotEmpty(t, p.ID)
}

// =============================================================================
// WORK LOGS AND INVOICES
// =============================================================================

func TestWorkLog_UnparseableDateDropsTheLog(t *testing.T) {
	// GIVEN: A work log whose date cannot be parsed
	// WHEN: Converting
	// THEN: The log is dropped with a warning; a zero-date log would leak
	//       epoch-dated activity into reports

	f := factory.New()
	_, warns, ok := f.WorkLog(factory.WorkLogJSON{ID: "l1", ProjectID: "p1", Date: "last tuesday", CostAmount: 500})
	assert.False(t, ok)
	require.Len(t, warns, 1)
	assert.Equal(t, "date", warns[0].Field)
}

func TestInvoice_UnknownStatusBecomesDraft(t *testing.T) {
	// GIVEN: An invoice with a mistyped status
	// WHEN: Converting
	// THEN: It becomes draft, so it can never inflate billed totals

	f := factory.New()
	inv, warns := f.Invoice(factory.InvoiceJSON{ID: "i1", ProjectID: "p1", Date: "2025-04-01", BaseAmount: 1000, Status: "payed"})
	assert.Equal(t, engine.InvoiceDraft, inv.Status)
	assert.False(t, inv.Billable())
	assert.NotEmpty(t, warns)
}

// =============================================================================
// CONTRACTS
// =============================================================================

func TestContract_DateAndStatusDegradation(t *testing.T) {
	f := factory.New()
	c, warns := f.Contract(factory.ContractJSON{
		ID: "c1", Name: "Deal", TCV: 100000,
		StartDate: "01/01/2025", Status: "pending",
	})

	assert.True(t, c.StartDate.IsZero(), "unparseable date becomes unset")
	assert.Equal(t, engine.ContractActive, c.Status)
	assert.Len(t, warns, 2)
}
