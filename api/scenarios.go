/*
scenarios.go - Seedable demo portfolios

PURPOSE:
  Self-contained data sets for demos and manual testing. Each scenario seeds
  the store through the same write boundary the rest of the system uses, so
  billed totals and persisted state behave exactly as they would with real
  data.

SCENARIOS:
  consulting-portfolio  A healthy mixed portfolio: every recognition method,
                        contract roll-ups, an unassigned internal project.
  troubled-delivery     A fixed-price project in trouble: cost overrun, past
                        its end date, with a pile of unbilled work.
*/
package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/engine"
)

// Scenario seeds one demo portfolio into a store.
type Scenario struct {
	Name        string
	Description string
	Load        func(ctx context.Context, store Store) error
}

var Scenarios = []Scenario{
	{
		Name:        "consulting-portfolio",
		Description: "Mixed portfolio: linear, cost-to-cost, milestone and T&M projects under one master contract",
		Load:        loadConsultingPortfolio,
	},
	{
		Name:        "troubled-delivery",
		Description: "Fixed-price project over budget, past its end date, with high unbilled WIP",
		Load:        loadTroubledDelivery,
	},
}

// FindScenario looks a scenario up by name.
func FindScenario(name string) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// =============================================================================
// CONSULTING PORTFOLIO
// =============================================================================

func loadConsultingPortfolio(ctx context.Context, store Store) error {
	contract := engine.Contract{
		ID:        "con-acme",
		Name:      "Acme Master Services Agreement",
		TCV:       engine.NewAmount(420000),
		StartDate: engine.NewTimePoint(2025, time.January, 1),
		EndDate:   engine.NewTimePoint(2025, time.December, 31),
		Status:    engine.ContractActive,
	}
	if err := store.SaveContract(ctx, contract); err != nil {
		return err
	}

	reserve := decimal.NewFromInt(10)
	projects := []engine.Project{
		{
			ID:            "prj-retainer",
			ContractID:    contract.ID,
			Name:          "Platform Retainer",
			Type:          engine.FixedPrice,
			Status:        engine.StatusInProgress,
			RevenueMethod:       engine.ModelLinear,
			Budget:              engine.NewAmount(120000),
			LinearMonthlyAmount: engine.NewAmount(10000),
			StartDate:           engine.NewTimePoint(2025, time.January, 1),
			EndDate:             engine.NewTimePoint(2025, time.December, 31),
		},
		{
			ID:                  "prj-migration",
			ContractID:          contract.ID,
			Name:                "Data Migration",
			Type:                engine.FixedPrice,
			Status:              engine.StatusInProgress,
			RevenueMethod:       engine.ModelInput,
			Budget:              engine.NewAmount(200000),
			TotalEstimatedCosts: engine.NewAmount(140000),
			StartDate:           engine.NewTimePoint(2025, time.February, 1),
			EndDate:             engine.NewTimePoint(2025, time.October, 31),
			ContingencyReserve:  &reserve,
		},
		{
			ID:            "prj-rollout",
			ContractID:    contract.ID,
			Name:          "Regional Rollout",
			Type:          engine.FixedPrice,
			Status:        engine.StatusInProgress,
			RevenueMethod: engine.ModelOutput,
			Budget:        engine.NewAmount(100000),
			StartDate:     engine.NewTimePoint(2025, time.March, 1),
			EndDate:       engine.NewTimePoint(2025, time.November, 30),
			Milestones: []engine.Milestone{
				{ID: "ms-design", Name: "Design signed off", Percentage: decimal.NewFromInt(20), Completed: true, TargetDate: engine.NewTimePoint(2025, time.April, 15)},
				{ID: "ms-pilot", Name: "Pilot region live", Percentage: decimal.NewFromInt(30), Completed: true, TargetDate: engine.NewTimePoint(2025, time.June, 30)},
				{ID: "ms-full", Name: "All regions live", Percentage: decimal.NewFromInt(50), Completed: false, TargetDate: engine.NewTimePoint(2025, time.November, 15)},
			},
		},
		{
			ID:        "prj-advisory",
			Name:      "Ad-hoc Advisory",
			Type:      engine.TimeAndMaterials,
			Status:    engine.StatusInProgress,
			Budget:    engine.NewAmount(50000),
			StartDate: engine.NewTimePoint(2025, time.January, 15),
		},
	}
	for _, p := range projects {
		if err := store.SaveProject(ctx, p); err != nil {
			return err
		}
	}

	logs := []struct {
		project engine.ProjectID
		date    engine.TimePoint
		amount  float64
		cost    float64
		hours   int64
	}{
		{"prj-migration", engine.NewTimePoint(2025, time.February, 28), 0, 28000, 320},
		{"prj-migration", engine.NewTimePoint(2025, time.March, 31), 0, 31000, 350},
		{"prj-migration", engine.NewTimePoint(2025, time.April, 30), 0, 26000, 300},
		{"prj-rollout", engine.NewTimePoint(2025, time.April, 10), 0, 9000, 110},
		{"prj-rollout", engine.NewTimePoint(2025, time.June, 20), 0, 12000, 140},
		{"prj-advisory", engine.NewTimePoint(2025, time.February, 14), 6200, 3900, 40},
		{"prj-advisory", engine.NewTimePoint(2025, time.March, 21), 7800, 4700, 50},
		{"prj-advisory", engine.NewTimePoint(2025, time.May, 9), 5400, 3300, 35},
	}
	for _, l := range logs {
		err := store.AddWorkLog(ctx, engine.WorkLog{
			ID:         engine.WorkLogID(uuid.NewString()),
			ProjectID:  l.project,
			Date:       l.date,
			Amount:     engine.NewAmount(l.amount),
			Hours:      decimal.NewFromInt(l.hours),
			CostAmount: engine.NewAmount(l.cost),
		})
		if err != nil {
			return err
		}
	}

	invoices := []engine.Invoice{
		{ID: engine.InvoiceID(uuid.NewString()), ProjectID: "prj-retainer", Date: engine.NewTimePoint(2025, time.March, 31), BaseAmount: engine.NewAmount(30000), Status: engine.InvoicePaid},
		{ID: engine.InvoiceID(uuid.NewString()), ProjectID: "prj-retainer", Date: engine.NewTimePoint(2025, time.June, 30), BaseAmount: engine.NewAmount(30000), Status: engine.InvoiceSent},
		{ID: engine.InvoiceID(uuid.NewString()), ProjectID: "prj-migration", Date: engine.NewTimePoint(2025, time.April, 30), BaseAmount: engine.NewAmount(80000), Status: engine.InvoicePaid},
		{ID: engine.InvoiceID(uuid.NewString()), ProjectID: "prj-rollout", Date: engine.NewTimePoint(2025, time.May, 15), BaseAmount: engine.NewAmount(20000), Status: engine.InvoiceSent},
		// Draft: must not move any billed total.
		{ID: engine.InvoiceID(uuid.NewString()), ProjectID: "prj-advisory", Date: engine.NewTimePoint(2025, time.May, 31), BaseAmount: engine.NewAmount(9000), Status: engine.InvoiceDraft},
	}
	for _, inv := range invoices {
		if _, err := store.AddInvoice(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// TROUBLED DELIVERY
// =============================================================================

func loadTroubledDelivery(ctx context.Context, store Store) error {
	contract := engine.Contract{
		ID:        "con-northwind",
		Name:      "Northwind ERP Replacement",
		TCV:       engine.NewAmount(150000),
		StartDate: engine.NewTimePoint(2025, time.January, 1),
		EndDate:   engine.NewTimePoint(2025, time.June, 30),
		Status:    engine.ContractActive,
	}
	if err := store.SaveContract(ctx, contract); err != nil {
		return err
	}

	p := engine.Project{
		ID:                  "prj-erp",
		ContractID:          contract.ID,
		Name:                "ERP Replacement",
		Type:                engine.FixedPrice,
		Status:              engine.StatusInProgress,
		RevenueMethod:       engine.ModelInput,
		Budget:              engine.NewAmount(150000),
		TotalEstimatedCosts: engine.NewAmount(100000),
		StartDate:           engine.NewTimePoint(2025, time.January, 1),
		EndDate:             engine.NewTimePoint(2025, time.June, 30),
	}
	if err := store.SaveProject(ctx, p); err != nil {
		return err
	}

	// Costs run well ahead of progress: by July the team has burned most of
	// the estimate with the build half done.
	months := []struct {
		date engine.TimePoint
		cost float64
	}{
		{engine.NewTimePoint(2025, time.January, 31), 18000},
		{engine.NewTimePoint(2025, time.February, 28), 21000},
		{engine.NewTimePoint(2025, time.March, 31), 24000},
		{engine.NewTimePoint(2025, time.April, 30), 22000},
		{engine.NewTimePoint(2025, time.May, 31), 20000},
		{engine.NewTimePoint(2025, time.June, 30), 19000},
	}
	for _, m := range months {
		err := store.AddWorkLog(ctx, engine.WorkLog{
			ID:         engine.WorkLogID(uuid.NewString()),
			ProjectID:  p.ID,
			Date:       m.date,
			Hours:      decimal.NewFromInt(200),
			CostAmount: engine.NewAmount(m.cost),
		})
		if err != nil {
			return err
		}
	}

	// One early invoice only, leaving most of the earned value unbilled.
	_, err := store.AddInvoice(ctx, engine.Invoice{
		ID:         engine.InvoiceID(uuid.NewString()),
		ProjectID:  p.ID,
		Date:       engine.NewTimePoint(2025, time.February, 15),
		BaseAmount: engine.NewAmount(40000),
		Status:     engine.InvoicePaid,
	})
	return err
}
