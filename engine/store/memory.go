// Package store provides SnapshotProvider implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/revenue-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	contracts []engine.Contract
	projects  []engine.Project
	workLogs  []engine.WorkLog
	invoices  []engine.Invoice
}

func NewMemory() *Memory {
	return &Memory{}
}

// Snapshot returns a consistent copy of all entities. The copy is owned by
// the caller; later writes to the store do not affect it.
func (m *Memory) Snapshot(_ context.Context) (*engine.Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pf := &engine.Portfolio{
		Contracts: make([]engine.Contract, len(m.contracts)),
		Projects:  make([]engine.Project, len(m.projects)),
		WorkLogs:  make([]engine.WorkLog, len(m.workLogs)),
		Invoices:  make([]engine.Invoice, len(m.invoices)),
	}
	copy(pf.Contracts, m.contracts)
	copy(pf.WorkLogs, m.workLogs)
	copy(pf.Invoices, m.invoices)
	for i, p := range m.projects {
		pf.Projects[i] = copyProject(p)
	}
	return pf, nil
}

func (m *Memory) PutContract(c engine.Contract) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.contracts {
		if m.contracts[i].ID == c.ID {
			m.contracts[i] = c
			return
		}
	}
	m.contracts = append(m.contracts, c)
}

func (m *Memory) PutProject(p engine.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projects[i] = copyProject(p)
			return
		}
	}
	m.projects = append(m.projects, copyProject(p))
}

func (m *Memory) AddWorkLog(l engine.WorkLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workLogs = append(m.workLogs, l)
}

// AddInvoice records the invoice and returns the new billed total for the
// project, counting only Sent and Paid invoices. The caller writes the total
// back onto the project record; the store never does it implicitly.
func (m *Memory) AddInvoice(inv engine.Invoice) engine.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices = append(m.invoices, inv)

	billed := engine.ZeroAmount()
	for _, i := range m.invoices {
		if i.ProjectID == inv.ProjectID && i.Billable() {
			billed = billed.Add(i.BaseAmount)
		}
	}
	return billed
}

// SetBilled updates the pre-aggregated billed amount on a project.
func (m *Memory) SetBilled(id engine.ProjectID, billed engine.Amount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects[i].BilledAmount = billed
			return
		}
	}
}

// Reset drops all entities.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts = nil
	m.projects = nil
	m.workLogs = nil
	m.invoices = nil
}

// copyProject deep-copies the slices and pointer fields so snapshots stay
// isolated from later writes.
func copyProject(p engine.Project) engine.Project {
	cp := p
	if len(p.Milestones) > 0 {
		cp.Milestones = make([]engine.Milestone, len(p.Milestones))
		copy(cp.Milestones, p.Milestones)
	}
	if len(p.MonthlyBudget) > 0 {
		cp.MonthlyBudget = make([]engine.BudgetEntry, len(p.MonthlyBudget))
		copy(cp.MonthlyBudget, p.MonthlyBudget)
	}
	if p.ContingencyReserve != nil {
		r := *p.ContingencyReserve
		cp.ContingencyReserve = &r
	}
	return cp
}
