/*
snapshot.go - Entity snapshot contracts

PURPOSE:
  Defines how the engine receives its inputs. All calculations run against a
  Portfolio: a self-consistent, immutable-for-the-calculation view of every
  contract, project, work log, and invoice. A provider hands out the whole
  portfolio in one call so that derived figures (EV, AC, PV and the indices
  built from them) always come from a single moment - never EV from one read
  mixed with AC from another.

OWNERSHIP:
  Entity lifecycle belongs to the provider. The engine never writes; all
  corrections and updates happen on the provider's write paths, and derived
  figures like the billed total are returned to the caller to write back.

IMPLEMENTATIONS:
  - store/sqlite: production store backed by SQLite
  - engine/store: in-memory provider for tests and demos
*/
package engine

import "context"

// =============================================================================
// SNAPSHOT PROVIDER
// =============================================================================

// SnapshotProvider supplies a consistent portfolio snapshot.
//
// INVARIANTS required of implementations:
//   - One call, one moment: all entities in the returned Portfolio reflect
//     the same state; no partially applied writes.
//   - The returned Portfolio is owned by the caller; later writes to the
//     provider must not mutate it.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*Portfolio, error)
}

// =============================================================================
// PORTFOLIO - One consistent view of all entities
// =============================================================================

type Portfolio struct {
	Contracts []Contract
	Projects  []Project
	WorkLogs  []WorkLog
	Invoices  []Invoice
}

// Project returns the project with the given ID, or nil.
func (pf *Portfolio) Project(id ProjectID) *Project {
	for i := range pf.Projects {
		if pf.Projects[i].ID == id {
			return &pf.Projects[i]
		}
	}
	return nil
}

// Contract returns the contract with the given ID, or nil.
func (pf *Portfolio) Contract(id ContractID) *Contract {
	for i := range pf.Contracts {
		if pf.Contracts[i].ID == id {
			return &pf.Contracts[i]
		}
	}
	return nil
}

// LogsFor returns all work logs attributed to the project, in input order.
func (pf *Portfolio) LogsFor(id ProjectID) []WorkLog {
	var logs []WorkLog
	for _, l := range pf.WorkLogs {
		if l.ProjectID == id {
			logs = append(logs, l)
		}
	}
	return logs
}

// InvoicesFor returns all invoices attributed to the project.
func (pf *Portfolio) InvoicesFor(id ProjectID) []Invoice {
	var invs []Invoice
	for _, inv := range pf.Invoices {
		if inv.ProjectID == id {
			invs = append(invs, inv)
		}
	}
	return invs
}

// ProjectsFor returns all projects linked to the contract.
func (pf *Portfolio) ProjectsFor(id ContractID) []Project {
	var projects []Project
	for _, p := range pf.Projects {
		if p.ContractID == id {
			projects = append(projects, p)
		}
	}
	return projects
}

// UnassignedProjects returns projects with no contract reference. They are
// grouped separately in roll-ups, never silently dropped.
func (pf *Portfolio) UnassignedProjects() []Project {
	var projects []Project
	for _, p := range pf.Projects {
		if p.ContractID == "" {
			projects = append(projects, p)
		}
	}
	return projects
}
