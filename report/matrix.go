package report

import (
	"github.com/warp/revenue-engine/engine"
)

// =============================================================================
// REVENUE MATRIX - Per-period sums, rolled up project -> contract -> portfolio
// =============================================================================

// ProjectRow holds one project's revenue per bucket plus its row total.
type ProjectRow struct {
	ProjectID engine.ProjectID
	Name      string
	Cells     []engine.Amount
	Total     engine.Amount
}

// ContractGroup holds a contract's roll-up and its child project rows. Cells
// are the sums of the children's cells, so group and rows can never drift.
type ContractGroup struct {
	ContractID engine.ContractID
	Name       string
	Cells      []engine.Amount
	Total      engine.Amount
	Projects   []ProjectRow
}

// Matrix is the full bucketed revenue report.
type Matrix struct {
	Buckets    []Bucket
	Contracts  []ContractGroup
	Unassigned *ContractGroup // projects without a contract; nil when none
	GrandTotal []engine.Amount
	Total      engine.Amount
}

// Build computes the revenue matrix for a portfolio snapshot over the given
// buckets. Work logs with a zero (unparseable) date are excluded; they are
// never treated as epoch-dated activity.
func Build(pf *engine.Portfolio, buckets []Bucket) *Matrix {
	byProject := make(map[engine.ProjectID][]engine.WorkLog, len(pf.Projects))
	for _, l := range pf.WorkLogs {
		if l.Date.IsZero() {
			continue
		}
		byProject[l.ProjectID] = append(byProject[l.ProjectID], l)
	}

	m := &Matrix{
		Buckets:    buckets,
		GrandTotal: zeroCells(len(buckets)),
		Total:      engine.ZeroAmount(),
	}

	for _, c := range pf.Contracts {
		group := buildGroup(engine.ContractID(c.ID), c.Name, pf.ProjectsFor(c.ID), byProject, buckets)
		m.addToGrandTotal(group)
		m.Contracts = append(m.Contracts, group)
	}

	if unassigned := pf.UnassignedProjects(); len(unassigned) > 0 {
		group := buildGroup("", "unassigned", unassigned, byProject, buckets)
		m.addToGrandTotal(group)
		m.Unassigned = &group
	}

	return m
}

func (m *Matrix) addToGrandTotal(g ContractGroup) {
	for i := range m.GrandTotal {
		m.GrandTotal[i] = m.GrandTotal[i].Add(g.Cells[i])
	}
	m.Total = m.Total.Add(g.Total)
}

// buildGroup computes project rows and sums them into the group. The group
// cells are derived from the rows, not recomputed from logs.
func buildGroup(
	id engine.ContractID,
	name string,
	projects []engine.Project,
	byProject map[engine.ProjectID][]engine.WorkLog,
	buckets []Bucket,
) ContractGroup {
	group := ContractGroup{
		ContractID: id,
		Name:       name,
		Cells:      zeroCells(len(buckets)),
		Total:      engine.ZeroAmount(),
	}

	for _, p := range projects {
		row := buildRow(p, byProject[p.ID], buckets)
		for i := range group.Cells {
			group.Cells[i] = group.Cells[i].Add(row.Cells[i])
		}
		group.Total = group.Total.Add(row.Total)
		group.Projects = append(group.Projects, row)
	}
	return group
}

func buildRow(p engine.Project, logs []engine.WorkLog, buckets []Bucket) ProjectRow {
	row := ProjectRow{
		ProjectID: p.ID,
		Name:      p.Name,
		Cells:     zeroCells(len(buckets)),
		Total:     engine.ZeroAmount(),
	}
	for i, b := range buckets {
		for _, l := range logs {
			if b.Period.Contains(l.Date) {
				row.Cells[i] = row.Cells[i].Add(l.Amount)
			}
		}
		row.Total = row.Total.Add(row.Cells[i])
	}
	return row
}

func zeroCells(n int) []engine.Amount {
	cells := make([]engine.Amount, n)
	for i := range cells {
		cells[i] = engine.ZeroAmount()
	}
	return cells
}
