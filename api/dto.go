/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the engine types.
  Amounts cross the boundary as float64: rounding and formatting are
  presentation concerns, so this is the one layer where decimal precision is
  allowed to end.
*/
package api

import (
	"github.com/warp/revenue-engine/engine"
	"github.com/warp/revenue-engine/factory"
	"github.com/warp/revenue-engine/portfolio"
	"github.com/warp/revenue-engine/report"
	"github.com/warp/revenue-engine/risk"
)

// =============================================================================
// PROJECT STATUS
// =============================================================================

type ProjectStatusDTO struct {
	ProjectID  string `json:"project_id"`
	ContractID string `json:"contract_id,omitempty"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Method     string `json:"method"`
	AsOf       string `json:"as_of"`

	Budget       float64 `json:"budget"`
	Recognized   float64 `json:"recognized"`
	ActualCost   float64 `json:"actual_cost"`
	PlannedValue float64 `json:"planned_value"`

	CPI  float64 `json:"cpi"`
	SPI  float64 `json:"spi"`
	TCPI float64 `json:"tcpi"`
	EAC  float64 `json:"eac"`
	VAC  float64 `json:"vac"`

	Billed   float64 `json:"billed"`
	WIP      float64 `json:"wip"`
	Deferred float64 `json:"deferred"`
}

func toStatusDTO(st portfolio.ProjectStatus) ProjectStatusDTO {
	return ProjectStatusDTO{
		ProjectID:    string(st.ProjectID),
		ContractID:   string(st.ContractID),
		Name:         st.Name,
		Type:         string(st.Type),
		Status:       string(st.Status),
		Method:       string(st.Method),
		AsOf:         st.AsOf.String(),
		Budget:       st.BAC.Float64(),
		Recognized:   st.Recognized.Float64(),
		ActualCost:   st.ActualCost.Float64(),
		PlannedValue: st.PV.Float64(),
		CPI:          st.CPI.InexactFloat64(),
		SPI:          st.SPI.InexactFloat64(),
		TCPI:         st.TCPI.InexactFloat64(),
		EAC:          st.EAC.Float64(),
		VAC:          st.VAC.Float64(),
		Billed:       st.Billed.Float64(),
		WIP:          st.WIP.Float64(),
		Deferred:     st.Deferred.Float64(),
	}
}

// =============================================================================
// CONTRACTS
// =============================================================================

type ContractDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TCV        float64 `json:"tcv"`
	StartDate  string  `json:"start_date,omitempty"`
	EndDate    string  `json:"end_date,omitempty"`
	Status     string  `json:"status"`
	Projects   int     `json:"projects"`
	Recognized float64 `json:"recognized"`
	Billed     float64 `json:"billed"`
}

// =============================================================================
// ALERTS
// =============================================================================

type AlertDTO struct {
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ProjectAlertsDTO struct {
	ProjectID string     `json:"project_id"`
	Name      string     `json:"name"`
	Alerts    []AlertDTO `json:"alerts"`
}

func toAlertDTOs(alerts []risk.Alert) []AlertDTO {
	dtos := make([]AlertDTO, 0, len(alerts))
	for _, a := range alerts {
		dtos = append(dtos, AlertDTO{
			Severity:    string(a.Severity),
			Category:    string(a.Category),
			Title:       a.Title,
			Description: a.Description,
		})
	}
	return dtos
}

// =============================================================================
// REVENUE MATRIX
// =============================================================================

type ProjectRowDTO struct {
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Cells     []float64 `json:"cells"`
	Total     float64   `json:"total"`
}

type ContractGroupDTO struct {
	ContractID string          `json:"contract_id,omitempty"`
	Name       string          `json:"name"`
	Cells      []float64       `json:"cells"`
	Total      float64         `json:"total"`
	Projects   []ProjectRowDTO `json:"projects"`
}

type MatrixDTO struct {
	Buckets    []string           `json:"buckets"`
	Contracts  []ContractGroupDTO `json:"contracts"`
	Unassigned *ContractGroupDTO  `json:"unassigned,omitempty"`
	GrandTotal []float64          `json:"grand_total"`
	Total      float64            `json:"total"`
}

func toMatrixDTO(m *report.Matrix) MatrixDTO {
	dto := MatrixDTO{
		Buckets:    make([]string, 0, len(m.Buckets)),
		GrandTotal: toFloats(m.GrandTotal),
		Total:      m.Total.Float64(),
	}
	for _, b := range m.Buckets {
		dto.Buckets = append(dto.Buckets, b.Label)
	}
	for _, g := range m.Contracts {
		dto.Contracts = append(dto.Contracts, toGroupDTO(g))
	}
	if m.Unassigned != nil {
		g := toGroupDTO(*m.Unassigned)
		dto.Unassigned = &g
	}
	return dto
}

func toGroupDTO(g report.ContractGroup) ContractGroupDTO {
	dto := ContractGroupDTO{
		ContractID: string(g.ContractID),
		Name:       g.Name,
		Cells:      toFloats(g.Cells),
		Total:      g.Total.Float64(),
	}
	for _, row := range g.Projects {
		dto.Projects = append(dto.Projects, ProjectRowDTO{
			ProjectID: string(row.ProjectID),
			Name:      row.Name,
			Cells:     toFloats(row.Cells),
			Total:     row.Total.Float64(),
		})
	}
	return dto
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

type ScenarioDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	Name string `json:"name"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// IMPORT
// =============================================================================

type WarningDTO struct {
	Record  string `json:"record"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ImportResultDTO struct {
	Contracts int          `json:"contracts"`
	Projects  int          `json:"projects"`
	WorkLogs  int          `json:"work_logs"`
	Invoices  int          `json:"invoices"`
	Warnings  []WarningDTO `json:"warnings"`
}

func toWarningDTOs(warns []factory.Warning) []WarningDTO {
	dtos := make([]WarningDTO, 0, len(warns))
	for _, w := range warns {
		dtos = append(dtos, WarningDTO{Record: w.Record, Field: w.Field, Message: w.Message})
	}
	return dtos
}

func toFloats(amounts []engine.Amount) []float64 {
	out := make([]float64, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, a.Float64())
	}
	return out
}
