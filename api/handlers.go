/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements the REST API endpoints. Each handler takes one snapshot from the
  store, evaluates whatever the endpoint needs at a single as-of date, and
  renders DTOs. Handlers never write derived figures back: the store only
  changes through the explicit write endpoints (scenario loading, reset).

HANDLER PATTERN:
  1. Parse and validate query/path parameters
  2. Snapshot the store once
  3. Evaluate with the pure calculators
  4. Render DTOs with writeJSON / writeError

AS-OF DATES:
  Every read endpoint accepts ?as_of=YYYY-MM-DD and defaults to today. The
  date flows through the whole evaluation so EV, AC and PV always describe the
  same instant.
*/
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/revenue-engine/engine"
	"github.com/warp/revenue-engine/factory"
	"github.com/warp/revenue-engine/portfolio"
	"github.com/warp/revenue-engine/report"
)

// Store is the persistence surface the API needs: consistent snapshots for
// reads, plus the write paths scenario loading uses.
type Store interface {
	engine.SnapshotProvider
	SaveContract(ctx context.Context, c engine.Contract) error
	SaveProject(ctx context.Context, p engine.Project) error
	AddWorkLog(ctx context.Context, l engine.WorkLog) error
	AddInvoice(ctx context.Context, inv engine.Invoice) (engine.Amount, error)
	Reset(ctx context.Context) error
}

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	store   Store
	factory *factory.Factory
	logger  *zap.Logger
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, factory: factory.New(), logger: logger}
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CONTRACTS
// =============================================================================

// ListContracts returns every contract with per-contract recognized and
// billed totals rolled up from its projects.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	pf, asOf, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	dtos := make([]ContractDTO, 0, len(pf.Contracts))
	for _, c := range pf.Contracts {
		dto := ContractDTO{
			ID:     string(c.ID),
			Name:   c.Name,
			TCV:    c.TCV.Float64(),
			Status: string(c.Status),
		}
		if !c.StartDate.IsZero() {
			dto.StartDate = c.StartDate.String()
		}
		if !c.EndDate.IsZero() {
			dto.EndDate = c.EndDate.String()
		}
		recognized := engine.ZeroAmount()
		billed := engine.ZeroAmount()
		for _, p := range pf.ProjectsFor(c.ID) {
			st := portfolio.Evaluate(p, pf.WorkLogs, asOf)
			recognized = recognized.Add(st.Recognized)
			billed = billed.Add(st.Billed)
			dto.Projects++
		}
		dto.Recognized = recognized.Float64()
		dto.Billed = billed.Float64()
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PROJECTS
// =============================================================================

// ListProjects returns the evaluated status of every project at the as-of date.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	pf, asOf, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	statuses := portfolio.EvaluateAll(pf, asOf)
	dtos := make([]ProjectStatusDTO, 0, len(statuses))
	for _, st := range statuses {
		dtos = append(dtos, toStatusDTO(st))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProjectStatus returns the full derived status of one project.
func (h *Handler) GetProjectStatus(w http.ResponseWriter, r *http.Request) {
	pf, asOf, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	p := pf.Project(engine.ProjectID(chi.URLParam(r, "id")))
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found", engine.ErrProjectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toStatusDTO(portfolio.Evaluate(*p, pf.WorkLogs, asOf)))
}

// GetProjectAlerts returns the risk alerts for one project, sorted by severity.
func (h *Handler) GetProjectAlerts(w http.ResponseWriter, r *http.Request) {
	pf, asOf, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	p := pf.Project(engine.ProjectID(chi.URLParam(r, "id")))
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found", engine.ErrProjectNotFound)
		return
	}
	alerts := portfolio.AnalyzeRisks(*p, pf.WorkLogs, asOf)
	writeJSON(w, http.StatusOK, ProjectAlertsDTO{
		ProjectID: string(p.ID),
		Name:      p.Name,
		Alerts:    toAlertDTOs(alerts),
	})
}

// ListAlerts returns the portfolio-wide alert feed. Projects without alerts
// are omitted.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	pf, asOf, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	results := portfolio.AnalyzePortfolio(pf, asOf)
	dtos := make([]ProjectAlertsDTO, 0, len(results))
	for _, pa := range results {
		dtos = append(dtos, ProjectAlertsDTO{
			ProjectID: string(pa.ProjectID),
			Name:      pa.Name,
			Alerts:    toAlertDTOs(pa.Alerts),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REVENUE REPORT
// =============================================================================

// RevenueReport returns the time-bucketed revenue matrix.
//
// Query parameters:
//
//	granularity  monthly|quarterly|yearly (default monthly)
//	from, to     YYYY-MM-DD bounds (default: the current calendar year)
func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	pf, _, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	year := engine.Today().Year()
	from := engine.StartOfYear(year)
	to := engine.EndOfYear(year)

	if s := r.URL.Query().Get("from"); s != "" {
		tp, err := engine.ParseTimePoint(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date", err)
			return
		}
		from = tp
	}
	if s := r.URL.Query().Get("to"); s != "" {
		tp, err := engine.ParseTimePoint(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date", err)
			return
		}
		to = tp
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid range", engine.ErrInvalidPeriod)
		return
	}

	g := report.Granularity(r.URL.Query().Get("granularity"))
	buckets := report.Buckets(from, to, g)
	matrix := report.Build(pf, buckets)
	reportBuilds.Inc()
	writeJSON(w, http.StatusOK, toMatrixDTO(matrix))
}

// =============================================================================
// SCENARIOS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, 0, len(Scenarios))
	for _, s := range Scenarios {
		dtos = append(dtos, ScenarioDTO{Name: s.Name, Description: s.Description})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario resets the store and seeds the named demo portfolio.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	scenario, found := FindScenario(req.Name)
	if !found {
		writeError(w, http.StatusNotFound, "unknown scenario", nil)
		return
	}

	if err := h.store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset store", err)
		return
	}
	if err := scenario.Load(r.Context(), h.store); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scenario", err)
		return
	}

	h.logger.Info("scenario loaded", zap.String("scenario", scenario.Name))
	writeJSON(w, http.StatusOK, map[string]string{"loaded": scenario.Name})
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportPortfolio ingests a raw JSON record set through the factory,
// replacing all stored data. Recoverable record problems come back as
// warnings in the response; only undecodable JSON rejects the import.
func (h *Handler) ImportPortfolio(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	pf, warns, err := h.factory.ParsePortfolio(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record set", err)
		return
	}
	for _, warn := range warns {
		h.logger.Warn("record issue",
			zap.String("record", warn.Record),
			zap.String("field", warn.Field),
			zap.String("message", warn.Message),
		)
	}

	ctx := r.Context()
	if err := h.store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset store", err)
		return
	}
	for _, c := range pf.Contracts {
		if err := h.store.SaveContract(ctx, c); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save contract", err)
			return
		}
	}
	for _, p := range pf.Projects {
		// Billed totals are recomputed from the invoices below; the write
		// boundary owns that aggregate.
		p.BilledAmount = engine.ZeroAmount()
		if err := h.store.SaveProject(ctx, p); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save project", err)
			return
		}
	}
	for _, l := range pf.WorkLogs {
		if err := h.store.AddWorkLog(ctx, l); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save work log", err)
			return
		}
	}
	for _, inv := range pf.Invoices {
		if _, err := h.store.AddInvoice(ctx, inv); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save invoice", err)
			return
		}
	}

	h.logger.Info("portfolio imported",
		zap.Int("contracts", len(pf.Contracts)),
		zap.Int("projects", len(pf.Projects)),
		zap.Int("work_logs", len(pf.WorkLogs)),
		zap.Int("invoices", len(pf.Invoices)),
		zap.Int("warnings", len(warns)),
	)
	writeJSON(w, http.StatusOK, ImportResultDTO{
		Contracts: len(pf.Contracts),
		Projects:  len(pf.Projects),
		WorkLogs:  len(pf.WorkLogs),
		Invoices:  len(pf.Invoices),
		Warnings:  toWarningDTOs(warns),
	})
}

// Reset clears all stored data. Dev only.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset store", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

// snapshot reads the portfolio and the as-of date in one place. On failure it
// writes the error response and returns ok=false.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (*engine.Portfolio, engine.TimePoint, bool) {
	asOf := engine.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		tp, err := engine.ParseTimePoint(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of date", err)
			return nil, engine.TimePoint{}, false
		}
		asOf = tp
	}

	pf, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("snapshot failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read portfolio", err)
		return nil, engine.TimePoint{}, false
	}
	evaluations.Inc()
	return pf, asOf, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but note it.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
