package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/revenue-engine/api"
	"github.com/warp/revenue-engine/engine"
	"github.com/warp/revenue-engine/engine/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// testStore adapts the in-memory provider to the API's write surface.
type testStore struct {
	*store.Memory
}

func (s *testStore) SaveContract(_ context.Context, c engine.Contract) error {
	s.PutContract(c)
	return nil
}

func (s *testStore) SaveProject(_ context.Context, p engine.Project) error {
	s.PutProject(p)
	return nil
}

func (s *testStore) AddWorkLog(_ context.Context, l engine.WorkLog) error {
	s.Memory.AddWorkLog(l)
	return nil
}

func (s *testStore) AddInvoice(_ context.Context, inv engine.Invoice) (engine.Amount, error) {
	total := s.Memory.AddInvoice(inv)
	s.SetBilled(inv.ProjectID, total)
	return total, nil
}

func (s *testStore) Reset(_ context.Context) error {
	s.Memory.Reset()
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *testStore) {
	t.Helper()
	ts := &testStore{Memory: store.NewMemory()}
	h := api.NewHandler(ts, zap.NewNop())
	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, ts
}

func seedProject(ts *testStore) {
	ts.PutContract(engine.Contract{ID: "con-1", Name: "Acme MSA", TCV: engine.NewAmount(300000), Status: engine.ContractActive})
	ts.PutProject(engine.Project{
		ID:                  "prj-1",
		ContractID:          "con-1",
		Name:                "Build",
		Type:                engine.FixedPrice,
		Status:              engine.StatusInProgress,
		RevenueMethod:       engine.ModelInput,
		Budget:              engine.NewAmount(200000),
		TotalEstimatedCosts: engine.NewAmount(100000),
		StartDate:           engine.NewTimePoint(2025, time.January, 1),
		EndDate:             engine.NewTimePoint(2025, time.December, 31),
	})
	ts.Memory.AddWorkLog(engine.WorkLog{
		ID: "l1", ProjectID: "prj-1",
		Date:       engine.NewTimePoint(2025, time.March, 1),
		Amount:     engine.NewAmount(20000),
		CostAmount: engine.NewAmount(50000),
	})
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// =============================================================================
// ENDPOINTS
// =============================================================================

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	var body map[string]string
	code := getJSON(t, srv.URL+"/api/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetProjectStatus(t *testing.T) {
	// GIVEN: An input-method project, 50,000 spent against a 100,000 estimate
	// WHEN: Requesting its status as of mid-year
	// THEN: Recognized revenue is half the 200,000 budget and CPI is 2

	srv, ts := newTestServer(t)
	seedProject(ts)

	var st api.ProjectStatusDTO
	code := getJSON(t, srv.URL+"/api/projects/prj-1/status?as_of=2025-07-02", &st)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "prj-1", st.ProjectID)
	assert.Equal(t, "input", st.Method)
	assert.Equal(t, "2025-07-02", st.AsOf)
	assert.InDelta(t, 100000, st.Recognized, 0.01)
	assert.InDelta(t, 50000, st.ActualCost, 0.01)
	assert.InDelta(t, 2.0, st.CPI, 0.0001)
	assert.InDelta(t, 100000, st.WIP, 0.01) // nothing billed yet
}

func TestGetProjectStatus_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	var errResp api.ErrorResponse
	code := getJSON(t, srv.URL+"/api/projects/nope/status", &errResp)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, errResp.Error)
}

func TestListProjects_BadAsOfRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	code := getJSON(t, srv.URL+"/api/projects/?as_of=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListContracts_RollsUpProjects(t *testing.T) {
	srv, ts := newTestServer(t)
	seedProject(ts)

	var contracts []api.ContractDTO
	code := getJSON(t, srv.URL+"/api/contracts?as_of=2025-07-02", &contracts)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, contracts, 1)

	assert.Equal(t, "con-1", contracts[0].ID)
	assert.Equal(t, 1, contracts[0].Projects)
	assert.InDelta(t, 100000, contracts[0].Recognized, 0.01)
}

func TestGetProjectAlerts(t *testing.T) {
	// GIVEN: A project with everything earned and nothing billed
	// WHEN: Requesting its alerts
	// THEN: At least the high-WIP warning is present

	srv, ts := newTestServer(t)
	seedProject(ts)

	var pa api.ProjectAlertsDTO
	code := getJSON(t, srv.URL+"/api/projects/prj-1/alerts?as_of=2025-07-02", &pa)
	require.Equal(t, http.StatusOK, code)

	found := false
	for _, a := range pa.Alerts {
		if a.Category == "financial" && a.Severity == "warning" {
			found = true
		}
	}
	assert.True(t, found, "expected a WIP warning, got %+v", pa.Alerts)
}

func TestRevenueReport(t *testing.T) {
	srv, ts := newTestServer(t)
	seedProject(ts)

	var m api.MatrixDTO
	code := getJSON(t, srv.URL+"/api/reports/revenue?granularity=quarterly&from=2025-01-01&to=2025-06-30", &m)
	require.Equal(t, http.StatusOK, code)

	require.Equal(t, []string{"2025-Q1", "2025-Q2"}, m.Buckets)
	require.Len(t, m.Contracts, 1)
	assert.InDelta(t, 20000, m.Contracts[0].Cells[0], 0.01) // March log in Q1
	assert.InDelta(t, 20000, m.Total, 0.01)
}

func TestRevenueReport_InvertedRangeRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	code := getJSON(t, srv.URL+"/api/reports/revenue?from=2025-06-01&to=2025-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestLoadScenario_SeedsThePortfolio(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(api.LoadScenarioRequest{Name: "consulting-portfolio"})
	resp, err := http.Post(srv.URL+"/api/scenarios/load", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var projects []api.ProjectStatusDTO
	code := getJSON(t, srv.URL+"/api/projects/?as_of=2025-07-01", &projects)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, projects, 4)

	// The demo's billed totals come through the write boundary: the draft
	// invoice must not have moved anything.
	for _, p := range projects {
		if p.ProjectID == "prj-advisory" {
			assert.InDelta(t, 0, p.Billed, 0.01)
		}
	}
}

func TestLoadScenario_UnknownName(t *testing.T) {
	srv, _ := newTestServer(t)
	body, _ := json.Marshal(api.LoadScenarioRequest{Name: "nope"})
	resp, err := http.Post(srv.URL+"/api/scenarios/load", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImportPortfolio(t *testing.T) {
	// GIVEN: A record set with one recoverable problem (a mistyped invoice
	//        status)
	// WHEN: Importing
	// THEN: Everything is ingested, the warning is reported, and the suspect
	//       invoice is treated as draft so the billed total stays clean

	srv, _ := newTestServer(t)

	raw := `{
		"contracts": [{"id": "con-1", "name": "Deal", "tcv": 100000}],
		"projects": [{"id": "prj-1", "contract_id": "con-1", "name": "Build", "type": "time_and_materials", "budget": 100000}],
		"work_logs": [{"id": "l1", "project_id": "prj-1", "date": "2025-03-01", "amount": 8000, "cost_amount": 5000}],
		"invoices": [
			{"id": "i1", "project_id": "prj-1", "date": "2025-03-31", "base_amount": 8000, "status": "payed"},
			{"id": "i2", "project_id": "prj-1", "date": "2025-04-30", "base_amount": 3000, "status": "sent"}
		]
	}`
	resp, err := http.Post(srv.URL+"/api/import", "application/json", bytes.NewReader([]byte(raw)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result api.ImportResultDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Contracts)
	assert.Equal(t, 1, result.Projects)
	assert.Equal(t, 1, result.WorkLogs)
	assert.Equal(t, 2, result.Invoices)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "status", result.Warnings[0].Field)

	var st api.ProjectStatusDTO
	code := getJSON(t, srv.URL+"/api/projects/prj-1/status?as_of=2025-06-01", &st)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 3000, st.Billed, 0.01, "only the sent invoice counts")
}

func TestImportPortfolio_UndecodableJSONRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/import", "application/json", bytes.NewReader([]byte(`{"projects": [`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListScenarios(t *testing.T) {
	srv, _ := newTestServer(t)
	var scenarios []api.ScenarioDTO
	code := getJSON(t, srv.URL+"/api/scenarios/", &scenarios)
	require.Equal(t, http.StatusOK, code)
	assert.GreaterOrEqual(t, len(scenarios), 2)
}
