/*
Package sqlite provides a SQLite-backed snapshot provider.

PURPOSE:
  Persists the entity tables the analytics engine reads (contracts, projects,
  milestones, budget curves, work logs, invoices) and implements
  engine.SnapshotProvider. The same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

SNAPSHOT CONSISTENCY:
  Snapshot() reads every table inside one read transaction, so the returned
  portfolio reflects a single moment. Derived indices computed from it can
  never mix entity states.

WRITE BOUNDARY:
  Writes exist for ingestion and demo seeding. The engine never calls them.
  AddInvoice returns the recomputed billed total (Sent/Paid only) and writes
  it back onto the project row - the imperative side-effect the engine
  refuses to perform lives here, at the boundary.

AMOUNT ENCODING:
  Currency values are stored as decimal strings, never floats, so figures
  survive a round-trip unchanged.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block, one
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/portfolio.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()
  pf, err := store.Snapshot(ctx)
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/engine"
)

// Store implements engine.SnapshotProvider backed by SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tcv TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		status TEXT NOT NULL DEFAULT 'active'
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		contract_id TEXT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'in_progress',
		revenue_method TEXT NOT NULL DEFAULT '',
		budget TEXT NOT NULL,
		total_estimated_costs TEXT,
		linear_monthly_amount TEXT,
		billed_amount TEXT NOT NULL DEFAULT '0',
		recognized_manual TEXT NOT NULL DEFAULT '0',
		start_date TEXT,
		end_date TEXT,
		contingency_reserve TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_projects_contract
		ON projects(contract_id);

	CREATE TABLE IF NOT EXISTS milestones (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT,
		percentage TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		target_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_milestones_project
		ON milestones(project_id);

	CREATE TABLE IF NOT EXISTS budget_entries (
		project_id TEXT NOT NULL,
		phase_id TEXT NOT NULL DEFAULT '',
		month TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (project_id, phase_id, month)
	);

	CREATE TABLE IF NOT EXISTS work_logs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		hours TEXT NOT NULL DEFAULT '0',
		cost_amount TEXT NOT NULL DEFAULT '0'
	);

	-- Hot path: bucketed aggregation filters by project and date range
	CREATE INDEX IF NOT EXISTS idx_work_logs_project_date
		ON work_logs(project_id, date);

	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		date TEXT,
		base_amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft'
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_project
		ON invoices(project_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT (engine.SnapshotProvider interface)
// =============================================================================

// Snapshot reads all entities inside one read transaction.
func (s *Store) Snapshot(ctx context.Context) (*engine.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	pf := &engine.Portfolio{}
	if pf.Contracts, err = loadContracts(ctx, tx); err != nil {
		return nil, err
	}
	if pf.Projects, err = loadProjects(ctx, tx); err != nil {
		return nil, err
	}
	if pf.WorkLogs, err = loadWorkLogs(ctx, tx); err != nil {
		return nil, err
	}
	if pf.Invoices, err = loadInvoices(ctx, tx); err != nil {
		return nil, err
	}
	return pf, nil
}

func loadContracts(ctx context.Context, tx *sql.Tx) ([]engine.Contract, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, tcv, start_date, end_date, status
		FROM contracts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []engine.Contract
	for rows.Next() {
		var c engine.Contract
		var tcv string
		var start, end sql.NullString
		var status string
		if err := rows.Scan(&c.ID, &c.Name, &tcv, &start, &end, &status); err != nil {
			return nil, err
		}
		c.TCV = engine.MustParseAmount(tcv)
		c.StartDate = scanDate(start)
		c.EndDate = scanDate(end)
		c.Status = engine.ContractStatus(status)
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func loadProjects(ctx context.Context, tx *sql.Tx) ([]engine.Project, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, contract_id, name, type, status, revenue_method, budget,
		       total_estimated_costs, linear_monthly_amount, billed_amount,
		       recognized_manual, start_date, end_date, contingency_reserve
		FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []engine.Project
	for rows.Next() {
		var p engine.Project
		var contractID, est, monthly, start, end, reserve sql.NullString
		var budget, billed, manual string
		if err := rows.Scan(&p.ID, &contractID, &p.Name, &p.Type, &p.Status,
			&p.RevenueMethod, &budget, &est, &monthly, &billed, &manual,
			&start, &end, &reserve); err != nil {
			return nil, err
		}
		p.ContractID = engine.ContractID(contractID.String)
		p.Budget = engine.MustParseAmount(budget)
		p.BilledAmount = engine.MustParseAmount(billed)
		p.RecognizedManual = engine.MustParseAmount(manual)
		if est.Valid {
			p.TotalEstimatedCosts = engine.MustParseAmount(est.String)
		}
		if monthly.Valid {
			p.LinearMonthlyAmount = engine.MustParseAmount(monthly.String)
		}
		if reserve.Valid {
			if r, err := decimal.NewFromString(reserve.String); err == nil {
				p.ContingencyReserve = &r
			}
		}
		p.StartDate = scanDate(start)
		p.EndDate = scanDate(end)

		if p.Milestones, err = loadMilestones(ctx, tx, p.ID); err != nil {
			return nil, err
		}
		if p.MonthlyBudget, err = loadBudgetEntries(ctx, tx, p.ID); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func loadMilestones(ctx context.Context, tx *sql.Tx, projectID engine.ProjectID) ([]engine.Milestone, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, percentage, completed, target_date
		FROM milestones WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []engine.Milestone
	for rows.Next() {
		var m engine.Milestone
		var name, target sql.NullString
		var pct string
		if err := rows.Scan(&m.ID, &name, &pct, &m.Completed, &target); err != nil {
			return nil, err
		}
		m.Name = name.String
		m.Percentage, _ = decimal.NewFromString(pct)
		m.TargetDate = scanDate(target)
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func loadBudgetEntries(ctx context.Context, tx *sql.Tx, projectID engine.ProjectID) ([]engine.BudgetEntry, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT phase_id, month, amount
		FROM budget_entries WHERE project_id = ? ORDER BY month`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []engine.BudgetEntry
	for rows.Next() {
		var e engine.BudgetEntry
		var month, amount string
		if err := rows.Scan(&e.PhaseID, &month, &amount); err != nil {
			return nil, err
		}
		if tp, err := engine.ParseTimePoint(month); err == nil {
			e.Month = tp.MonthStart()
		}
		e.Amount = engine.MustParseAmount(amount)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func loadWorkLogs(ctx context.Context, tx *sql.Tx) ([]engine.WorkLog, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, project_id, date, amount, hours, cost_amount
		FROM work_logs ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []engine.WorkLog
	for rows.Next() {
		var l engine.WorkLog
		var date, amount, hours, cost string
		if err := rows.Scan(&l.ID, &l.ProjectID, &date, &amount, &hours, &cost); err != nil {
			return nil, err
		}
		// A bad date in the table stays a zero TimePoint; downstream
		// aggregation excludes it rather than bucketing it at the epoch.
		l.Date = scanDate(sql.NullString{String: date, Valid: date != ""})
		l.Amount = engine.MustParseAmount(amount)
		l.Hours, _ = decimal.NewFromString(hours)
		l.CostAmount = engine.MustParseAmount(cost)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func loadInvoices(ctx context.Context, tx *sql.Tx) ([]engine.Invoice, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, project_id, date, base_amount, status
		FROM invoices ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []engine.Invoice
	for rows.Next() {
		var inv engine.Invoice
		var date sql.NullString
		var amount, status string
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &date, &amount, &status); err != nil {
			return nil, err
		}
		inv.Date = scanDate(date)
		inv.BaseAmount = engine.MustParseAmount(amount)
		inv.Status = engine.InvoiceStatus(status)
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanDate(s sql.NullString) engine.TimePoint {
	if !s.Valid || s.String == "" {
		return engine.TimePoint{}
	}
	tp, err := engine.ParseTimePoint(s.String)
	if err != nil {
		return engine.TimePoint{}
	}
	return tp
}

// =============================================================================
// WRITE BOUNDARY - ingestion and seeding
// =============================================================================

// SaveContract inserts or replaces a contract.
func (s *Store) SaveContract(ctx context.Context, c engine.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO contracts (id, name, tcv, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.TCV.String(), dateArg(c.StartDate), dateArg(c.EndDate), string(c.Status))
	return err
}

// SaveProject inserts or replaces a project with its milestones and budget
// curve, atomically.
func (s *Store) SaveProject(ctx context.Context, p engine.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var reserve any
	if p.ContingencyReserve != nil {
		reserve = p.ContingencyReserve.String()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO projects
		(id, contract_id, name, type, status, revenue_method, budget,
		 total_estimated_costs, linear_monthly_amount, billed_amount,
		 recognized_manual, start_date, end_date, contingency_reserve)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, nullIfEmpty(string(p.ContractID)), p.Name, string(p.Type), string(p.Status),
		string(p.RevenueMethod), p.Budget.String(),
		amountArg(p.TotalEstimatedCosts), amountArg(p.LinearMonthlyAmount),
		p.BilledAmount.String(), p.RecognizedManual.String(),
		dateArg(p.StartDate), dateArg(p.EndDate), reserve)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM milestones WHERE project_id = ?`, p.ID); err != nil {
		return err
	}
	for _, m := range p.Milestones {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO milestones (id, project_id, name, percentage, completed, target_date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, p.ID, m.Name, m.Percentage.String(), m.Completed, dateArg(m.TargetDate)); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_entries WHERE project_id = ?`, p.ID); err != nil {
		return err
	}
	for _, e := range p.MonthlyBudget {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO budget_entries (project_id, phase_id, month, amount)
			VALUES (?, ?, ?, ?)`,
			p.ID, e.PhaseID, e.Month.String(), e.Amount.String()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AddWorkLog appends one activity entry.
func (s *Store) AddWorkLog(ctx context.Context, l engine.WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_logs (id, project_id, date, amount, hours, cost_amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.ProjectID, l.Date.String(), l.Amount.String(), l.Hours.String(), l.CostAmount.String())
	return err
}

// AddInvoice appends an invoice and writes the recomputed billed total
// (Sent/Paid only) back onto the project row. Returns the new total.
func (s *Store) AddInvoice(ctx context.Context, inv engine.Invoice) (engine.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.Amount{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (id, project_id, date, base_amount, status)
		VALUES (?, ?, ?, ?, ?)`,
		inv.ID, inv.ProjectID, dateArg(inv.Date), inv.BaseAmount.String(), string(inv.Status))
	if err != nil {
		return engine.Amount{}, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, project_id, date, base_amount, status
		FROM invoices WHERE project_id = ?`, inv.ProjectID)
	if err != nil {
		return engine.Amount{}, err
	}
	var invoices []engine.Invoice
	for rows.Next() {
		var i engine.Invoice
		var date sql.NullString
		var amount, status string
		if err := rows.Scan(&i.ID, &i.ProjectID, &date, &amount, &status); err != nil {
			rows.Close()
			return engine.Amount{}, err
		}
		i.BaseAmount = engine.MustParseAmount(amount)
		i.Status = engine.InvoiceStatus(status)
		invoices = append(invoices, i)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return engine.Amount{}, err
	}

	billed := billing.BilledTotal(invoices)
	if _, err := tx.ExecContext(ctx, `
		UPDATE projects SET billed_amount = ? WHERE id = ?`,
		billed.String(), inv.ProjectID); err != nil {
		return engine.Amount{}, err
	}

	return billed, tx.Commit()
}

// Reset drops all rows. Used by demo scenario loading.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"contracts", "projects", "milestones", "budget_entries", "work_logs", "invoices"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func dateArg(tp engine.TimePoint) any {
	if tp.IsZero() {
		return nil
	}
	return tp.String()
}

func amountArg(a engine.Amount) any {
	if a.IsZero() {
		return nil
	}
	return a.String()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
