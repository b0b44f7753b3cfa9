package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the hand-written statements for the run history tables.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type runRow struct {
	ID           string
	StartedAt    string
	Source       string
	ItemCount    int64
	VendorCount  int64
	BoxCount     int64
	Amount       int64
	Tax          int64
	BudgetTotal  int64
	Valid        bool
	FindingCount int64
	ReviewCount  int64
}

const insertRun = `
INSERT INTO runs (id, started_at, source, item_count, vendor_count, box_count,
                  amount, tax, budget_total, valid, finding_count, review_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertRun(ctx context.Context, r runRow) error {
	_, err := q.db.ExecContext(ctx, insertRun,
		r.ID, r.StartedAt, r.Source, r.ItemCount, r.VendorCount, r.BoxCount,
		r.Amount, r.Tax, r.BudgetTotal, r.Valid, r.FindingCount, r.ReviewCount)
	return err
}

const selectRunColumns = `
SELECT id, started_at, source, item_count, vendor_count, box_count,
       amount, tax, budget_total, valid, finding_count, review_count
FROM runs`

func scanRun(s interface{ Scan(...any) error }) (runRow, error) {
	var r runRow
	err := s.Scan(&r.ID, &r.StartedAt, &r.Source, &r.ItemCount, &r.VendorCount, &r.BoxCount,
		&r.Amount, &r.Tax, &r.BudgetTotal, &r.Valid, &r.FindingCount, &r.ReviewCount)
	return r, err
}

func (q *Queries) GetRun(ctx context.Context, id string) (runRow, error) {
	return scanRun(q.db.QueryRowContext(ctx, selectRunColumns+` WHERE id = ?`, id))
}

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]runRow, error) {
	rows, err := q.db.QueryContext(ctx, selectRunColumns+` ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []runRow
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const insertPeriodTotal = `
INSERT INTO run_period_totals (run_id, position, label, month, total, item_count)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertPeriodTotal(ctx context.Context, runID string, pos int, label, month string, total, count int64) error {
	_, err := q.db.ExecContext(ctx, insertPeriodTotal, runID, pos, label, month, total, count)
	return err
}

type periodTotalRow struct {
	Label string
	Month string
	Total int64
	Count int64
}

func (q *Queries) ListPeriodTotals(ctx context.Context, runID string) ([]periodTotalRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT label, month, total, item_count FROM run_period_totals WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []periodTotalRow
	for rows.Next() {
		var r periodTotalRow
		if err := rows.Scan(&r.Label, &r.Month, &r.Total, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const insertFinding = `
INSERT INTO run_findings (run_id, position, kind, message, expected, actual)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertFinding(ctx context.Context, runID string, pos int, kind, message string, expected, actual sql.NullInt64) error {
	_, err := q.db.ExecContext(ctx, insertFinding, runID, pos, kind, message, expected, actual)
	return err
}

type findingRow struct {
	Kind     string
	Message  string
	Expected sql.NullInt64
	Actual   sql.NullInt64
}

func (q *Queries) ListFindings(ctx context.Context, runID string) ([]findingRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT kind, message, expected, actual FROM run_findings WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []findingRow
	for rows.Next() {
		var r findingRow
		if err := rows.Scan(&r.Kind, &r.Message, &r.Expected, &r.Actual); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) InsertReview(ctx context.Context, runID string, seq int, period, rationale string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO run_review (run_id, seq, period, rationale) VALUES (?, ?, ?, ?)`,
		runID, seq, period, rationale)
	return err
}

type reviewRow struct {
	Seq       int64
	Period    string
	Rationale string
}

func (q *Queries) ListReview(ctx context.Context, runID string) ([]reviewRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT seq, period, rationale FROM run_review WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []reviewRow
	for rows.Next() {
		var r reviewRow
		if err := rows.Scan(&r.Seq, &r.Period, &r.Rationale); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
