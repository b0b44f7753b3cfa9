// Package storage keeps a history of reconciliation runs in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"genka/internal/core"
	"genka/internal/ledger"
	"genka/internal/validate"

	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

// Run is the summary row of one reconciliation run.
type Run struct {
	ID           string
	StartedAt    time.Time
	Source       string
	Items        int
	Vendors      int
	Boxes        int
	Amount       int64
	Tax          int64
	BudgetTotal  int64
	Valid        bool
	FindingCount int
	ReviewCount  int
}

// RunRecord is a run with its period totals, findings and review list.
type RunRecord struct {
	Run
	Totals   []core.PeriodTotal
	Findings []validate.Finding
	Review   []ledger.ReviewEntry
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("Run history schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{db: db, queries: NewQueries(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores rec in one transaction and returns its id. A new id is
// generated when rec.ID is empty.
func (r *SQLiteRepository) SaveRun(ctx context.Context, rec RunRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	err = q.InsertRun(ctx, runRow{
		ID:           rec.ID,
		StartedAt:    rec.StartedAt.UTC().Format(time.RFC3339Nano),
		Source:       rec.Source,
		ItemCount:    int64(rec.Items),
		VendorCount:  int64(rec.Vendors),
		BoxCount:     int64(rec.Boxes),
		Amount:       rec.Amount,
		Tax:          rec.Tax,
		BudgetTotal:  rec.BudgetTotal,
		Valid:        rec.Valid,
		FindingCount: int64(len(rec.Findings)),
		ReviewCount:  int64(len(rec.Review)),
	})
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	for i, t := range rec.Totals {
		if err := q.InsertPeriodTotal(ctx, rec.ID, i, t.Period.Label, t.Period.Month, t.Total.Yen, int64(t.Count)); err != nil {
			return "", fmt.Errorf("insert period total %s: %w", t.Period.Label, err)
		}
	}
	for i, f := range rec.Findings {
		if err := q.InsertFinding(ctx, rec.ID, i, string(f.Kind), f.Message, nullInt(f.Expected), nullInt(f.Actual)); err != nil {
			return "", fmt.Errorf("insert finding: %w", err)
		}
	}
	for _, e := range rec.Review {
		if err := q.InsertReview(ctx, rec.ID, e.Seq, e.Period, e.Rationale); err != nil {
			return "", fmt.Errorf("insert review entry %d: %w", e.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}

	slog.InfoContext(ctx, "Run saved to SQLite",
		"run_id", rec.ID,
		"items", rec.Items,
		"findings", len(rec.Findings),
		"review", len(rec.Review))
	return rec.ID, nil
}

// GetRun loads a run with all of its children.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (RunRecord, error) {
	row, err := r.queries.GetRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrRunNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	run, err := toRun(row)
	if err != nil {
		return RunRecord{}, err
	}
	rec := RunRecord{Run: run}

	totals, err := r.queries.ListPeriodTotals(ctx, id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("list period totals: %w", err)
	}
	for _, t := range totals {
		rec.Totals = append(rec.Totals, core.PeriodTotal{
			Period: core.Period{Label: t.Label, Month: t.Month},
			Total:  core.Money{Yen: t.Total},
			Count:  int(t.Count),
		})
	}

	findings, err := r.queries.ListFindings(ctx, id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("list findings: %w", err)
	}
	for _, f := range findings {
		rec.Findings = append(rec.Findings, validate.Finding{
			Kind:     validate.Kind(f.Kind),
			Message:  f.Message,
			Expected: intPtr(f.Expected),
			Actual:   intPtr(f.Actual),
		})
	}

	review, err := r.queries.ListReview(ctx, id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("list review: %w", err)
	}
	for _, e := range review {
		rec.Review = append(rec.Review, ledger.ReviewEntry{Seq: int(e.Seq), Period: e.Period, Rationale: e.Rationale})
	}
	return rec, nil
}

// ListRuns returns up to limit runs, newest first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.queries.ListRuns(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]Run, 0, len(rows))
	for _, row := range rows {
		run, err := toRun(row)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func toRun(r runRow) (Run, error) {
	started, err := time.Parse(time.RFC3339Nano, r.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at of run %s: %w", r.ID, err)
	}
	return Run{
		ID:           r.ID,
		StartedAt:    started,
		Source:       r.Source,
		Items:        int(r.ItemCount),
		Vendors:      int(r.VendorCount),
		Boxes:        int(r.BoxCount),
		Amount:       r.Amount,
		Tax:          r.Tax,
		BudgetTotal:  r.BudgetTotal,
		Valid:        r.Valid,
		FindingCount: int(r.FindingCount),
		ReviewCount:  int(r.ReviewCount),
	}, nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
