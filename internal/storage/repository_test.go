package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"genka/internal/core"
	"genka/internal/ledger"
	"genka/internal/validate"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "genka.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndGetRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	expected, actual := int64(10_933_337), int64(10_933_000)
	started := time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)
	rec := RunRecord{
		Run: Run{
			StartedAt: started, Source: "final_output.json",
			Items: 2, Vendors: 2, Boxes: 1, Amount: 5_001_980, Tax: 500_198, BudgetTotal: 10_004_000,
			Valid: false,
		},
		Totals: []core.PeriodTotal{
			{Period: core.Period{Label: "10月度", Month: "2025-10"}, Total: core.Money{Yen: 5_001_980}, Count: 2},
		},
		Findings: []validate.Finding{
			{Kind: validate.KindPeriodTotal, Message: "10月度: 期待値=10,933,337 実績=10,933,000", Expected: &expected, Actual: &actual},
			{Kind: validate.KindItemInvariant, Message: "行2: invalid amount"},
		},
		Review: []ledger.ReviewEntry{{Seq: 2, Period: "10月度", Rationale: "REVIEW: 内訳'釘'から材料費と推定"}},
	}

	id, err := repo.SaveRun(ctx, rec)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	got, err := repo.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	rec.ID = id
	rec.FindingCount = 2
	rec.ReviewCount = 1
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestGetRunNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetRun(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if _, err := repo.SaveRun(ctx, RunRecord{Run: Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour), Valid: true}}); err != nil {
			t.Fatalf("SaveRun %s: %v", id, err)
		}
	}
	runs, err := repo.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if _, err := repo.SaveRun(ctx, RunRecord{Run: Run{ID: "a"}}); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first migration: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second migration: %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Fatalf("unexpected versions %d %d", v1, v2)
	}
}
