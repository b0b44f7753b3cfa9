package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"genka/internal/config"
	"genka/internal/log"
	"genka/internal/sheets/memory"
	"genka/internal/sheets/tsv"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{Backend: "excel"}); err == nil {
		t.Fatal("expected error for invalid backend")
	}
	cfg, err := FromAppConfig(&config.Config{Backend: "tsv", OutputDir: "out", MasterPath: "m.csv"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != TSVBackend || cfg.OutputDir != "out" || cfg.MasterPath != "m.csv" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"tsv", Config{Type: TSVBackend, OutputDir: "out"}, false},
		{"tsv without dir", Config{Type: TSVBackend}, true},
		{"sheets without id", Config{Type: SheetsBackend}, true},
		{"unknown", Config{Type: "excel"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if len(GetBackendTypeStrings()) != 3 {
		t.Fatal("expected three backend types")
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	master := filepath.Join(dir, "master.csv")
	if err := os.WriteFile(master, []byte("type,id,name\nexpense_item,F67,雑費\n"), 0o644); err != nil {
		t.Fatalf("write master: %v", err)
	}
	f := NewFactory(log.Discard())
	ctx := context.Background()

	res, err := f.CreateBackend(ctx, Config{Type: TSVBackend, OutputDir: filepath.Join(dir, "out"), MasterPath: master})
	if err != nil {
		t.Fatalf("tsv: %v", err)
	}
	if _, ok := res.Backend.(*tsv.Writer); !ok {
		t.Fatalf("expected tsv writer, got %T", res.Backend)
	}

	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend, MasterPath: master})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	store, ok := res.Backend.(*memory.Store)
	if !ok {
		t.Fatalf("expected memory store, got %T", res.Backend)
	}
	m, err := store.ReadMaster(ctx)
	if err != nil || m.Count("expense_item") != 1 {
		t.Fatalf("master not loaded: %v", err)
	}

	if _, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, MasterPath: filepath.Join(dir, "missing.csv")}); err == nil {
		t.Fatal("expected error for missing master")
	}
	if _, err := f.CreateBackend(ctx, Config{Type: SheetsBackend}); err == nil {
		t.Fatal("expected error for sheets without spreadsheet id")
	}
}

func TestOptionalAdapters(t *testing.T) {
	f := NewFactory(log.Discard())
	repo, err := f.CreateHistory("")
	if err != nil || repo != nil {
		t.Fatalf("empty path should disable history: %v %v", repo, err)
	}
	repo, err = f.CreateHistory(filepath.Join(t.TempDir(), "h.db"))
	if err != nil || repo == nil {
		t.Fatalf("CreateHistory: %v", err)
	}
	repo.Close()
	if f.CreatePublisher("", "x", "y") != nil {
		t.Fatal("empty url should disable publishing")
	}
}
