// Package tsv writes datasets as tab-separated files, one file per dataset.
package tsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	ports "genka/internal/sheets"
	"genka/internal/taxonomy"
)

var (
	_ ports.DatasetWriter = (*Writer)(nil)
	_ ports.MasterReader  = (*Writer)(nil)
)

// Writer writes <dir>/<dataset>.tsv and reads the master from a CSV path.
type Writer struct {
	dir        string
	masterPath string
}

// New creates the output directory if needed. masterPath may be empty.
func New(dir, masterPath string) (*Writer, error) {
	if dir == "" {
		return nil, errors.New("output directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{dir: dir, masterPath: masterPath}, nil
}

// Path returns the file a dataset is written to.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+".tsv")
}

// WriteTable writes to a temporary file and renames it over the target, so a
// failed run never leaves a half-written dataset behind.
func (w *Writer) WriteTable(ctx context.Context, t ports.Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.Name == "" {
		return "", errors.New("table name cannot be empty")
	}
	target := w.Path(t.Name)
	f, err := os.CreateTemp(w.dir, t.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", t.Name, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	cw := csv.NewWriter(f)
	cw.Comma = '\t'
	if err := cw.WriteAll(t.Strings()); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", t.Name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", t.Name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("rename %s: %w", t.Name, err)
	}
	return target, nil
}

// ReadMaster reads the configured master CSV.
func (w *Writer) ReadMaster(_ context.Context) (*taxonomy.Master, error) {
	if w.masterPath == "" {
		return nil, errors.New("no master file configured")
	}
	f, err := os.Open(w.masterPath)
	if err != nil {
		return nil, fmt.Errorf("open master: %w", err)
	}
	defer f.Close()
	return taxonomy.ReadMaster(f)
}
