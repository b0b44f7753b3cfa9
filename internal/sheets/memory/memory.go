package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ports "genka/internal/sheets"
	"genka/internal/taxonomy"
)

// ErrNoMaster is returned by ReadMaster when the store was created without one.
var ErrNoMaster = errors.New("no taxonomy master loaded")

var (
	_ ports.DatasetWriter = (*Store)(nil)
	_ ports.MasterReader  = (*Store)(nil)
)

// Store keeps written datasets in memory. It is used by tests and dry runs.
type Store struct {
	mu     sync.Mutex
	master *taxonomy.Master
	tables map[string]ports.Table
	writes int
}

func New(master *taxonomy.Master) *Store {
	return &Store{master: master, tables: map[string]ports.Table{}}
}

// NewFromFiles loads master_items.csv from base when present.
func NewFromFiles(base string) (*Store, error) {
	f, err := os.Open(filepath.Join(base, "master_items.csv"))
	if errors.Is(err, os.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := taxonomy.ReadMaster(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", f.Name(), err)
	}
	return New(m), nil
}

// WriteTable replaces the dataset and returns a synthetic reference.
func (s *Store) WriteTable(_ context.Context, t ports.Table) (string, error) {
	if t.Name == "" {
		return "", errors.New("table name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Name] = t
	s.writes++
	return fmt.Sprintf("mem:%s:%d", t.Name, len(t.Rows)), nil
}

// ReadMaster returns the master the store was created with.
func (s *Store) ReadMaster(_ context.Context) (*taxonomy.Master, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.master == nil {
		return nil, ErrNoMaster
	}
	return s.master, nil
}

// Table returns a previously written dataset.
func (s *Store) Table(name string) (ports.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	return t, ok
}

// Writes returns the number of WriteTable calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
