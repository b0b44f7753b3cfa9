package backend

import (
	"context"
	"time"

	"genka/internal/sheets"
)

// Backend is where datasets are written and the taxonomy master is read.
type Backend interface {
	sheets.DatasetWriter
	sheets.MasterReader
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Master CSV, used by the memory and tsv backends
	MasterPath string

	// TSV specific
	OutputDir string

	// Google Sheets specific
	GoogleSpreadsheetID   string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string
	GoogleMasterSheet     string
	GoogleCacheTTL        time.Duration

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	TSVBackend    BackendType = "tsv"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, TSVBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
