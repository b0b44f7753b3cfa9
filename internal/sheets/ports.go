package sheets

import (
	"context"

	"genka/internal/taxonomy"
)

// Ports for outbound adapters.
type (
	// DatasetWriter replaces the contents of one named dataset with t.
	DatasetWriter interface {
		WriteTable(ctx context.Context, t Table) (ref string, err error)
	}

	// MasterReader loads the cost taxonomy master from wherever it is kept.
	MasterReader interface {
		ReadMaster(ctx context.Context) (*taxonomy.Master, error)
	}
)
