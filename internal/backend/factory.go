package backend

import (
	"context"
	"fmt"
	"os"

	"genka/internal/amqp"
	"genka/internal/log"
	gsheet "genka/internal/sheets/google"
	"genka/internal/sheets/memory"
	"genka/internal/sheets/tsv"
	"genka/internal/storage"
	"genka/internal/taxonomy"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case TSVBackend:
		return f.createTSVBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createTSVBackend(config Config) (*BackendResult, error) {
	w, err := tsv.New(config.OutputDir, config.MasterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tsv backend: %w", err)
	}
	f.logger.Info("Initialized tsv backend", "output_dir", config.OutputDir, "master", config.MasterPath)
	return &BackendResult{Backend: w}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		CredentialsJSON: config.GoogleCredentialsJSON,
		CredentialsFile: config.GoogleCredentialsFile,
		MasterSheet:     config.GoogleMasterSheet,
		CacheTTL:        config.GoogleCacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.MasterPath != "" {
		file, err := os.Open(config.MasterPath)
		if err != nil {
			return nil, fmt.Errorf("open master: %w", err)
		}
		defer file.Close()
		m, err := taxonomy.ReadMaster(file)
		if err != nil {
			return nil, err
		}
		f.logger.Info("Initialized memory backend", "master", config.MasterPath)
		return &BackendResult{Backend: memory.New(m)}, nil
	}

	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{Backend: store}, nil
}

// CreateHistory opens the run history. An empty path disables it and
// returns nil.
func (f *DefaultFactory) CreateHistory(dbPath string) (*storage.SQLiteRepository, error) {
	if dbPath == "" {
		return nil, nil
	}
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized run history", "db_path", dbPath)
	return repo, nil
}

// CreatePublisher connects to AMQP. Connection failures are logged and
// yield nil so that runs continue without events.
func (f *DefaultFactory) CreatePublisher(url, exchange, queue string) *amqp.Client {
	if url == "" {
		return nil
	}
	client, err := amqp.NewClient(url, exchange, queue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client", "exchange", exchange, "queue", queue)
	return client
}
