package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"genka/internal/cache"
	ports "genka/internal/sheets"
	"genka/internal/taxonomy"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetNames maps datasets to the sheets the downstream workbook expects.
var DefaultSheetNames = map[string]string{
	ports.LineItemsDataset: "_支払明細",
	ports.VendorsDataset:   "_M取引先",
	ports.BudgetDataset:    "_実行予算テーブル",
}

const (
	DefaultMasterSheet = "_Mマスタ"
	defaultCacheTTL    = 10 * time.Minute
)

// Config describes the target spreadsheet and how to authenticate.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	SheetNames      map[string]string // dataset name -> sheet title
	MasterSheet     string
	CacheTTL        time.Duration
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetNames    map[string]string
	masterSheet   string
	masters       *cache.LRU[*taxonomy.Master]
}

// Ensure interface conformance
var (
	_ ports.DatasetWriter = (*Client)(nil)
	_ ports.MasterReader  = (*Client)(nil)
)

// New creates a Sheets client. When opts is empty, service account
// credentials are taken from cfg, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if len(opts) == 0 {
		creds, err := credentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	names := make(map[string]string, len(DefaultSheetNames))
	for k, v := range DefaultSheetNames {
		names[k] = v
	}
	for k, v := range cfg.SheetNames {
		if strings.TrimSpace(v) != "" {
			names[k] = v
		}
	}
	master := cfg.MasterSheet
	if master == "" {
		master = DefaultMasterSheet
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetNames:    names,
		masterSheet:   master,
		masters:       cache.NewLRU[*taxonomy.Master](4, ttl),
	}, nil
}

func credentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GENKA_GOOGLE_CREDENTIALS_JSON, GENKA_GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// SheetName returns the sheet a dataset is written to.
func (c *Client) SheetName(dataset string) string {
	if n, ok := c.sheetNames[dataset]; ok {
		return n
	}
	return dataset
}

// WriteTable clears the dataset's sheet and writes header and rows from A1.
func (c *Client) WriteTable(ctx context.Context, t ports.Table) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := c.SheetName(t.Name)

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, sheet, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	rng := sheet + "!A1"
	vr := &gsheet.ValueRange{Values: t.Values()}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", sheet, err)
	}
	slog.DebugContext(ctx, "Dataset written to sheet",
		"sheet", sheet,
		"rows", len(t.Rows),
		"updated_range", resp.UpdatedRange)
	if resp.UpdatedRange != "" {
		return resp.UpdatedRange, nil
	}
	return rng, nil
}

// ReadMaster reads the taxonomy master sheet. Results are cached for the
// configured TTL since the master changes far less often than runs happen.
func (c *Client) ReadMaster(ctx context.Context) (*taxonomy.Master, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	return c.masters.GetOrLoad(c.masterSheet, func() (*taxonomy.Master, error) {
		rng := c.masterSheet + "!A:Z"
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rng, err)
		}
		return taxonomy.MasterFromRecords(toRecords(resp.Values))
	})
}

// InvalidateMaster drops the cached master so the next read hits the API.
func (c *Client) InvalidateMaster() {
	c.masters.Delete(c.masterSheet)
}

func toRecords(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}
