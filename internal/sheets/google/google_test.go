package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	ports "genka/internal/sheets"
)

type fakeSheets struct {
	mu       sync.Mutex
	cleared  []string
	updated  map[string][][]any
	gets     int
	master   [][]string
	failGets bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, rest, _ := strings.Cut(r.URL.Path, "/values/")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(rest, ":clear"):
		f.cleared = append(f.cleared, strings.TrimSuffix(rest, ":clear"))
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.updated[rest] = body.Values
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": rest, "updatedRows": len(body.Values)})
	case r.Method == http.MethodGet:
		f.gets++
		if f.failGets {
			http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rest, "values": f.master})
	default:
		http.Error(w, "unexpected", http.StatusBadRequest)
	}
}

func newTestClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing spreadsheet id")
	}
}

func TestCredentialsMissing(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := credentials(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error without credentials")
	}
	b, err := credentials(context.Background(), Config{CredentialsJSON: `{"type":"service_account"}`})
	if err != nil || !strings.Contains(string(b), "service_account") {
		t.Fatalf("inline credentials not used: %q %v", b, err)
	}
}

func TestWriteTable(t *testing.T) {
	f := &fakeSheets{updated: map[string][][]any{}}
	c := newTestClient(t, f)

	ref, err := c.WriteTable(context.Background(), ports.Table{
		Name:   ports.VendorsDataset,
		Header: []string{"vendor_id", "vendor_name"},
		Rows:   [][]any{{"V001", "川越建設(株)"}},
	})
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if ref != "_M取引先!A1" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if len(f.cleared) != 1 || f.cleared[0] != "_M取引先" {
		t.Fatalf("sheet not cleared first: %v", f.cleared)
	}
	got := f.updated["_M取引先!A1"]
	if len(got) != 2 || got[1][1] != "川越建設(株)" {
		t.Fatalf("unexpected values: %v", got)
	}
}

func TestSheetNameOverrides(t *testing.T) {
	f := &fakeSheets{updated: map[string][][]any{}}
	srv := httptest.NewServer(f)
	defer srv.Close()
	c, err := New(context.Background(), Config{
		SpreadsheetID: "sheet-1",
		SheetNames:    map[string]string{ports.BudgetDataset: "予算"},
	}, goption.WithEndpoint(srv.URL+"/"), goption.WithHTTPClient(srv.Client()), goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.SheetName(ports.BudgetDataset) != "予算" || c.SheetName(ports.LineItemsDataset) != "_支払明細" {
		t.Fatalf("unexpected sheet names: %v", c.sheetNames)
	}
	if c.SheetName("other") != "other" {
		t.Fatalf("unknown datasets should use their own name")
	}
}

func TestReadMasterIsCached(t *testing.T) {
	f := &fakeSheets{
		updated: map[string][][]any{},
		master: [][]string{
			{"type", "id", "name"},
			{"expense_element", "E14", "外注費"},
		},
	}
	c := newTestClient(t, f)

	for i := 0; i < 2; i++ {
		m, err := c.ReadMaster(context.Background())
		if err != nil {
			t.Fatalf("ReadMaster: %v", err)
		}
		if name, ok := m.Label("E14"); !ok || name != "外注費" {
			t.Fatalf("Label(E14) = %q, %v", name, ok)
		}
	}
	if f.gets != 1 {
		t.Fatalf("expected one API read, got %d", f.gets)
	}
	c.InvalidateMaster()
	if _, err := c.ReadMaster(context.Background()); err != nil {
		t.Fatalf("ReadMaster after invalidate: %v", err)
	}
	if f.gets != 2 {
		t.Fatalf("expected a fresh read after invalidation, got %d", f.gets)
	}
}

func TestReadMasterError(t *testing.T) {
	f := &fakeSheets{updated: map[string][][]any{}, failGets: true}
	c := newTestClient(t, f)
	if _, err := c.ReadMaster(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
