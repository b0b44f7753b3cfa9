package taxonomy

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"genka/internal/core"
)

func strp(s string) *string { return &s }

func TestParseCode(t *testing.T) {
	cases := []struct {
		in string
		n  int
		ok bool
	}{
		{"14.外注費", 14, true},
		{" 31 .準備費", 31, true},
		{"60", 60, true},
		{"", 0, false},
		{"外注費", 0, false},
		{"a1.材料", 0, false},
		{".14", 0, false},
	}
	for _, tc := range cases {
		n, ok := ParseCode(tc.in)
		if n != tc.n || ok != tc.ok {
			t.Fatalf("ParseCode(%q) = %d,%v want %d,%v", tc.in, n, ok, tc.n, tc.ok)
		}
	}
}

func TestCategoryForCode(t *testing.T) {
	cases := map[int]core.Category{
		10: core.DirectWork, 19: core.DirectWork,
		30: core.CommonTemporary, 39: core.CommonTemporary,
		50: core.SiteManagement, 69: core.SiteManagement,
		20: core.SiteManagement, 70: core.SiteManagement, 0: core.SiteManagement,
	}
	for n, want := range cases {
		if got := CategoryForCode(n); got != want {
			t.Fatalf("CategoryForCode(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestClassifyDirectCode(t *testing.T) {
	c := Default()
	got := c.Classify(strp("14.外注費"), "")
	want := core.TaxonomyEntry{ElementID: "E14", Label: "外注費", Category: core.DirectWork}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Classify mismatch (-want +got):\n%s", diff)
	}
	again := c.Classify(strp("14.外注費"), "")
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("Classify is not deterministic:\n%s", diff)
	}
}

func TestClassifyProvisionalCodeCarriesRationale(t *testing.T) {
	got := Default().Classify(strp("38.地元対策費"), "")
	if got.ElementID != "F34" || got.Category != core.CommonTemporary {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !got.Inferred || !strings.Contains(got.Rationale, "地元対策費") {
		t.Fatalf("expected review rationale, got %+v", got)
	}
}

func TestClassifyKeywordFallback(t *testing.T) {
	got := Default().Classify(nil, "釘 5箱")
	if got.ElementID != "E11" || got.Category != core.DirectWork {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !got.Inferred || !strings.Contains(got.Rationale, "釘 5箱") {
		t.Fatalf("expected inference rationale, got %q", got.Rationale)
	}
}

func TestClassifyKeywordPriority(t *testing.T) {
	// "椅子" comes before "掃除機" in the priority list.
	got := Default().Classify(nil, "掃除機と椅子")
	if got.ElementID != "F39" {
		t.Fatalf("expected first keyword in list order to win, got %+v", got)
	}

	custom := NewClassifier(nil, []KeywordRule{
		{"掃除機", "F67", "雑費", core.SiteManagement},
		{"椅子", "F39", "営繕費", core.CommonTemporary},
	})
	if got := custom.Classify(nil, "掃除機と椅子"); got.ElementID != "F67" {
		t.Fatalf("custom order not honoured: %+v", got)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	c := Default()
	got := c.Classify(nil, "ガソリン")
	if got.ElementID != CatchAll.ElementID || got.Category != core.SiteManagement {
		t.Fatalf("expected catch-all, got %+v", got)
	}
	if !strings.Contains(got.Rationale, "ガソリン") {
		t.Fatalf("rationale should cite description: %q", got.Rationale)
	}

	empty := c.Classify(nil, "")
	if empty.Rationale != "REVIEW: 経費項目未付与" {
		t.Fatalf("unexpected rationale for empty description: %q", empty.Rationale)
	}
}

func TestClassifyUnknownCode(t *testing.T) {
	c := Default()
	for _, code := range []string{"99.謎", "", "abc"} {
		got := c.Classify(strp(code), "釘")
		if got.ElementID != "F67" || !got.Inferred {
			t.Fatalf("code %q: expected catch-all, got %+v", code, got)
		}
		if !strings.Contains(got.Rationale, "'"+code+"'") {
			t.Fatalf("code %q: rationale should cite code: %q", code, got.Rationale)
		}
	}
}

func TestDefaultTablesAreValid(t *testing.T) {
	c := Default()
	for _, r := range DefaultCodes() {
		e, ok := c.Lookup(r.Code)
		if !ok {
			t.Fatalf("code %d missing", r.Code)
		}
		if err := e.Validate(); err != nil {
			t.Fatalf("code %d: %v", r.Code, err)
		}
	}
	for _, k := range DefaultKeywords() {
		if !k.Category.IsValid() || k.ElementID == "" {
			t.Fatalf("bad keyword rule %+v", k)
		}
	}
}
