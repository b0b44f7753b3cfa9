package core

import "testing"

func TestCategoryLabelsAndPrefixes(t *testing.T) {
	cases := []struct {
		c      Category
		label  string
		prefix string
	}{
		{DirectWork, "直接工事費", "C01"},
		{CommonTemporary, "共通仮設費", "C02"},
		{SiteManagement, "現場管理費", "C03"},
	}
	for _, tc := range cases {
		if tc.c.Label() != tc.label || tc.c.Prefix() != tc.prefix {
			t.Fatalf("%s: got %s/%s", tc.c, tc.c.Label(), tc.c.Prefix())
		}
		back, err := CategoryFromLabel(tc.label)
		if err != nil || back != tc.c {
			t.Fatalf("CategoryFromLabel(%q) = %s, %v", tc.label, back, err)
		}
	}
	if _, err := CategoryFromLabel("other"); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestPeriodValidate(t *testing.T) {
	if err := (Period{Label: "10月度", Month: "2025-10"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Period{
		{Label: "", Month: "2025-10"},
		{Label: "10月度", Month: "2025/10"},
		{Label: "10月度", Month: "2025-13"},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTaxonomyEntryValidate(t *testing.T) {
	good := TaxonomyEntry{ElementID: "E14", Label: "外注費", Category: DirectWork}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []TaxonomyEntry{
		{ElementID: "", Category: DirectWork},
		{ElementID: "E11", Category: "Other"},
		{ElementID: "F67", Category: SiteManagement, Inferred: true},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestLineItemValidate(t *testing.T) {
	li := LineItem{Seq: 1, Category: DirectWork, ElementID: "E14", Amount: 100, Tax: 10, Total: 110}
	if err := li.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	li.Total = 100
	if err := li.Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTotalsByLabel(t *testing.T) {
	got := TotalsByLabel([]PeriodTotal{
		{Period: Period{Label: "10月度"}, Total: Money{Yen: 10}},
		{Period: Period{Label: "11月度"}, Total: Money{Yen: 5}},
	})
	if got["10月度"] != 10 || got["11月度"] != 5 {
		t.Fatalf("unexpected totals: %v", got)
	}
}
