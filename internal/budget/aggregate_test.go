package budget

import (
	"testing"

	"genka/internal/core"
)

func item(cat core.Category, el, label string, amount int64) core.LineItem {
	k := KeyFor(cat, el)
	return core.LineItem{
		Category: cat, ElementID: el, ElementLabel: label,
		WorkType: k.WorkType, SubWorkType: k.SubWorkType,
		BoxID: k.ID(), Amount: amount,
	}
}

func TestScaleToNextUnit(t *testing.T) {
	cases := map[int64]int64{
		1:       1000,
		499:     1000,
		500:     2000, // 1000 exactly moves to the next unit
		1234567: 2470000,
		0:       1000,
		// credits: the estimate is still the next unit above the doubled sum
		-1:      0,
		-500:    0,
		-501:    -1000,
		-1234:   -2000,
		-30000:  -59000,
	}
	for in, want := range cases {
		if got := DoubleToNextThousand.Estimate(in); got != want {
			t.Fatalf("Estimate(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestAggregate(t *testing.T) {
	items := []core.LineItem{
		item(core.DirectWork, "E14", "外注費", 5_000_000),
		item(core.SiteManagement, "F67", "雑費", 1200),
		item(core.DirectWork, "E14", "外注費", 250_000),
		item(core.CommonTemporary, "F39", "営繕費", 3000),
		item(core.CommonTemporary, "F39", "営繕費", -3000),
		item(core.DirectWork, "E11", "材料費", 0),
	}
	rows := NewAggregator().Aggregate(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 non-zero boxes, got %d: %+v", len(rows), rows)
	}
	if rows[0].BoxID != "C01-W04-K9901-E14" || rows[1].BoxID != "C03-F67" {
		t.Fatalf("unexpected order: %s, %s", rows[0].BoxID, rows[1].BoxID)
	}
	r := rows[0]
	if r.Observed != 5_250_000 || r.Estimate != 10_501_000 {
		t.Fatalf("unexpected amounts: %+v", r)
	}
	if r.Category != core.DirectWork || r.WorkType != DefaultWorkType || r.SubWorkType != DefaultSubWorkType || r.ElementID != "E14" {
		t.Fatalf("box id not decomposed: %+v", r)
	}
	if r.Start != "2025-10" || r.End != "2026-03" || r.Label != "外注費" {
		t.Fatalf("unexpected window/label: %+v", r)
	}
	if TotalEstimate(rows) != 10_501_000+3000 {
		t.Fatalf("unexpected total estimate %d", TotalEstimate(rows))
	}
}

func TestAggregateConservesAmounts(t *testing.T) {
	items := []core.LineItem{
		item(core.DirectWork, "E11", "材料費", 7),
		item(core.DirectWork, "E15", "労務費", 11),
		item(core.SiteManagement, "F60", "事務用品費", 13),
		item(core.DirectWork, "E11", "材料費", 17),
		item(core.CommonTemporary, "F31", "運搬費", 19),
	}
	var want int64
	for _, it := range items {
		want += it.Amount
	}
	var got int64
	for _, r := range NewAggregator().Aggregate(items) {
		got += r.Observed
	}
	if got != want {
		t.Fatalf("sum of boxes %d != sum of items %d", got, want)
	}
}

type labels map[string]string

func (l labels) Label(id string) (string, bool) { v, ok := l[id]; return v, ok }

func TestAggregateCustomPolicyAndLabels(t *testing.T) {
	a := &Aggregator{
		Policy: EstimateFunc(func(v int64) int64 { return v }),
		Window: Window{Start: "2026-04", End: "2027-03"},
		Labels: labels{"F67": "雑費（マスタ）"},
	}
	rows := a.Aggregate([]core.LineItem{item(core.SiteManagement, "F67", "雑費", 4321)})
	if len(rows) != 1 || rows[0].Estimate != 4321 || rows[0].Label != "雑費（マスタ）" || rows[0].Start != "2026-04" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
