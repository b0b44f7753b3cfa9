package validate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanPlaceholders(t *testing.T) {
	text := `
工事名: ○○河川護岸工事
施工場所: XXX市YYY区
電話番号: 000-0000-0000
担当: ○○
契約金額: 50000000円
`
	rep := ScanPlaceholders(text)
	if rep.Clean || rep.Count != 5 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	want := []string{"○○", "XXX", "YYY", "000-0000-0000"}
	if diff := cmp.Diff(want, rep.Placeholders); diff != "" {
		t.Fatalf("placeholders mismatch (-want +got):\n%s", diff)
	}
}

func TestScanPlaceholdersClean(t *testing.T) {
	rep := ScanPlaceholders("広瀬川護岸工事 契約金額 50,000,000円")
	if !rep.Clean || rep.Count != 0 || rep.Placeholders == nil {
		t.Fatalf("unexpected report: %+v", rep)
	}
}
