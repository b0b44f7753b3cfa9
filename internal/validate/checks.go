package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"genka/internal/core"
)

// Tolerances in yen and days.
const (
	ContractTolerance = 100_000
	LineTolerance     = 100
	DurationTolerance = 1
)

// Dates may be written with or without zero padding (2024-04-01, 2024-4-1).
var dateLayouts = []string{"2006-01-02", "2006-1-2"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CheckContract compares the sum of all item totals with the contract amount.
// It only runs when the document has both sections and a positive contract.
func CheckContract(doc *Document) []Finding {
	if doc == nil || doc.BasicInfo == nil || doc.WorkCategories == nil {
		return nil
	}
	contract := doc.BasicInfo.ContractAmount
	if contract <= 0 {
		return nil
	}
	var sum int64
	for _, it := range doc.Items() {
		if !it.badTotal {
			sum += it.TotalCost
		}
	}
	if abs(sum-contract) <= ContractTolerance {
		return nil
	}
	exp, act := numbers(contract, sum)
	return []Finding{{
		Kind:     KindContractMismatch,
		Message:  fmt.Sprintf("金額不一致: 合計%s vs 契約%s", core.FormatYen(sum), core.FormatYen(contract)),
		Expected: exp,
		Actual:   act,
	}}
}

// CheckLineArithmetic flags items whose quantity times unit price is more
// than LineTolerance away from the stated total.
func CheckLineArithmetic(doc *Document) []Finding {
	if doc == nil {
		return nil
	}
	var out []Finding
	tol := decimal.NewFromInt(LineTolerance)
	for _, it := range doc.Items() {
		if it.badLine || !it.Quantity.IsPositive() || !it.UnitPrice.IsPositive() {
			continue
		}
		calc := it.Quantity.Mul(it.UnitPrice)
		if calc.Sub(decimal.NewFromInt(it.TotalCost)).Abs().LessThanOrEqual(tol) {
			continue
		}
		name := it.Name
		if name == "" {
			name = "不明"
		}
		exp, act := numbers(it.TotalCost, calc.Round(0).IntPart())
		out = append(out, Finding{
			Kind: KindLineArithmetic,
			Message: fmt.Sprintf("%s: %sx%s=%s vs 記載%s", name, it.Quantity.String(),
				formatDecimal(it.UnitPrice), formatDecimal(calc), core.FormatYen(it.TotalCost)),
			Expected: exp,
			Actual:   act,
		})
	}
	return out
}

// CheckDuration compares the inclusive day count of the work period with the
// stated total. Missing or unparseable dates are skipped, not reported.
func CheckDuration(doc *Document) []Finding {
	if doc == nil || doc.BasicInfo == nil || doc.BasicInfo.Duration == nil {
		return nil
	}
	d := doc.BasicInfo.Duration
	if d.Start == "" || d.End == "" || d.TotalDays <= 0 {
		return nil
	}
	start, ok := parseDate(d.Start)
	if !ok {
		return nil
	}
	end, ok := parseDate(d.End)
	if !ok {
		return nil
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if absInt(days-d.TotalDays) <= DurationTolerance {
		return nil
	}
	exp, act := numbers(int64(d.TotalDays), int64(days))
	return []Finding{{
		Kind:     KindDurationMismatch,
		Message:  fmt.Sprintf("工期不一致: 計算%d日 vs 記載%d日", days, d.TotalDays),
		Expected: exp,
		Actual:   act,
	}}
}

// Expectation is an independently known control total for one period.
type Expectation struct {
	Label string
	Total int64
}

// CheckPeriodTotals compares per-period pre-tax sums with control totals in
// the order of the expectations. A period without items counts as zero.
func CheckPeriodTotals(totals []core.PeriodTotal, expected []Expectation) []Finding {
	actual := core.TotalsByLabel(totals)
	var out []Finding
	for _, e := range expected {
		got := actual[e.Label]
		if got == e.Total {
			continue
		}
		exp, act := numbers(e.Total, got)
		out = append(out, Finding{
			Kind:     KindPeriodTotal,
			Message:  fmt.Sprintf("%s: 期待値=%s 実績=%s", e.Label, core.FormatYen(e.Total), core.FormatYen(got)),
			Expected: exp,
			Actual:   act,
		})
	}
	return out
}

// CheckItems verifies per-item identities of classified line items.
func CheckItems(items []core.LineItem) []Finding {
	var out []Finding
	for _, it := range items {
		if err := it.Validate(); err != nil {
			out = append(out, Finding{
				Kind:    KindItemInvariant,
				Message: fmt.Sprintf("行%d: %v", it.Seq, err),
			})
		}
	}
	return out
}

// Doc runs every document check.
func Doc(doc *Document) Report {
	return NewReport(CheckContract(doc), CheckLineArithmetic(doc), CheckDuration(doc))
}

// Ledger runs the reconciliation checks over classified items.
func Ledger(items []core.LineItem, totals []core.PeriodTotal, expected []Expectation) Report {
	return NewReport(CheckPeriodTotals(totals, expected), CheckItems(items))
}

func formatDecimal(d decimal.Decimal) string {
	if d.IsInteger() {
		return core.FormatYen(d.IntPart())
	}
	return d.String()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
