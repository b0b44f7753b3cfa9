package budget

import (
	"sort"

	"genka/internal/core"
)

// Window is the planning period the budget table covers.
type Window struct {
	Start string // YYYY-MM
	End   string // YYYY-MM
}

var DefaultWindow = Window{Start: "2025-10", End: "2026-03"}

// Row is one line of the budget table.
type Row struct {
	BoxID       string
	Category    core.Category
	WorkType    string
	SubWorkType string
	ElementID   string
	Label       string
	Observed    int64
	Estimate    int64
	Start       string
	End         string
}

// LabelSource resolves element labels, typically a taxonomy master.
type LabelSource interface {
	Label(id string) (string, bool)
}

// Aggregator groups line items into budget boxes.
type Aggregator struct {
	Policy EstimatePolicy
	Window Window
	Labels LabelSource // optional; overrides classification labels
}

// NewAggregator returns an aggregator with the default policy and window.
func NewAggregator() *Aggregator {
	return &Aggregator{Policy: DoubleToNextThousand, Window: DefaultWindow}
}

// Aggregate sums pre-tax amounts per box id. Boxes whose sum is zero are
// dropped; rows are ordered by box id.
func (a *Aggregator) Aggregate(items []core.LineItem) []Row {
	policy := a.Policy
	if policy == nil {
		policy = DoubleToNextThousand
	}
	byID := map[string]*Row{}
	for _, it := range items {
		r, ok := byID[it.BoxID]
		if !ok {
			r = &Row{
				BoxID:       it.BoxID,
				Category:    it.Category,
				WorkType:    it.WorkType,
				SubWorkType: it.SubWorkType,
				ElementID:   it.ElementID,
				Label:       it.ElementLabel,
			}
			if k, err := ParseBoxID(it.BoxID); err == nil {
				r.Category, r.WorkType, r.SubWorkType, r.ElementID = k.Category, k.WorkType, k.SubWorkType, k.ElementID
			}
			byID[it.BoxID] = r
		}
		r.Observed += it.Amount
	}

	rows := make([]Row, 0, len(byID))
	for _, r := range byID {
		if r.Observed == 0 {
			continue
		}
		if a.Labels != nil {
			if l, ok := a.Labels.Label(r.ElementID); ok {
				r.Label = l
			}
		}
		r.Estimate = policy.Estimate(r.Observed)
		r.Start, r.End = a.Window.Start, a.Window.End
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].BoxID < rows[j].BoxID })
	return rows
}

// TotalEstimate sums the estimates of all rows.
func TotalEstimate(rows []Row) int64 {
	var sum int64
	for _, r := range rows {
		sum += r.Estimate
	}
	return sum
}
