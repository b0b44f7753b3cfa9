// Package ledger turns raw payment records into classified line items.
package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"genka/internal/budget"
	"genka/internal/core"
	"genka/internal/taxonomy"
	"genka/internal/vendor"
)

const (
	// NoteOffsetOnly is stamped on records without a pre-tax amount.
	NoteOffsetOnly = "金額なし（相殺のみ）"

	noteSep = " / "
)

// Batch is the payments of one period in the order they were received.
type Batch struct {
	Period   core.Period
	Payments []core.RawPayment
}

// ReviewEntry is a record whose classification needs a manual check.
type ReviewEntry struct {
	Seq       int
	Period    string
	Rationale string
}

func (r ReviewEntry) String() string {
	return fmt.Sprintf("行%d: %s", r.Seq, r.Rationale)
}

// Result holds everything a build produces. The review list is part of the
// result rather than shared state.
type Result struct {
	Items  []core.LineItem
	Review []ReviewEntry
	Totals []core.PeriodTotal
}

// Builder classifies payments. The zero value is not usable; use NewBuilder.
type Builder struct {
	classifier *taxonomy.Classifier
	taxRate    decimal.Decimal
}

// NewBuilder returns a builder. A nil classifier uses the built-in tables and
// a zero rate uses DefaultTaxRate.
func NewBuilder(c *taxonomy.Classifier, taxRate decimal.Decimal) *Builder {
	if c == nil {
		c = taxonomy.Default()
	}
	if taxRate.IsZero() {
		taxRate = DefaultTaxRate
	}
	return &Builder{classifier: c, taxRate: taxRate}
}

// Build classifies all batches in order. Sequence numbers run from 1 across
// batches. Records are independent, so one odd record never stops the rest.
func (b *Builder) Build(batches []Batch) Result {
	var res Result
	seq := 0
	for _, batch := range batches {
		total := core.PeriodTotal{Period: batch.Period}
		for _, p := range batch.Payments {
			seq++
			item, entry := b.item(seq, batch.Period, p)
			var reasons []string
			if entry.Inferred {
				reasons = append(reasons, entry.Rationale)
			}
			reasons = append(reasons, p.Problems...)
			if len(reasons) > 0 {
				res.Review = append(res.Review, ReviewEntry{
					Seq:       seq,
					Period:    batch.Period.Label,
					Rationale: strings.Join(reasons, noteSep),
				})
			}
			total.Total.Yen += item.Amount
			total.Count++
			res.Items = append(res.Items, item)
		}
		res.Totals = append(res.Totals, total)
	}
	return res
}

// Item classifies a single payment.
func (b *Builder) Item(seq int, period core.Period, p core.RawPayment) core.LineItem {
	item, _ := b.item(seq, period, p)
	return item
}

func (b *Builder) item(seq int, period core.Period, p core.RawPayment) (core.LineItem, core.TaxonomyEntry) {
	entry := b.classifier.Classify(p.ExpenseCode, p.Description)

	note := p.Note
	amount := p.AmountOrZero()
	if p.Amount == nil && note == "" {
		note = NoteOffsetOnly
	}
	if entry.Rationale != "" {
		note = appendNote(note, entry.Rationale)
	}

	key := budget.KeyFor(entry.Category, entry.ElementID)
	tax, taxClass := Tax(amount, b.taxRate)

	if d := p.Description; d != "" {
		switch {
		case note == "":
			note = d
		case !strings.Contains(note, d):
			note = d + noteSep + note
		}
	}

	return core.LineItem{
		Seq:          seq,
		Category:     entry.Category,
		WorkType:     key.WorkType,
		SubWorkType:  key.SubWorkType,
		ElementID:    entry.ElementID,
		ElementLabel: entry.Label,
		Vendor:       vendor.Normalize(p.Vendor),
		Period:       period.Month,
		PeriodLabel:  period.Label,
		Quantity:     1,
		Unit:         "式",
		UnitPrice:    amount,
		Amount:       amount,
		Offset:       p.Offset,
		OffsetTarget: p.OffsetTarget,
		TaxClass:     taxClass,
		Tax:          tax,
		Total:        amount + tax,
		BoxID:        key.ID(),
		Note:         note,
		Inferred:     entry.Inferred,
	}, entry
}

// VendorNames returns the raw vendor names of all batches in input order.
func VendorNames(batches []Batch) []string {
	var out []string
	for _, b := range batches {
		for _, p := range b.Payments {
			out = append(out, p.Vendor)
		}
	}
	return out
}

func appendNote(note, add string) string {
	if note == "" {
		return add
	}
	if strings.Contains(note, add) {
		return note
	}
	return note + noteSep + add
}
