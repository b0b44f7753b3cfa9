package sheets

import (
	"fmt"

	"genka/internal/budget"
	"genka/internal/core"
)

// Dataset names. Each adapter maps them to a sheet, a file or a map key.
const (
	LineItemsDataset = "line_items"
	VendorsDataset   = "vendors"
	BudgetDataset    = "budget"
)

var (
	lineItemHeader = []string{
		"No.", "カテゴリ", "工事種別", "工種", "費目", "支払先",
		"支払年月", "数量", "単位", "単価", "金額",
		"相殺額", "相殺先",
		"課税区分", "消費税", "税込合計", "予算箱ID", "備考",
	}
	vendorHeader = []string{"vendor_id", "vendor_name", "vendor_type", "active"}
	budgetHeader = []string{
		"budget_box_id", "category", "work_type", "koushus",
		"expense_id", "expense_name", "budget_amount",
		"start_month", "end_month",
	}
)

// Table is a rendered dataset. Cells are either string or int64 so that
// spreadsheet adapters can keep numbers numeric.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Values returns the header followed by the rows.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	head := make([]any, len(t.Header))
	for i, h := range t.Header {
		head[i] = h
	}
	out = append(out, head)
	return append(out, t.Rows...)
}

// Strings renders every cell as text.
func (t Table) Strings() [][]string {
	vals := t.Values()
	out := make([][]string, len(vals))
	for i, row := range vals {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}

// LineItemTable renders classified line items in the 18-column layout.
func LineItemTable(items []core.LineItem) Table {
	rows := make([][]any, 0, len(items))
	for _, li := range items {
		rows = append(rows, []any{
			int64(li.Seq),
			li.Category.Label(),
			li.WorkType,
			li.SubWorkType,
			li.ElementID,
			li.Vendor,
			li.Period,
			li.Quantity,
			li.Unit,
			li.UnitPrice,
			li.Amount,
			li.Offset,
			li.OffsetTarget,
			li.TaxClass,
			li.Tax,
			li.Total,
			li.BoxID,
			li.Note,
		})
	}
	return Table{Name: LineItemsDataset, Header: lineItemHeader, Rows: rows}
}

// VendorTable renders the vendor roster.
func VendorTable(vendors []core.Vendor) Table {
	rows := make([][]any, 0, len(vendors))
	for _, v := range vendors {
		active := "FALSE"
		if v.Active {
			active = "TRUE"
		}
		rows = append(rows, []any{v.ID, v.Name, string(v.Role), active})
	}
	return Table{Name: VendorsDataset, Header: vendorHeader, Rows: rows}
}

// BudgetTable renders aggregated budget boxes.
func BudgetTable(boxes []budget.Row) Table {
	rows := make([][]any, 0, len(boxes))
	for _, b := range boxes {
		rows = append(rows, []any{
			b.BoxID,
			b.Category.Label(),
			b.WorkType,
			b.SubWorkType,
			b.ElementID,
			b.Label,
			b.Estimate,
			b.Start,
			b.End,
		})
	}
	return Table{Name: BudgetDataset, Header: budgetHeader, Rows: rows}
}
