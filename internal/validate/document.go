package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrMalformedDocument = errors.New("malformed document")

// Document is a structured cost/contract document as produced by the
// drafting workflow. Absent sections stay nil so checks can tell "missing"
// from "empty".
type Document struct {
	BasicInfo      *BasicInfo     `json:"basic_info,omitempty"`
	WorkCategories []WorkCategory `json:"work_categories,omitempty"`
}

type BasicInfo struct {
	ProjectName    string    `json:"project_name,omitempty"`
	Client         string    `json:"client,omitempty"`
	ContractAmount int64     `json:"contract_amount"`
	Duration       *Duration `json:"duration,omitempty"`
}

type Duration struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	TotalDays int    `json:"total_days"`
}

type WorkCategory struct {
	Category string     `json:"category"`
	Items    []WorkItem `json:"items"`
}

type WorkItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TotalCost int64           `json:"total_cost"`

	// set when a numeric field was present but unreadable
	badTotal bool
	badLine  bool
}

// ParseDocument decodes a cost document. Only a document that is not a JSON
// object is an error. Inside it, numbers may be integers, floats or numeric
// strings ("1,200", "5000.0"); a value that cannot be read is dropped and the
// checks that need it skip that record.
func ParseDocument(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}
	top, err := object(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	doc := &Document{}
	if info, err := object(top["basic_info"]); err == nil && info != nil {
		doc.BasicInfo = basicInfo(info)
	}
	var cats []json.RawMessage
	if err := json.Unmarshal(orNull(top["work_categories"]), &cats); err == nil && cats != nil {
		doc.WorkCategories = make([]WorkCategory, 0, len(cats))
		for _, raw := range cats {
			doc.WorkCategories = append(doc.WorkCategories, workCategory(raw))
		}
	}
	return doc, nil
}

// Items returns all work items across categories.
func (d *Document) Items() []WorkItem {
	var out []WorkItem
	for _, c := range d.WorkCategories {
		out = append(out, c.Items...)
	}
	return out
}

type fields map[string]json.RawMessage

// object decodes a JSON object; null or absent input yields a nil map.
func object(raw json.RawMessage) (fields, error) {
	var f fields
	if err := json.Unmarshal(orNull(raw), &f); err != nil {
		return nil, err
	}
	return f, nil
}

func orNull(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func (f fields) str(key string) string {
	var s string
	if json.Unmarshal(orNull(f[key]), &s) != nil {
		return ""
	}
	return s
}

// number reads a JSON number or numeric string. Absent and null read as
// zero; ok is false only for a value that is present but not a number.
func (f fields) number(key string) (v decimal.Decimal, ok bool) {
	raw := bytes.TrimSpace(f[key])
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, true
	}
	text := string(raw)
	if raw[0] == '"' {
		if json.Unmarshal(raw, &text) != nil {
			return decimal.Zero, false
		}
		text = numberCleaner.Replace(strings.TrimSpace(text))
		if text == "" {
			return decimal.Zero, true
		}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

var numberCleaner = strings.NewReplacer(",", "", "，", "", "¥", "", "￥", "", "円", "")

func basicInfo(f fields) *BasicInfo {
	info := &BasicInfo{ProjectName: f.str("project_name"), Client: f.str("client")}
	if v, ok := f.number("contract_amount"); ok {
		info.ContractAmount = v.Round(0).IntPart()
	}
	if d, err := object(f["duration"]); err == nil && d != nil {
		info.Duration = &Duration{Start: d.str("start"), End: d.str("end")}
		if v, ok := d.number("total_days"); ok && v.IsInteger() {
			info.Duration.TotalDays = int(v.IntPart())
		}
	}
	return info
}

func workCategory(raw json.RawMessage) WorkCategory {
	f, err := object(raw)
	if err != nil || f == nil {
		return WorkCategory{}
	}
	c := WorkCategory{Category: f.str("category")}
	var items []json.RawMessage
	if json.Unmarshal(orNull(f["items"]), &items) != nil {
		return c
	}
	for _, raw := range items {
		if it, ok := workItem(raw); ok {
			c.Items = append(c.Items, it)
		}
	}
	return c
}

// workItem returns false for entries that are not objects at all.
func workItem(raw json.RawMessage) (WorkItem, bool) {
	f, err := object(raw)
	if err != nil || f == nil {
		return WorkItem{}, false
	}
	it := WorkItem{Name: f.str("name"), Unit: f.str("unit")}
	var ok bool
	if it.Quantity, ok = f.number("quantity"); !ok {
		it.badLine = true
	}
	if it.UnitPrice, ok = f.number("unit_price"); !ok {
		it.badLine = true
	}
	total, ok := f.number("total_cost")
	if ok {
		it.TotalCost = total.Round(0).IntPart()
	} else {
		it.badTotal = true
		it.badLine = true
	}
	return it, true
}
