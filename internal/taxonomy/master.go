package taxonomy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Master record types found in the master items file.
const (
	TypeElement  = "expense_element"
	TypeItem     = "expense_item"
	TypeSubWork  = "koushus"
	TypeWorkType = "work_type"
	TypeVendor   = "vendor"
)

// MasterRow is one row of the cost taxonomy master.
type MasterRow struct {
	Type string
	ID   string
	Name string
}

// Master is the cost taxonomy master keyed by type and id.
type Master struct {
	rows map[string]map[string]MasterRow
}

// NewMaster indexes rows; rows with an unknown type are kept under their own type.
func NewMaster(rows []MasterRow) *Master {
	m := &Master{rows: map[string]map[string]MasterRow{}}
	for _, r := range rows {
		if m.rows[r.Type] == nil {
			m.rows[r.Type] = map[string]MasterRow{}
		}
		m.rows[r.Type][r.ID] = r
	}
	return m
}

// ReadMaster parses the master CSV. The header must contain "type", "id" and
// "name"; other columns are ignored.
func ReadMaster(r io.Reader) (*Master, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read master: %w", err)
	}
	return MasterFromRecords(records)
}

// MasterFromRecords builds a master from a header row followed by data rows,
// as read from a CSV file or a spreadsheet range.
func MasterFromRecords(records [][]string) (*Master, error) {
	if len(records) == 0 {
		return nil, errors.New("master has no header row")
	}
	cols := map[string]int{}
	for i, h := range records[0] {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, want := range []string{"type", "id", "name"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("master header missing column %q", want)
		}
	}
	var rows []MasterRow
	for _, rec := range records[1:] {
		row := MasterRow{
			Type: field(rec, cols["type"]),
			ID:   field(rec, cols["id"]),
			Name: field(rec, cols["name"]),
		}
		if row.Type == "" || row.ID == "" {
			continue
		}
		rows = append(rows, row)
	}
	return NewMaster(rows), nil
}

// Label returns the master name for an element id, searching elements then items.
func (m *Master) Label(id string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, t := range []string{TypeElement, TypeItem} {
		if r, ok := m.rows[t][id]; ok {
			return r.Name, true
		}
	}
	return "", false
}

// Count returns the number of rows of a type.
func (m *Master) Count(typ string) int {
	if m == nil {
		return 0
	}
	return len(m.rows[typ])
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
