// Package source decodes the monthly payment export into ledger batches.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"genka/internal/core"
	"genka/internal/ledger"
)

const paymentsKey = "支払明細"

type document struct {
	Data map[string]map[string]json.RawMessage `json:"data"`
}

type rawPayment struct {
	Vendor       *string         `json:"支払先"`
	ExpenseCode  *string         `json:"経費項目"`
	Amount       json.RawMessage `json:"支払金額_税抜"`
	Offset       json.RawMessage `json:"相殺"`
	OffsetTarget *string         `json:"相殺先"`
	Description  *string         `json:"内訳"`
	Note         *string         `json:"備考"`
}

// Set is the decoded payment export.
type Set struct {
	Batches  []ledger.Batch
	Warnings []string
}

// Count returns the number of payments across batches.
func (s Set) Count() int {
	n := 0
	for _, b := range s.Batches {
		n += len(b.Payments)
	}
	return n
}

// DecodePayments reads the export and returns one batch per configured period,
// in the configured order. A missing or unreadable top-level document is an
// error; problems inside single records are downgraded to notes so the rest
// of the batch still loads.
func DecodePayments(r io.Reader, periods []core.Period) (Set, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Set{}, fmt.Errorf("decode payments: %w", err)
	}
	if doc.Data == nil {
		return Set{}, core.ErrMissingData
	}

	var set Set
	configured := map[string]bool{}
	for _, p := range periods {
		configured[p.Label] = true
		section, ok := doc.Data[p.Label]
		if !ok {
			set.Warnings = append(set.Warnings, fmt.Sprintf("%sのデータが見つかりません", p.Label))
			continue
		}
		payments, warns := decodeSection(p.Label, section[paymentsKey])
		set.Warnings = append(set.Warnings, warns...)
		set.Batches = append(set.Batches, ledger.Batch{Period: p, Payments: payments})
	}

	var extra []string
	for label := range doc.Data {
		if !configured[label] {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	for _, label := range extra {
		set.Warnings = append(set.Warnings, fmt.Sprintf("%sは対象期間外のためスキップ", label))
	}
	return set, nil
}

func decodeSection(label string, raw json.RawMessage) ([]core.RawPayment, []string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, []string{fmt.Sprintf("%s: %sを読み込めません: %v", label, paymentsKey, err)}
	}
	var (
		out   []core.RawPayment
		warns []string
	)
	for i, row := range rows {
		var rp rawPayment
		if err := json.Unmarshal(row, &rp); err != nil {
			// Keep the row so sequence numbers still match the source.
			warns = append(warns, fmt.Sprintf("%s %d件目: 形式不正 (%v)", label, i+1, err))
			out = append(out, core.RawPayment{Note: reviewMalformed, Problems: []string{reviewMalformed}})
			continue
		}
		p, problems := rp.payment()
		for _, w := range problems {
			warns = append(warns, fmt.Sprintf("%s %d件目: %s", label, i+1, w))
		}
		out = append(out, p)
	}
	return out, warns
}

const (
	reviewMalformed = "REVIEW: 明細の形式不正"
	reviewAmount    = "REVIEW: 金額不正"
	reviewOffset    = "REVIEW: 相殺不正"
)

// payment converts a decoded row. Unreadable amounts and offsets are left at
// their zero value and reported both as warnings and as review problems.
func (rp rawPayment) payment() (core.RawPayment, []string) {
	p := core.RawPayment{
		Vendor:       deref(rp.Vendor),
		ExpenseCode:  rp.ExpenseCode,
		OffsetTarget: deref(rp.OffsetTarget),
		Description:  deref(rp.Description),
		Note:         deref(rp.Note),
	}
	var warns []string
	flag := func(review, warn string) {
		warns = append(warns, warn)
		p.Problems = append(p.Problems, review)
		p.Note = strings.TrimSpace(p.Note + " " + review)
	}
	if amount, ok := parseAmount(rp.Amount); ok {
		p.Amount = amount
	} else {
		flag(reviewAmount, fmt.Sprintf("金額を解釈できません: %s", rp.Amount))
	}
	if offset, ok := parseAmount(rp.Offset); !ok {
		flag(reviewOffset, fmt.Sprintf("相殺を解釈できません: %s", rp.Offset))
	} else if offset != nil {
		p.Offset = *offset
	}
	return p, warns
}

// parseAmount accepts JSON numbers, yen strings and null. Whole-valued
// floats such as 1200.0 are accepted; fractional yen are not.
func parseAmount(raw json.RawMessage) (*int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		if strings.TrimSpace(s) == "" {
			return nil, true
		}
		v, err := core.ParseYen(s)
		if err != nil {
			return nil, false
		}
		return &v, true
	}
	s := string(raw)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return nil, false
	}
	v := int64(f)
	return &v, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
