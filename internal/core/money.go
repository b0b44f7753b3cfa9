// Package core provides the domain types shared by the classification,
// aggregation and validation packages.
//
// This file contains helpers for parsing and formatting yen amounts. All
// amounts are whole yen held in int64; there is no fractional currency.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// ParseYen converts a yen string to an integer amount.
//
// It accepts thousands separators (1,234,567), full-width commas, an optional
// leading "¥" or trailing "円" and a leading minus sign for credits.
//
// Examples:
//
//	ParseYen("10,933,337") -> 10933337, nil
//	ParseYen("¥500")       -> 500, nil
//	ParseYen("-1,000円")   -> -1000, nil
//	ParseYen("12.5")       -> 0, ErrInvalidAmount
func ParseYen(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	s = strings.TrimSuffix(s, "円")
	s = strings.NewReplacer(",", "", "，", "").Replace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if neg {
		v = -v
	}
	return v, nil
}

// FormatYen renders an amount with thousands separators for reports.
func FormatYen(v int64) string {
	return humanize.Comma(v)
}

// String implements fmt.Stringer.
func (m Money) String() string {
	return FormatYen(m.Yen) + "円"
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Yen: m.Yen + o.Yen}
}

func (m Money) IsZero() bool {
	return m.Yen == 0
}
