package core

import (
	"errors"
	"strings"
	"time"
)

const (
	DirectWork      Category = "DirectWork"
	CommonTemporary Category = "CommonTemporary"
	SiteManagement  Category = "SiteManagement"
)

const (
	Subcontractor VendorRole = "subcontractor"
	Supplier      VendorRole = "supplier"
	Service       VendorRole = "service"
	Retail        VendorRole = "retail"
)

type (
	// Category is the budget band a classified payment belongs to.
	Category string

	VendorRole string

	Money struct {
		Yen int64
	}

	// Period pairs a source period label (e.g. "10月度") with its calendar month.
	Period struct {
		Label string
		Month string // YYYY-MM
	}

	// TaxonomyEntry is the target of a classification.
	TaxonomyEntry struct {
		ElementID string
		Label     string
		Category  Category
		Inferred  bool   // true when the entry was not mapped 1:1 from a known code
		Rationale string // human-readable reason, set whenever manual review is needed
	}

	// RawPayment is one payment row as received. A nil ExpenseCode means the
	// source had no code at all; a nil Amount is an offset-only record.
	RawPayment struct {
		Vendor       string
		ExpenseCode  *string
		Amount       *int64
		Offset       int64
		OffsetTarget string
		Description  string
		Note         string
		// Problems lists input values that could not be read.
		Problems []string
	}

	// LineItem is a classified payment in the 18-column output layout.
	LineItem struct {
		Seq          int
		Category     Category
		WorkType     string
		SubWorkType  string
		ElementID    string
		ElementLabel string
		Vendor       string
		Period       string // YYYY-MM
		PeriodLabel  string
		Quantity     int64
		Unit         string
		UnitPrice    int64
		Amount       int64
		Offset       int64
		OffsetTarget string
		TaxClass     string
		Tax          int64
		Total        int64
		BoxID        string
		Note         string
		Inferred     bool
	}

	Vendor struct {
		ID     string
		Name   string
		Role   VendorRole
		Active bool
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyElement    = errors.New("empty element id")
	ErrMissingData     = errors.New("missing data section")
)

// Categories lists the bands in box-prefix order.
func Categories() []Category {
	return []Category{DirectWork, CommonTemporary, SiteManagement}
}

func (c Category) IsValid() bool {
	switch c {
	case DirectWork, CommonTemporary, SiteManagement:
		return true
	}
	return false
}

// Label returns the Japanese name used in the output sheets.
func (c Category) Label() string {
	switch c {
	case DirectWork:
		return "直接工事費"
	case CommonTemporary:
		return "共通仮設費"
	default:
		return "現場管理費"
	}
}

// Prefix returns the 3-character budget box prefix.
func (c Category) Prefix() string {
	switch c {
	case DirectWork:
		return "C01"
	case CommonTemporary:
		return "C02"
	default:
		return "C03"
	}
}

// CategoryFromLabel maps either the Go name or the Japanese label back to a Category.
func CategoryFromLabel(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if s == string(c) || s == c.Label() || s == c.Prefix() {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (p Period) Validate() error {
	if strings.TrimSpace(p.Label) == "" {
		return errors.New("period label cannot be empty")
	}
	if _, err := time.Parse("2006-01", p.Month); err != nil {
		return ErrInvalidPeriod
	}
	return nil
}

func (e TaxonomyEntry) Validate() error {
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(e.ElementID) == "" {
		return ErrEmptyElement
	}
	if e.Inferred && strings.TrimSpace(e.Rationale) == "" {
		return errors.New("inferred entry without rationale")
	}
	return nil
}

// AmountOrZero treats a missing amount as zero.
func (p RawPayment) AmountOrZero() int64 {
	if p.Amount == nil {
		return 0
	}
	return *p.Amount
}

func (li LineItem) Validate() error {
	if li.Seq < 1 {
		return errors.New("sequence must start at 1")
	}
	if !li.Category.IsValid() {
		return ErrInvalidCategory
	}
	if li.ElementID == "" {
		return ErrEmptyElement
	}
	if li.Total != li.Amount+li.Tax {
		return ErrInvalidAmount
	}
	return nil
}
