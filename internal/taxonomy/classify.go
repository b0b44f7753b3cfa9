// Package taxonomy reclassifies site expense codes into the budget taxonomy.
//
// Classification is a plain lookup over static tables: a direct code table
// keyed by the leading integer of the expense code, an ordered keyword list
// for records without a code, and a catch-all entry. Every outcome that is
// not a 1:1 mapping carries a rationale so it can be listed for review.
package taxonomy

import (
	"fmt"
	"strconv"
	"strings"

	"genka/internal/core"
)

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	codes    map[int]CodeRule
	keywords []KeywordRule
}

// NewClassifier builds a classifier from a code table and a keyword priority
// list. A later code rule for the same number replaces an earlier one.
func NewClassifier(codes []CodeRule, keywords []KeywordRule) *Classifier {
	c := &Classifier{
		codes:    make(map[int]CodeRule, len(codes)),
		keywords: append([]KeywordRule(nil), keywords...),
	}
	for _, r := range codes {
		c.codes[r.Code] = r
	}
	return c
}

// Default returns a classifier over the built-in tables.
func Default() *Classifier {
	return NewClassifier(defaultCodes, defaultKeywords)
}

// ParseCode returns the integer before the first "." of codes like "14.外注費".
func ParseCode(s string) (int, bool) {
	head, _, _ := strings.Cut(s, ".")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return n, true
}

// CategoryForCode derives the budget band from the code's numeric range.
func CategoryForCode(n int) core.Category {
	switch {
	case n >= 10 && n <= 19:
		return core.DirectWork
	case n >= 30 && n <= 39:
		return core.CommonTemporary
	case n >= 50 && n <= 69:
		return core.SiteManagement
	}
	return core.SiteManagement
}

// Lookup returns the direct table entry for a code number.
func (c *Classifier) Lookup(n int) (core.TaxonomyEntry, bool) {
	r, ok := c.codes[n]
	if !ok {
		return core.TaxonomyEntry{}, false
	}
	return core.TaxonomyEntry{
		ElementID: r.ElementID,
		Label:     r.Label,
		Category:  CategoryForCode(n),
		Inferred:  r.Review != "",
		Rationale: r.Review,
	}, true
}

// Classify maps an expense code to a taxonomy entry. A nil code means the
// record had no code at all and the description is used instead.
func (c *Classifier) Classify(code *string, description string) core.TaxonomyEntry {
	if code == nil {
		return c.Infer(description)
	}
	if n, ok := ParseCode(*code); ok {
		if e, ok := c.Lookup(n); ok {
			return e
		}
	}
	e := CatchAll
	e.Inferred = true
	e.Rationale = fmt.Sprintf("REVIEW: 未知の経費コード '%s'", *code)
	return e
}

// Infer classifies a record without a code from its description.
func (c *Classifier) Infer(description string) core.TaxonomyEntry {
	e := CatchAll
	e.Inferred = true
	if description == "" {
		e.Rationale = "REVIEW: 経費項目未付与"
		return e
	}
	for _, k := range c.keywords {
		if strings.Contains(description, k.Keyword) {
			return core.TaxonomyEntry{
				ElementID: k.ElementID,
				Label:     k.Label,
				Category:  k.Category,
				Inferred:  true,
				Rationale: fmt.Sprintf("REVIEW: 内訳'%s'から%sと推定", description, k.Label),
			}
		}
	}
	e.Rationale = fmt.Sprintf("REVIEW: 経費項目未付与（内訳: %s）", description)
	return e
}

// Keywords returns the keyword priority list in match order.
func (c *Classifier) Keywords() []KeywordRule {
	return append([]KeywordRule(nil), c.keywords...)
}
