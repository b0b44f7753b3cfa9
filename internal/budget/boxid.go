// Package budget derives budget box identifiers and the forward budget table.
package budget

import (
	"errors"
	"strings"

	"genka/internal/core"
)

// Fallback work-type and sub-work-type for direct work. The payment data does
// not tell works apart, so everything lands in the project's main work type.
const (
	DefaultWorkType    = "W04" // 護岸・海岸工事
	DefaultSubWorkType = "K9901"
)

var ErrInvalidBoxID = errors.New("invalid budget box id")

// Key is the decomposed form of a budget box id.
type Key struct {
	Category    core.Category
	WorkType    string
	SubWorkType string
	ElementID   string
}

// BoxID renders the aggregation key. Work-type segments only exist for
// direct work; other categories are "<prefix>-<element>".
func BoxID(cat core.Category, elementID, workType, subWorkType string) string {
	if cat != core.DirectWork {
		return cat.Prefix() + "-" + elementID
	}
	if workType == "" {
		workType = DefaultWorkType
	}
	if subWorkType == "" {
		subWorkType = DefaultSubWorkType
	}
	return strings.Join([]string{cat.Prefix(), workType, subWorkType, elementID}, "-")
}

// ID renders the key with BoxID.
func (k Key) ID() string {
	return BoxID(k.Category, k.ElementID, k.WorkType, k.SubWorkType)
}

// KeyFor returns the key a classified category and element aggregate under.
func KeyFor(cat core.Category, elementID string) Key {
	k := Key{Category: cat, ElementID: elementID}
	if cat == core.DirectWork {
		k.WorkType = DefaultWorkType
		k.SubWorkType = DefaultSubWorkType
	}
	return k
}

// ParseBoxID decomposes an id produced by BoxID.
func ParseBoxID(id string) (Key, error) {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return Key{}, ErrInvalidBoxID
	}
	cat, err := core.CategoryFromLabel(parts[0])
	if err != nil {
		return Key{}, ErrInvalidBoxID
	}
	switch {
	case cat == core.DirectWork && len(parts) == 4:
		return Key{Category: cat, WorkType: parts[1], SubWorkType: parts[2], ElementID: parts[3]}, nil
	case cat != core.DirectWork && len(parts) == 2:
		return Key{Category: cat, ElementID: parts[1]}, nil
	}
	return Key{}, ErrInvalidBoxID
}
