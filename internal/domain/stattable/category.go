package stattable

import (
	"fmt"
	"strings"
)

// Category names one statistics table. Values match the provider page keys.
type Category string

const (
	CategoryStandard    Category = "standard"
	CategoryPassing     Category = "passing"
	CategoryShooting    Category = "shooting"
	CategoryKeeper      Category = "keeper"
	CategoryDefense     Category = "defense"
	CategoryPossession  Category = "possession"
	CategoryMisc        Category = "misc"
	CategoryPlayingTime Category = "playing_time"
)

var allCategories = []Category{
	CategoryStandard,
	CategoryPassing,
	CategoryShooting,
	CategoryKeeper,
	CategoryDefense,
	CategoryPossession,
	CategoryMisc,
	CategoryPlayingTime,
}

func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown stat category %q", raw)
	}
	return c, nil
}

// ParseCategories parses a list, skipping blanks and duplicates.
func ParseCategories(raw []string) ([]Category, error) {
	out := make([]Category, 0, len(raw))
	seen := make(map[Category]struct{}, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item) == "" {
			continue
		}
		c, err := ParseCategory(item)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}
