package model

import (
	"errors"
	"strings"
)

// ErrUnknownCategory is returned when input does not name one of the fixed categories.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one label from the fixed closed set classifying an expense.
// The set is a configuration constant, not user-extensible.
type Category int

const (
	Personal Category = iota
	Food
	Family
	Transit
	Bills
	Entertainments
)

var categorySlugs = [...]string{"personal", "food", "family", "transit", "bills", "entertainments"}

var categoryEmojis = [...]string{"🛍️", "🍔", "👨‍👩‍👧‍👦", "🚌", "📄", "🎬"}

var categoryTitles = [...]string{"Personal", "Food", "Family", "Transit", "Bills", "Entertainments"}

// Categories returns the full set in display order.
func Categories() []Category {
	return []Category{Personal, Food, Family, Transit, Bills, Entertainments}
}

// String returns the stable slug used in storage and callback data.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categorySlugs) {
		return "unknown"
	}
	return categorySlugs[c]
}

func (c Category) Title() string {
	if c < 0 || int(c) >= len(categoryTitles) {
		return "Unknown"
	}
	return categoryTitles[c]
}

func (c Category) Emoji() string {
	if c < 0 || int(c) >= len(categoryEmojis) {
		return "❓"
	}
	return categoryEmojis[c]
}

// ParseCategory maps a slug back to its Category. Case-insensitive.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, slug := range categorySlugs {
		if s == slug {
			return Category(i), nil
		}
	}
	return 0, ErrUnknownCategory
}
