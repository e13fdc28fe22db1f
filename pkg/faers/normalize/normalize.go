// Package normalize is the single normalization contract shared by every
// pipeline stage. The event builder and the denominator builder both key
// on Ingredient; keeping the rule in one place is what makes their join
// keys comparable.
package normalize

import "strings"

// Key uppercases and trims a free-text identity field.
func Key(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Ingredient resolves the normalized ingredient identity: the active
// ingredient field when present, otherwise the reported drug name.
// Returns "" when neither carries a usable value.
func Ingredient(activeIngredient, drugName string) string {
	if k := Key(activeIngredient); k != "" {
		return k
	}
	return Key(drugName)
}

// Term cleans a controlled-vocabulary term (reaction PT, indication PT).
func Term(s string) string {
	return Key(s)
}

// Country normalizes a reported country value for exact matching.
func Country(s string) string {
	return Key(s)
}

// Sex standardizes a raw sex code into M, F or U. Anything outside the
// allow-list maps to U rather than being guessed at.
func Sex(raw string) string {
	switch Key(raw) {
	case "M":
		return "M"
	case "F":
		return "F"
	default:
		return "U"
	}
}
