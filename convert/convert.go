// Package convert implements the factor-based conversion between two units of
// the same category, plus the temperature special case.
//
// Conversion never fails and never rounds. Rounding for display lives in
// format.go.
package convert

import "github.com/bqhou/unitai/catalog"

const (
	fahrenheit = "fahrenheit"
	celsius    = "celsius"
)

// Convert maps value expressed in from into to. For catalog.Temperature only
// the fahrenheit/celsius pair is converted; every other pair (same unit
// included) returns value unchanged. All other categories go through the base
// unit: value*from.Factor/to.Factor. Same-unit conversions return value
// exactly.
func Convert(value float64, from, to catalog.Unit, category catalog.Category) float64 {
	if category == catalog.Temperature {
		switch {
		case from.ID == fahrenheit && to.ID == celsius:
			return (value - 32) * (5.0 / 9.0)
		case from.ID == celsius && to.ID == fahrenheit:
			return value*(9.0/5.0) + 32
		default:
			return value
		}
	}

	if from.ID == to.ID {
		return value
	}
	base := value * from.Factor
	return base / to.Factor
}

// Rate is the value of one from unit expressed in to.
func Rate(from, to catalog.Unit, category catalog.Category) float64 {
	return Convert(1, from, to, category)
}

// ByID resolves both unit ids inside category and converts. ok is false when
// either id is not part of the category.
func ByID(value float64, fromID, toID string, category catalog.Category) (result float64, ok bool) {
	from, okFrom := catalog.Find(category, fromID)
	to, okTo := catalog.Find(category, toID)
	if !okFrom || !okTo {
		return 0, false
	}
	return Convert(value, from, to, category), true
}
