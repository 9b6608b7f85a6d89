package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned by ParseCategory for names outside the closed set.
var ErrUnknownCategory = errors.New("unknown category")

// System tags which customary grouping a unit belongs to.
type System string

const (
	// SystemUS covers US customary units.
	SystemUS System = "us"
	// SystemMetric covers SI / metric units.
	SystemMetric System = "metric"
)

// Opposite returns the other system.
func (s System) Opposite() System {
	if s == SystemUS {
		return SystemMetric
	}
	return SystemUS
}

// Category is a measurement domain with its own unit list and base unit.
type Category int

const (
	// Distance has meters as base unit.
	Distance Category = iota
	// Weight has grams as base unit.
	Weight
	// Volume has milliliters as base unit.
	Volume
	// Area has square meters as base unit.
	Area
	// Speed has meters per second as base unit.
	Speed
	// Temperature is converted by formula, not by factor.
	Temperature
)

var categoryNames = [...]string{
	Distance:    "Distance",
	Weight:      "Weight",
	Volume:      "Volume",
	Area:        "Area",
	Speed:       "Speed",
	Temperature: "Temperature",
}

// String returns the display name ("Distance", "Weight", ...).
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= Distance && c <= Temperature
}

// MarshalText encodes the category by display name.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category from its display name (case-insensitive).
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory resolves a display name, ignoring case and surrounding space.
func ParseCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	for i, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames))
	for i := range categoryNames {
		out = append(out, Category(i))
	}
	return out
}

// Unit is an immutable unit definition.
type Unit struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Abbreviation string  `json:"abbreviation"`
	System       System  `json:"system"`
	Factor       float64 `json:"factor"` // one of this unit expressed in the category's base unit
}

// UnitsFor returns the units of c in catalog order. The returned slice is a
// copy. An out-of-range category is a programming error and panics.
func UnitsFor(c Category) []Unit {
	units := mustUnits(c)
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}

// UnitsForSystem returns the units of c belonging to sys, preserving catalog
// order. The result may be empty.
func UnitsForSystem(c Category, sys System) []Unit {
	units := mustUnits(c)
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		if u.System == sys {
			out = append(out, u)
		}
	}
	return out
}

// Find returns the unit with the given id inside category c.
func Find(c Category, id string) (Unit, bool) {
	for _, u := range mustUnits(c) {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// Contains reports whether id is present in units.
func Contains(units []Unit, id string) bool {
	for _, u := range units {
		if u.ID == id {
			return true
		}
	}
	return false
}

// Recommended returns the curated default target for a source unit id.
func Recommended(fromID string) (string, bool) {
	to, ok := recommended[fromID]
	return to, ok
}

// AvailableUnits maps every category display name to its unit ids in catalog
// order. This is the vocabulary handed to the smart-lookup collaborator.
func AvailableUnits() map[string][]string {
	out := make(map[string][]string, len(categoryNames))
	for _, c := range Categories() {
		units := mustUnits(c)
		ids := make([]string, len(units))
		for i, u := range units {
			ids[i] = u.ID
		}
		out[c.String()] = ids
	}
	return out
}

func mustUnits(c Category) []Unit {
	if !c.Valid() {
		panic(fmt.Sprintf("catalog: unknown category %d", int(c)))
	}
	return units[c]
}
