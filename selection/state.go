// Package selection keeps a (category, direction, from, to) selection valid
// while a caller changes one field at a time.
//
// Everything here is a pure function over values: the caller owns the State
// and replaces it with whatever Reconcile returns. Nothing in this package
// holds state between calls.
package selection

import (
	"fmt"

	"github.com/bqhou/unitai/catalog"
)

// Direction names which system is the conversion source.
type Direction string

const (
	// USToMetric converts from US customary into metric units.
	USToMetric Direction = "us-to-metric"
	// MetricToUS converts from metric into US customary units.
	MetricToUS Direction = "metric-to-us"
)

// ParseDirection accepts the two canonical spellings.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case USToMetric, MetricToUS:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q (want %q or %q)", s, USToMetric, MetricToUS)
	}
}

// Source is the system source units are drawn from.
func (d Direction) Source() catalog.System {
	if d == MetricToUS {
		return catalog.SystemMetric
	}
	return catalog.SystemUS
}

// Target is the system target units are drawn from.
func (d Direction) Target() catalog.System { return d.Source().Opposite() }

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == MetricToUS {
		return USToMetric
	}
	return MetricToUS
}

// DirectionFrom returns the direction whose source side is sys.
func DirectionFrom(sys catalog.System) Direction {
	if sys == catalog.SystemUS {
		return USToMetric
	}
	return MetricToUS
}

// State is the selection a caller keeps between events. Value is nil until
// the user enters a number.
type State struct {
	Category  catalog.Category `json:"category"`
	Direction Direction        `json:"direction"`
	FromUnit  string           `json:"fromUnit"`
	ToUnit    string           `json:"toUnit"`
	Value     *float64         `json:"value,omitempty"`
}

// Default is the initial selection: 1 foot to meters, no value.
func Default() State {
	return State{
		Category:  catalog.Distance,
		Direction: USToMetric,
		FromUnit:  "foot",
		ToUnit:    "meter",
	}
}

// HasValue reports whether a value has been entered.
func (s State) HasValue() bool { return s.Value != nil }

// ValueOr returns the entered value or fallback.
func (s State) ValueOr(fallback float64) float64 {
	if s.Value == nil {
		return fallback
	}
	return *s.Value
}

// WithValue returns a copy of s carrying v.
func (s State) WithValue(v float64) State {
	s.Value = &v
	return s
}

// SourceUnits lists the units valid for FromUnit.
func (s State) SourceUnits() []catalog.Unit {
	return catalog.UnitsForSystem(s.Category, s.Direction.Source())
}

// TargetUnits lists the units valid for ToUnit.
func (s State) TargetUnits() []catalog.Unit {
	return catalog.UnitsForSystem(s.Category, s.Direction.Target())
}

// Valid reports whether both unit ids sit on the side their direction demands.
func (s State) Valid() bool {
	return catalog.Contains(s.SourceUnits(), s.FromUnit) && catalog.Contains(s.TargetUnits(), s.ToUnit)
}

// Units resolves both ids inside the category. ok is false when either one
// does not resolve.
func (s State) Units() (from, to catalog.Unit, ok bool) {
	from, okFrom := catalog.Find(s.Category, s.FromUnit)
	to, okTo := catalog.Find(s.Category, s.ToUnit)
	return from, to, okFrom && okTo
}

// Equal compares two states including the value.
func (s State) Equal(o State) bool {
	if s.Category != o.Category || s.Direction != o.Direction || s.FromUnit != o.FromUnit || s.ToUnit != o.ToUnit {
		return false
	}
	if s.Value == nil || o.Value == nil {
		return s.Value == nil && o.Value == nil
	}
	return *s.Value == *o.Value
}

// String renders the selection for logs.
func (s State) String() string {
	v := "-"
	if s.Value != nil {
		v = fmt.Sprintf("%g", *s.Value)
	}
	return fmt.Sprintf("%s %s %s->%s value=%s", s.Category, s.Direction, s.FromUnit, s.ToUnit, v)
}
