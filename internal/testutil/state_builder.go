package testutil

import (
	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/selection"
)

// StateBuilder provides a fluent helper for constructing selection states in tests.
// Example:
//
//	s := NewStateBuilder().Category(catalog.Distance).From("inch").To("cm").Value(3).Build()
//
// Unset fields keep the values of selection.Default().
type StateBuilder struct {
	state selection.State
}

// NewStateBuilder starts from the default selection.
func NewStateBuilder() *StateBuilder { return &StateBuilder{state: selection.Default()} }

// Category sets the category (chainable).
func (b *StateBuilder) Category(c catalog.Category) *StateBuilder { b.state.Category = c; return b }

// Direction sets the direction (chainable).
func (b *StateBuilder) Direction(d selection.Direction) *StateBuilder {
	b.state.Direction = d
	return b
}

// MetricToUS is shorthand for Direction(selection.MetricToUS) (chainable).
func (b *StateBuilder) MetricToUS() *StateBuilder { return b.Direction(selection.MetricToUS) }

// From sets the source unit id (chainable).
func (b *StateBuilder) From(id string) *StateBuilder { b.state.FromUnit = id; return b }

// To sets the target unit id (chainable).
func (b *StateBuilder) To(id string) *StateBuilder { b.state.ToUnit = id; return b }

// Value sets the entered value (chainable).
func (b *StateBuilder) Value(v float64) *StateBuilder { b.state.Value = &v; return b }

// NoValue clears the entered value (chainable).
func (b *StateBuilder) NoValue() *StateBuilder { b.state.Value = nil; return b }

// Build returns the assembled state.
func (b *StateBuilder) Build() selection.State { return b.state }
