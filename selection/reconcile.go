package selection

import (
	"errors"
	"fmt"

	"github.com/bqhou/unitai/catalog"
)

// ErrUnknownUnit is returned when a measurement names a unit its category does not have.
var ErrUnknownUnit = errors.New("unit not found in catalog")

// EventKind identifies which field a caller changed.
type EventKind int

const (
	// CategoryChanged replaces the category.
	CategoryChanged EventKind = iota
	// DirectionChanged replaces the direction.
	DirectionChanged
	// FromUnitChanged is an explicit pick of the source unit.
	FromUnitChanged
	// ToUnitChanged is an explicit pick of the target unit.
	ToUnitChanged
	// ValueChanged sets or clears the entered value.
	ValueChanged
)

func (k EventKind) String() string {
	switch k {
	case CategoryChanged:
		return "category"
	case DirectionChanged:
		return "direction"
	case FromUnitChanged:
		return "from_unit"
	case ToUnitChanged:
		return "to_unit"
	case ValueChanged:
		return "value"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a single field change. Only the field matching Kind is read.
type Event struct {
	Kind      EventKind
	Category  catalog.Category
	Direction Direction
	UnitID    string
	Value     *float64
}

// ChangeCategory builds a CategoryChanged event.
func ChangeCategory(c catalog.Category) Event { return Event{Kind: CategoryChanged, Category: c} }

// ChangeDirection builds a DirectionChanged event.
func ChangeDirection(d Direction) Event { return Event{Kind: DirectionChanged, Direction: d} }

// ChangeFromUnit builds a FromUnitChanged event.
func ChangeFromUnit(id string) Event { return Event{Kind: FromUnitChanged, UnitID: id} }

// ChangeToUnit builds a ToUnitChanged event.
func ChangeToUnit(id string) Event { return Event{Kind: ToUnitChanged, UnitID: id} }

// ChangeValue builds a ValueChanged event carrying v.
func ChangeValue(v float64) Event { return Event{Kind: ValueChanged, Value: &v} }

// ClearValue builds a ValueChanged event that removes the value.
func ClearValue() Event { return Event{Kind: ValueChanged} }

// unitsFunc lists the units of a category in one system, in catalog order.
type unitsFunc func(catalog.Category, catalog.System) []catalog.Unit

// Reconcile applies ev to prev and returns a selection whose units are valid
// for its category and direction.
//
//   - Category and direction changes re-validate both sides. An invalid
//     source resets to the first source unit and re-derives the target; else
//     an invalid target is re-derived from the current source; else nothing
//     changes.
//   - An explicit source pick always re-derives the target.
//   - An explicit target pick is accepted as is.
//   - A value change leaves the units alone.
func Reconcile(prev State, ev Event) State {
	return reconcileWith(prev, ev, catalog.UnitsForSystem)
}

// Normalize runs the category/direction rule on s without any event. It is
// what Reconcile applies after a category or direction change.
func Normalize(s State) State {
	return normalizeWith(s, catalog.UnitsForSystem)
}

func reconcileWith(prev State, ev Event, list unitsFunc) State {
	next := prev
	switch ev.Kind {
	case CategoryChanged:
		next.Category = ev.Category
		return normalizeWith(next, list)
	case DirectionChanged:
		next.Direction = ev.Direction
		return normalizeWith(next, list)
	case FromUnitChanged:
		next.FromUnit = ev.UnitID
		targets := list(next.Category, next.Direction.Target())
		next.ToUnit = recommendTarget(next.FromUnit, targets)
		return next
	case ToUnitChanged:
		next.ToUnit = ev.UnitID
		return next
	case ValueChanged:
		if ev.Value == nil {
			next.Value = nil
		} else {
			v := *ev.Value
			next.Value = &v
		}
		return next
	default:
		return next
	}
}

func normalizeWith(s State, list unitsFunc) State {
	sources := list(s.Category, s.Direction.Source())
	targets := list(s.Category, s.Direction.Target())

	fromValid := catalog.Contains(sources, s.FromUnit)
	toValid := catalog.Contains(targets, s.ToUnit)

	if !fromValid && len(sources) > 0 {
		s.FromUnit = sources[0].ID
		s.ToUnit = recommendTarget(s.FromUnit, targets)
	} else if !toValid && len(targets) > 0 {
		s.ToUnit = recommendTarget(s.FromUnit, targets)
	}

	// A side with no units at all cannot hold a selection.
	if len(sources) == 0 {
		s.FromUnit = ""
	}
	if len(targets) == 0 {
		s.ToUnit = ""
	}
	return s
}

// recommendTarget picks the curated partner of fromID when it is among
// targets, else the first target. It returns "" when targets is empty.
func recommendTarget(fromID string, targets []catalog.Unit) string {
	if rec, ok := catalog.Recommended(fromID); ok && catalog.Contains(targets, rec) {
		return rec
	}
	if len(targets) == 0 {
		return ""
	}
	return targets[0].ID
}

// Measurement is a fully specified conversion proposed by an outside source
// such as the smart-lookup collaborator.
type Measurement struct {
	Category   catalog.Category
	Value      float64
	FromUnitID string
	ToUnitID   string
}

// ApplyLookup replaces prev with m as one atomic update: category, then a
// direction derived from the source unit's system, then both units and the
// value, followed by the category/direction rule. When m.FromUnitID is not a
// unit of m.Category, prev is returned unchanged with ErrUnknownUnit.
func ApplyLookup(prev State, m Measurement) (State, error) {
	if !m.Category.Valid() {
		return prev, fmt.Errorf("%w: category %d", catalog.ErrUnknownCategory, int(m.Category))
	}
	from, ok := catalog.Find(m.Category, m.FromUnitID)
	if !ok {
		return prev, fmt.Errorf("%w: %q in %s", ErrUnknownUnit, m.FromUnitID, m.Category)
	}

	v := m.Value
	next := State{
		Category:  m.Category,
		Direction: DirectionFrom(from.System),
		FromUnit:  from.ID,
		ToUnit:    m.ToUnitID,
		Value:     &v,
	}
	return Normalize(next), nil
}
