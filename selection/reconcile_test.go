package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/internal/testutil"
	"github.com/bqhou/unitai/selection"
)

func TestDefault(t *testing.T) {
	s := selection.Default()
	assert.Equal(t, catalog.Distance, s.Category)
	assert.Equal(t, selection.USToMetric, s.Direction)
	assert.Equal(t, "foot", s.FromUnit)
	assert.Equal(t, "meter", s.ToUnit)
	assert.False(t, s.HasValue())
	assert.True(t, s.Valid())
}

func TestReconcile_CategoryChangeResetsToFirstSourceAndRecommendedTarget(t *testing.T) {
	s := selection.Reconcile(selection.Default(), selection.ChangeCategory(catalog.Weight))

	assert.Equal(t, catalog.Weight, s.Category)
	assert.Equal(t, "ounce", s.FromUnit)
	assert.Equal(t, "gram", s.ToUnit)
	assert.True(t, s.Valid())
}

func TestReconcile_DirectionFlipWithBothSidesInvalid(t *testing.T) {
	prev := testutil.NewStateBuilder().From("inch").To("cm").Build()

	s := selection.Reconcile(prev, selection.ChangeDirection(selection.MetricToUS))

	assert.Equal(t, selection.MetricToUS, s.Direction)
	assert.Equal(t, "mm", s.FromUnit)
	assert.Equal(t, "inch", s.ToUnit)
}

func TestReconcile_OnlyTargetInvalidKeepsSource(t *testing.T) {
	// Source already metric while direction still says US: flip makes it valid,
	// target (metric) becomes invalid and is re-derived from the current source.
	prev := testutil.NewStateBuilder().From("km").To("meter").Build()

	s := selection.Reconcile(prev, selection.ChangeDirection(selection.MetricToUS))

	assert.Equal(t, "km", s.FromUnit)
	assert.Equal(t, "mile", s.ToUnit)
}

func TestReconcile_TargetRederivedFromCurrentSource(t *testing.T) {
	prev := testutil.NewStateBuilder().MetricToUS().From("meter").To("sq_m").Build()

	s := selection.Reconcile(prev, selection.ChangeDirection(selection.MetricToUS))

	assert.Equal(t, "meter", s.FromUnit)
	assert.Equal(t, "foot", s.ToUnit)
}

func TestReconcile_ValidSelectionUntouched(t *testing.T) {
	prev := testutil.NewStateBuilder().From("mile").To("cm").Value(5).Build()

	s := selection.Reconcile(prev, selection.ChangeCategory(catalog.Distance))

	assert.True(t, prev.Equal(s))
}

func TestReconcile_FromUnitChangeAlwaysOverwritesTarget(t *testing.T) {
	prev := testutil.NewStateBuilder().From("foot").To("km").Build()

	s := selection.Reconcile(prev, selection.ChangeFromUnit("inch"))
	assert.Equal(t, "inch", s.FromUnit)
	assert.Equal(t, "cm", s.ToUnit)

	s = selection.Reconcile(s, selection.ChangeFromUnit("mile"))
	assert.Equal(t, "km", s.ToUnit)
}

func TestReconcile_ToUnitChangeAccepted(t *testing.T) {
	s := selection.Reconcile(selection.Default(), selection.ChangeToUnit("mm"))
	assert.Equal(t, "foot", s.FromUnit)
	assert.Equal(t, "mm", s.ToUnit)
}

func TestReconcile_ValueChangeLeavesUnits(t *testing.T) {
	prev := selection.Default()

	s := selection.Reconcile(prev, selection.ChangeValue(-2.5))
	require.True(t, s.HasValue())
	assert.Equal(t, -2.5, *s.Value)
	assert.Equal(t, prev.FromUnit, s.FromUnit)
	assert.Equal(t, prev.ToUnit, s.ToUnit)
	assert.False(t, prev.HasValue(), "previous state must not be mutated")

	s = selection.Reconcile(s, selection.ClearValue())
	assert.False(t, s.HasValue())
}

func TestReconcile_Idempotent(t *testing.T) {
	events := []selection.Event{
		selection.ChangeCategory(catalog.Volume),
		selection.ChangeDirection(selection.MetricToUS),
		selection.ChangeFromUnit("dl"),
		selection.ChangeToUnit("pint"),
		selection.ChangeValue(3),
	}
	s := selection.Default()
	for _, ev := range events {
		once := selection.Reconcile(s, ev)
		twice := selection.Reconcile(once, ev)
		assert.True(t, once.Equal(twice), "event %s", ev.Kind)
		s = once
	}
}

func TestReconcile_EveryCategoryAndDirectionYieldsValidState(t *testing.T) {
	for _, c := range catalog.Categories() {
		for _, d := range []selection.Direction{selection.USToMetric, selection.MetricToUS} {
			s := selection.Reconcile(selection.Default(), selection.ChangeCategory(c))
			s = selection.Reconcile(s, selection.ChangeDirection(d))
			assert.True(t, s.Valid(), "%s %s -> %s", c, d, s)

			rec, ok := catalog.Recommended(s.FromUnit)
			require.True(t, ok)
			assert.Equal(t, rec, s.ToUnit, "%s %s", c, d)
		}
	}
}

func TestApplyLookup_DirectionFollowsSourceSystem(t *testing.T) {
	prev := testutil.NewStateBuilder().MetricToUS().From("mm").To("inch").Build()

	s, err := selection.ApplyLookup(prev, selection.Measurement{
		Category:   catalog.Distance,
		Value:      316,
		FromUnitID: "foot",
		ToUnitID:   "meter",
	})
	require.NoError(t, err)

	assert.Equal(t, selection.USToMetric, s.Direction)
	assert.Equal(t, "foot", s.FromUnit)
	assert.Equal(t, "meter", s.ToUnit)
	require.True(t, s.HasValue())
	assert.Equal(t, 316.0, *s.Value)
}

func TestApplyLookup_MetricSourceAndBadTargetCorrected(t *testing.T) {
	s, err := selection.ApplyLookup(selection.Default(), selection.Measurement{
		Category:   catalog.Weight,
		Value:      171,
		FromUnitID: "gram",
		ToUnitID:   "kg",
	})
	require.NoError(t, err)

	assert.Equal(t, selection.MetricToUS, s.Direction)
	assert.Equal(t, "gram", s.FromUnit)
	assert.Equal(t, "ounce", s.ToUnit)
}

func TestApplyLookup_UnknownSourceLeavesStateUntouched(t *testing.T) {
	prev := testutil.NewStateBuilder().Value(1).Build()

	s, err := selection.ApplyLookup(prev, selection.Measurement{
		Category:   catalog.Speed,
		Value:      88,
		FromUnitID: "knot",
		ToUnitID:   "kmh",
	})

	assert.ErrorIs(t, err, selection.ErrUnknownUnit)
	assert.True(t, prev.Equal(s))
}

func TestApplyLookup_UnitFromOtherCategoryRejected(t *testing.T) {
	_, err := selection.ApplyLookup(selection.Default(), selection.Measurement{
		Category:   catalog.Volume,
		FromUnitID: "mile",
		ToUnitID:   "km",
	})
	assert.ErrorIs(t, err, selection.ErrUnknownUnit)
}

func TestParseDirection(t *testing.T) {
	d, err := selection.ParseDirection("metric-to-us")
	require.NoError(t, err)
	assert.Equal(t, selection.MetricToUS, d)
	assert.Equal(t, selection.USToMetric, d.Flip())

	_, err = selection.ParseDirection("sideways")
	assert.Error(t, err)
}

func TestState_Units(t *testing.T) {
	from, to, ok := selection.Default().Units()
	require.True(t, ok)
	assert.Equal(t, "Feet", from.Name)
	assert.Equal(t, "Meters", to.Name)

	_, _, ok = testutil.NewStateBuilder().Category(catalog.Speed).Build().Units()
	assert.False(t, ok)
}
