package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitsForSystem_PreservesOrder(t *testing.T) {
	us := UnitsForSystem(Distance, SystemUS)
	require.Len(t, us, 4)
	assert.Equal(t, []string{"inch", "foot", "yard", "mile"}, ids(us))

	metric := UnitsForSystem(Distance, SystemMetric)
	assert.Equal(t, []string{"mm", "cm", "meter", "km"}, ids(metric))
}

func TestUnitsFor_ReturnsCopy(t *testing.T) {
	a := UnitsFor(Weight)
	a[0].ID = "mutated"

	b := UnitsFor(Weight)
	assert.Equal(t, "ounce", b[0].ID)
}

func TestUnitsFor_UnknownCategoryPanics(t *testing.T) {
	assert.Panics(t, func() { UnitsFor(Category(42)) })
}

func TestCatalog_Invariants(t *testing.T) {
	seen := map[string]Category{}
	for _, c := range Categories() {
		units := UnitsFor(c)
		require.NotEmpty(t, units, c.String())

		base := 0
		for _, u := range units {
			assert.Greater(t, u.Factor, 0.0, u.ID)
			if u.Factor == 1 {
				base++
			}
			prev, dup := seen[u.ID]
			assert.False(t, dup, "id %q reused in %s and %s", u.ID, prev, c)
			seen[u.ID] = c
		}
		if c != Temperature {
			assert.Equal(t, 1, base, "%s should have exactly one base unit", c)
		}
		assert.NotEmpty(t, UnitsForSystem(c, SystemUS), c.String())
		assert.NotEmpty(t, UnitsForSystem(c, SystemMetric), c.String())
	}
}

func TestRecommended_TargetsOppositeSystemInSameCategory(t *testing.T) {
	for _, c := range Categories() {
		for _, from := range UnitsFor(c) {
			to, ok := Recommended(from.ID)
			require.True(t, ok, "missing recommendation for %s", from.ID)

			target, found := Find(c, to)
			require.True(t, found, "%s -> %s not in %s", from.ID, to, c)
			assert.Equal(t, from.System.Opposite(), target.System, "%s -> %s", from.ID, to)
		}
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" volume ")
	require.NoError(t, err)
	assert.Equal(t, Volume, c)

	_, err = ParseCategory("Time")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategory_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[string]Category{"c": Speed})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"Speed"}`, string(data))

	var decoded struct {
		C Category `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"c":"temperature"}`), &decoded))
	assert.Equal(t, Temperature, decoded.C)
}

func TestAvailableUnits(t *testing.T) {
	avail := AvailableUnits()
	assert.Len(t, avail, len(Categories()))
	assert.Equal(t, []string{"fahrenheit", "celsius"}, avail["Temperature"])
	assert.Equal(t, []string{"mph", "fps", "kmh", "ms"}, avail["Speed"])
}

func TestFind(t *testing.T) {
	u, ok := Find(Area, "hectare")
	require.True(t, ok)
	assert.Equal(t, "ha", u.Abbreviation)

	_, ok = Find(Area, "meter")
	assert.False(t, ok)
}

func ids(units []Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}
