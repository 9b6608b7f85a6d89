package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bqhou/unitai/cache"
	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/model"
	"github.com/bqhou/unitai/selection"
)

// mockModel answers with the text or error given to Return.
type mockModel struct{ mock.Mock }

func (m *mockModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	if err := args.Error(1); err != nil {
		errCh <- err
	} else {
		respCh <- model.Response{Text: args.String(0), FinishReason: "stop"}
	}
	close(respCh)
	close(errCh)
	return respCh, errCh
}

func (m *mockModel) Info() model.Info { return model.Info{Name: "mock", Provider: "mock"} }

func promptContains(sub string) any {
	return mock.MatchedBy(func(req model.Request) bool {
		return strings.Contains(req.LastUserText(), sub) && req.ResponseSchema != nil
	})
}

const goodContext = `{"examples":["About two giraffes tall","A double-decker bus"],"funFact":"A foot was once a royal foot."}`

func TestContext_Success(t *testing.T) {
	m := &mockModel{}
	m.On("Generate", mock.Anything, promptContains("Convert: 12 Feet to Meters.")).Return(goodContext, nil).Once()

	resp, err := NewClient(m).Context(context.Background(), 12, "Feet", "Meters")
	require.NoError(t, err)
	assert.Len(t, resp.Examples, 2)
	assert.Equal(t, "A foot was once a royal foot.", resp.FunFact)
	m.AssertExpectations(t)
}

func TestContext_StripsCodeFence(t *testing.T) {
	m := &mockModel{}
	m.On("Generate", mock.Anything, mock.Anything).Return("```json\n"+goodContext+"\n```", nil)

	resp, err := NewClient(m).Context(context.Background(), 1, "Miles", "Kilometers")
	require.NoError(t, err)
	assert.Equal(t, "A double-decker bus", resp.Examples[1])
}

func TestContext_RejectsPartialResults(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"one example", `{"examples":["a"],"funFact":"f"}`},
		{"three examples", `{"examples":["a","b","c"],"funFact":"f"}`},
		{"missing fun fact", `{"examples":["a","b"]}`},
		{"blank fun fact", `{"examples":["a","b"],"funFact":"  "}`},
		{"blank example", `{"examples":["a",""],"funFact":"f"}`},
		{"non-string example", `{"examples":["a",2],"funFact":"f"}`},
		{"not json", `Sure! Here are some examples`},
		{"array", `[1,2]`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockModel{}
			m.On("Generate", mock.Anything, mock.Anything).Return(tt.text, nil)

			_, err := NewClient(m).Context(context.Background(), 1, "Feet", "Meters")
			assert.ErrorIs(t, err, ErrInsightsFailed)
		})
	}
}

func TestContext_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	m := &mockModel{}
	m.On("Generate", mock.Anything, mock.Anything).Return("", boom)

	_, err := NewClient(m).Context(context.Background(), 1, "Feet", "Meters")
	assert.ErrorIs(t, err, ErrInsightsFailed)
	assert.ErrorIs(t, err, boom)
}

func TestMissingCredentialFailsFast(t *testing.T) {
	c := NewClient(nil)
	assert.False(t, c.Ready())

	_, err := c.Context(context.Background(), 1, "Feet", "Meters")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.ErrorIs(t, err, ErrInsightsFailed)

	_, err = c.Lookup(context.Background(), "height of Big Ben", nil)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.ErrorIs(t, err, ErrLookupFailed)
}

func TestContext_CachesOnlySuccess(t *testing.T) {
	store := cache.NewInMemoryStore()
	m := &mockModel{}
	m.On("Generate", mock.Anything, promptContains("Convert: 3 Feet")).Return(`{"examples":["a"],"funFact":"f"}`, nil).Once()
	m.On("Generate", mock.Anything, promptContains("Convert: 3 Feet")).Return(goodContext, nil).Once()

	c := NewClient(m, func(o *Options) { o.Cache = store })
	ctx := context.Background()

	_, err := c.Context(ctx, 3, "Feet", "Meters")
	require.Error(t, err)
	assert.Equal(t, 0, store.Len(cache.NamespaceContext))

	first, err := c.Context(ctx, 3, "Feet", "Meters")
	require.NoError(t, err)
	second, err := c.Context(ctx, 3, "feet", "meters")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	m.AssertNumberOfCalls(t, "Generate", 2)
}

func TestLookup_Success(t *testing.T) {
	m := &mockModel{}
	m.On("Generate", mock.Anything, promptContains(`Query: "height of Big Ben"`)).
		Return(`{"category":"Distance","value":96,"fromUnitId":"meter","toUnitId":"foot","confidence":0.9,"explanation":"The tower leans 0.26 degrees."}`, nil)

	resp, err := NewClient(m).Lookup(context.Background(), "  height of Big Ben ", nil)
	require.NoError(t, err)

	assert.Equal(t, catalog.Distance, resp.Category)
	assert.Equal(t, 96.0, resp.Value)
	assert.Equal(t, "meter", resp.FromUnitID)
	assert.Equal(t, "foot", resp.ToUnitID)
	assert.True(t, resp.HasConfidence)
	assert.Equal(t, 0.9, resp.Confidence)
	assert.Equal(t, selection.Measurement{Category: catalog.Distance, Value: 96, FromUnitID: "meter", ToUnitID: "foot"}, resp.Measurement())

	req := m.Calls[0].Arguments.Get(1).(model.Request)
	assert.Contains(t, req.LastUserText(), "Distance: [inch, foot, yard, mile, mm, cm, meter, km]")
	assert.Contains(t, req.LastUserText(), "Temperature: [fahrenheit, celsius]")
}

func TestLookup_ConfidenceOptionalAndClamped(t *testing.T) {
	m := &mockModel{}
	m.On("Generate", mock.Anything, promptContains("weight of a cat")).
		Return(`{"category":"Weight","value":4,"fromUnitId":"kg","toUnitId":"pound","explanation":"x"}`, nil)
	m.On("Generate", mock.Anything, promptContains("speed of light")).
		Return(`{"category":"Speed","value":1,"fromUnitId":"ms","toUnitId":"mph","confidence":1.7,"explanation":"x"}`, nil)

	c := NewClient(m)
	resp, err := c.Lookup(context.Background(), "weight of a cat", nil)
	require.NoError(t, err)
	assert.False(t, resp.HasConfidence)

	resp, err = c.Lookup(context.Background(), "speed of light", nil)
	require.NoError(t, err)
	assert.True(t, resp.HasConfidence)
	assert.Equal(t, 1.0, resp.Confidence)
}

func TestLookup_SemanticMismatch(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target error
	}{
		{"unit not in category", `{"category":"Speed","value":88,"fromUnitId":"knot","toUnitId":"kmh","explanation":"x"}`, selection.ErrUnknownUnit},
		{"unit from other category", `{"category":"Volume","value":1,"fromUnitId":"mile","toUnitId":"km","explanation":"x"}`, selection.ErrUnknownUnit},
		{"unknown category", `{"category":"Time","value":1,"fromUnitId":"foot","toUnitId":"meter","explanation":"x"}`, ErrLookupFailed},
		{"missing explanation", `{"category":"Distance","value":1,"fromUnitId":"foot","toUnitId":"meter"}`, ErrLookupFailed},
		{"value as string", `{"category":"Distance","value":"1","fromUnitId":"foot","toUnitId":"meter","explanation":"x"}`, ErrLookupFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockModel{}
			m.On("Generate", mock.Anything, mock.Anything).Return(tt.text, nil)

			_, err := NewClient(m).Lookup(context.Background(), "query", nil)
			assert.ErrorIs(t, err, ErrLookupFailed)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLookup_EmptyQueryMakesNoCall(t *testing.T) {
	m := &mockModel{}

	_, err := NewClient(m).Lookup(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.ErrorIs(t, err, ErrLookupFailed)
	m.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestLookup_Cached(t *testing.T) {
	m := &mockModel{}
	m.On("Generate", mock.Anything, mock.Anything).
		Return(`{"category":"Area","value":2,"fromUnitId":"acre","toUnitId":"hectare","confidence":0.5,"explanation":"x"}`, nil).Once()

	c := NewClient(m, func(o *Options) { o.Cache = cache.NewInMemoryStore() })
	first, err := c.Lookup(context.Background(), "Soccer field", nil)
	require.NoError(t, err)
	second, err := c.Lookup(context.Background(), "soccer field", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, second.HasConfidence)
	m.AssertNumberOfCalls(t, "Generate", 1)
}

func TestClient_WithMockModel(t *testing.T) {
	mm := model.NewMockModel("canned", "mock")
	mm.SetFallback(goodContext)

	resp, err := NewClient(mm).Context(context.Background(), 100, "Celsius", "Fahrenheit")
	require.NoError(t, err)
	assert.Equal(t, "About two giraffes tall", resp.Examples[0])

	reqs := mm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "unit_context", reqs[0].SchemaName)
	assert.Equal(t, instructions, reqs[0].Instructions)
}

func TestUnitLines_Order(t *testing.T) {
	lines := unitLines(map[string][]string{
		"Zeta":        {"z"},
		"Temperature": {"celsius"},
		"Alpha":       {"a"},
		"Distance":    {"foot"},
	})
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.Name
	}
	assert.Equal(t, []string{"Distance", "Temperature", "Alpha", "Zeta"}, names)
}

func TestLookupSchema(t *testing.T) {
	assert.ElementsMatch(t, []string{"category", "value", "fromUnitId", "toUnitId", "explanation"}, lookupSchema["required"])
	cat := lookupSchema["properties"].(map[string]any)["category"].(map[string]any)
	assert.Equal(t, []string{"Distance", "Weight", "Volume", "Area", "Speed", "Temperature"}, cat["enum"])
}
