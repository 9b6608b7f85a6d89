package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bqhou/unitai"
	"github.com/bqhou/unitai/config"
	"github.com/bqhou/unitai/model"
	"github.com/bqhou/unitai/provider"
)

const (
	lookupReply  = `{"category":"Distance","value":316,"fromUnitId":"foot","toUnitId":"meter","confidence":0.9,"explanation":"Big Ben's tower stands 316 feet tall."}`
	contextReply = `{"examples":["About as tall as a 30-storey building","Roughly a football field stood on end"],"funFact":"The clock tower was renamed Elizabeth Tower in 2012."}`
)

// routedModel answers by schema name so one model can serve both calls.
type routedModel struct {
	byName map[string]*model.MockModel
}

func newRoutedModel() *routedModel {
	lookup := model.NewMockModel("mock", "test")
	lookup.SetFallback(lookupReply)
	ctx := model.NewMockModel("mock", "test")
	ctx.SetFallback(contextReply)
	return &routedModel{byName: map[string]*model.MockModel{
		"measurement_lookup": lookup,
		"unit_context":       ctx,
	}}
}

func (r *routedModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	return r.byName[req.SchemaName].Generate(ctx, req)
}

func (r *routedModel) Info() model.Info { return model.Info{Name: "mock", Provider: "test"} }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unitai.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a.out = &out
	if a.getenv == nil {
		a.getenv = func(string) string { return "" }
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testApp(t *testing.T) (*app, string) {
	t.Helper()
	path := writeConfig(t, "api_key: test-key\ncache:\n  driver: memory\nlog:\n  level: error\n")
	a := &app{newModel: func(context.Context, *config.Config) (model.Model, error) {
		return newRoutedModel(), nil
	}}
	return a, path
}

func TestUnitsCommand(t *testing.T) {
	a, cfg := testApp(t)

	out, err := run(t, a, "--config", cfg, "units")
	require.NoError(t, err)
	assert.Contains(t, out, "Distance")
	assert.Contains(t, out, "Temperature")
	assert.Contains(t, out, "fahrenheit")

	a, cfg = testApp(t)
	out, err = run(t, a, "--config", cfg, "--json", "units", "weight")
	require.NoError(t, err)
	var units map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &units))
	assert.Len(t, units, 1)
	assert.Contains(t, units, "Weight")

	a, cfg = testApp(t)
	_, err = run(t, a, "--config", cfg, "units", "time")
	assert.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	a, cfg := testApp(t)

	out, err := run(t, a, "--config", cfg, "convert", "12", "inch", "foot")
	require.NoError(t, err)
	assert.Contains(t, out, "12 in = 1 ft")
	assert.Contains(t, out, "1 in ≈ 0.083 ft")
}

func TestConvertCommand_JSON(t *testing.T) {
	a, cfg := testApp(t)

	out, err := run(t, a, "--config", cfg, "--json", "convert", "--category", "Temperature", "100", "celsius", "fahrenheit")
	require.NoError(t, err)

	var got struct {
		Category string  `json:"category"`
		Result   float64 `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Temperature", got.Category)
	assert.InDelta(t, 212, got.Result, 1e-9)
}

func TestConvertCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"not a number", []string{"convert", "ten", "inch", "foot"}, "not a number"},
		{"no shared category", []string{"convert", "1", "inch", "gram"}, "no category has both"},
		{"unit outside category", []string{"convert", "--category", "Volume", "1", "inch", "ml"}, "unknown Volume unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, cfg := testApp(t)
			_, err := run(t, a, append([]string{"--config", cfg}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLookupCommand(t *testing.T) {
	a, cfg := testApp(t)

	out, err := run(t, a, "--config", cfg, "lookup", "height", "of", "Big", "Ben")
	require.NoError(t, err)
	assert.Contains(t, out, "316 ft = 96.3168 m")
	assert.Contains(t, out, "316 feet tall")
}

func TestLookupCommand_WithInsights(t *testing.T) {
	a, cfg := testApp(t)

	out, err := run(t, a, "--config", cfg, "lookup", "--insights", "height of Big Ben")
	require.NoError(t, err)
	assert.Contains(t, out, "In the real world:")
	assert.Contains(t, out, "Fun fact: The clock tower")
}

func TestLookupCommand_MissingCredential(t *testing.T) {
	cfg := writeConfig(t, "provider: openai\ncache:\n  driver: none\nlog:\n  level: error\n")
	a := &app{newModel: provider.New}

	_, err := run(t, a, "--config", cfg, "lookup", "a blue whale")
	require.Error(t, err)
	assert.Equal(t, unitai.MessageLookupFailed, err.Error())
}

func TestInsightsCommand(t *testing.T) {
	a, cfg := testApp(t)

	out, err := run(t, a, "--config", cfg, "--json", "insights", "5", "mile", "km")
	require.NoError(t, err)

	var got struct {
		Examples []string `json:"examples"`
		FunFact  string   `json:"funFact"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Examples, 2)
	assert.NotEmpty(t, got.FunFact)
}

func TestSetup_InvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "provider: cohere\n")
	a := &app{newModel: provider.New}

	_, err := run(t, a, "--config", cfg, "units")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config errors")
}
