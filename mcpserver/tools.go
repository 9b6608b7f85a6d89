package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bqhou/unitai"
	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/convert"
	"github.com/bqhou/unitai/insight"
	"github.com/bqhou/unitai/logging"
	"github.com/bqhou/unitai/selection"
)

type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

func tools(ins unitai.Insights, logger logging.Logger) []tool {
	return []tool{
		&ListUnitsTool{},
		&ConvertTool{logger: logger},
		&ReconcileTool{},
		&InsightsTool{insights: ins, logger: logger},
		&LookupTool{insights: ins, logger: logger},
	}
}

func categoryNames() []string {
	cats := catalog.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return names
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func requiredCategory(req mcp.CallToolRequest) (catalog.Category, *mcp.CallToolResult) {
	name := strings.TrimSpace(req.GetString("category", ""))
	if name == "" {
		return 0, mcp.NewToolResultError("'category' is required")
	}
	c, err := catalog.ParseCategory(name)
	if err != nil {
		return 0, mcp.NewToolResultError(fmt.Sprintf("unknown category %q (want one of %s)", name, strings.Join(categoryNames(), ", ")))
	}
	return c, nil
}

func hasArg(req mcp.CallToolRequest, name string) bool {
	_, ok := req.GetArguments()[name]
	return ok
}

// --- list_units ---

// ListUnitsTool lists the catalog.
type ListUnitsTool struct{}

// Definition returns the MCP tool definition for registration.
func (t *ListUnitsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_units",
		mcp.WithDescription("List the supported categories and their units (id, name, abbreviation, system)."),
		mcp.WithString("category",
			mcp.Description("Only list this category"),
			mcp.Enum(categoryNames()...),
		),
	)
}

// Handle processes the list_units tool call.
func (t *ListUnitsTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := map[string][]catalog.Unit{}
	if hasArg(req, "category") {
		c, errRes := requiredCategory(req)
		if errRes != nil {
			return errRes, nil
		}
		out[c.String()] = catalog.UnitsFor(c)
		return jsonResult(out)
	}
	for _, c := range catalog.Categories() {
		out[c.String()] = catalog.UnitsFor(c)
	}
	return jsonResult(out)
}

// --- convert_units ---

// ConvertTool converts a value between two units of one category.
type ConvertTool struct {
	logger logging.Logger
}

type convertResult struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Result   float64 `json:"result"`
	Rate     float64 `json:"rate"`
	Summary  string  `json:"summary"`
	RateLine string  `json:"rateLine"`
}

// Definition returns the MCP tool definition for registration.
func (t *ConvertTool) Definition() mcp.Tool {
	return mcp.NewTool("convert_units",
		mcp.WithDescription("Convert a value between two units of the same category."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name"), mcp.Enum(categoryNames()...)),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source unit id, e.g. foot")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target unit id, e.g. meter")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("Value to convert")),
	)
}

// Handle processes the convert_units tool call.
func (t *ConvertTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, errRes := requiredCategory(req)
	if errRes != nil {
		return errRes, nil
	}
	if !hasArg(req, "value") {
		return mcp.NewToolResultError("'value' is required"), nil
	}
	value := req.GetFloat("value", 0)

	from, ok := catalog.Find(c, req.GetString("from", ""))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown %s unit %q", c, req.GetString("from", ""))), nil
	}
	to, ok := catalog.Find(c, req.GetString("to", ""))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown %s unit %q", c, req.GetString("to", ""))), nil
	}

	result := convert.Convert(value, from, to, c)
	t.logger.Debug("mcp.convert", "category", c.String(), "from", from.ID, "to", to.ID, "value", value, "result", result)
	return jsonResult(convertResult{
		Category: c.String(),
		Value:    value,
		From:     from.ID,
		To:       to.ID,
		Result:   result,
		Rate:     convert.Rate(from, to, c),
		Summary:  convert.DefaultFormatter.Summary(value, from, to, c),
		RateLine: convert.DefaultFormatter.RateLine(from, to, c),
	})
}

// --- reconcile_selection ---

// ReconcileTool applies one field change to a selection.
type ReconcileTool struct{}

// Definition returns the MCP tool definition for registration.
func (t *ReconcileTool) Definition() mcp.Tool {
	return mcp.NewTool("reconcile_selection",
		mcp.WithDescription(
			"Apply one change to a (category, direction, from_unit, to_unit, value) selection and "+
				"return the corrected selection. Omitted selection fields start from the default "+
				"(Distance, us-to-metric, foot, meter).",
		),
		mcp.WithString("category", mcp.Description("Current category"), mcp.Enum(categoryNames()...)),
		mcp.WithString("direction", mcp.Description("Current direction"), mcp.Enum(string(selection.USToMetric), string(selection.MetricToUS))),
		mcp.WithString("from_unit", mcp.Description("Current source unit id")),
		mcp.WithString("to_unit", mcp.Description("Current target unit id")),
		mcp.WithNumber("value", mcp.Description("Current value")),
		mcp.WithString("event",
			mcp.Required(),
			mcp.Description("Which field changes"),
			mcp.Enum("category", "direction", "from_unit", "to_unit", "value"),
		),
		mcp.WithString("new_value",
			mcp.Required(),
			mcp.Description("The new field value; an empty string clears the value"),
		),
	)
}

// Handle processes the reconcile_selection tool call.
func (t *ReconcileTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := stateFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev, err := eventFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	next := selection.Reconcile(state, ev)
	return jsonResult(struct {
		selection.State
		Valid bool `json:"valid"`
	}{next, next.Valid()})
}

func stateFromRequest(req mcp.CallToolRequest) (selection.State, error) {
	s := selection.Default()
	if hasArg(req, "category") {
		c, err := catalog.ParseCategory(req.GetString("category", ""))
		if err != nil {
			return s, err
		}
		s.Category = c
	}
	if hasArg(req, "direction") {
		d, err := selection.ParseDirection(req.GetString("direction", ""))
		if err != nil {
			return s, err
		}
		s.Direction = d
	}
	if hasArg(req, "from_unit") {
		s.FromUnit = req.GetString("from_unit", "")
	}
	if hasArg(req, "to_unit") {
		s.ToUnit = req.GetString("to_unit", "")
	}
	if hasArg(req, "value") {
		s = s.WithValue(req.GetFloat("value", 0))
	}
	return s, nil
}

func eventFromRequest(req mcp.CallToolRequest) (selection.Event, error) {
	raw := strings.TrimSpace(req.GetString("new_value", ""))
	switch kind := req.GetString("event", ""); kind {
	case "category":
		c, err := catalog.ParseCategory(raw)
		if err != nil {
			return selection.Event{}, err
		}
		return selection.ChangeCategory(c), nil
	case "direction":
		d, err := selection.ParseDirection(raw)
		if err != nil {
			return selection.Event{}, err
		}
		return selection.ChangeDirection(d), nil
	case "from_unit":
		return selection.ChangeFromUnit(raw), nil
	case "to_unit":
		return selection.ChangeToUnit(raw), nil
	case "value":
		if raw == "" {
			return selection.ClearValue(), nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return selection.Event{}, fmt.Errorf("new_value %q is not a number", raw)
		}
		return selection.ChangeValue(v), nil
	default:
		return selection.Event{}, fmt.Errorf("unknown event %q", kind)
	}
}

// --- unit_insights ---

// InsightsTool returns real-world comparisons for a conversion.
type InsightsTool struct {
	insights unitai.Insights
	logger   logging.Logger
}

// Definition returns the MCP tool definition for registration.
func (t *InsightsTool) Definition() mcp.Tool {
	return mcp.NewTool("unit_insights",
		mcp.WithDescription("Two vivid real-world comparisons and a fun fact for a conversion."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name"), mcp.Enum(categoryNames()...)),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source unit id")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target unit id")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("Value in the source unit")),
	)
}

// Handle processes the unit_insights tool call.
func (t *InsightsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, errRes := requiredCategory(req)
	if errRes != nil {
		return errRes, nil
	}
	from, okFrom := catalog.Find(c, req.GetString("from", ""))
	to, okTo := catalog.Find(c, req.GetString("to", ""))
	if !okFrom || !okTo {
		return mcp.NewToolResultError(fmt.Sprintf("unknown %s unit pair %q -> %q", c, req.GetString("from", ""), req.GetString("to", ""))), nil
	}
	if t.insights == nil {
		return mcp.NewToolResultError(unitai.MessageInsightsFailed + " " + insight.ErrMissingCredential.Error()), nil
	}

	resp, err := t.insights.Context(ctx, req.GetFloat("value", 0), from.Name, to.Name)
	if err != nil {
		t.logger.Warn("mcp.insights.error", "error", err.Error())
		return mcp.NewToolResultError(unitai.MessageInsightsFailed), nil
	}
	return jsonResult(resp)
}

// --- smart_lookup ---

// LookupTool maps a free-text query to a conversion.
type LookupTool struct {
	insights unitai.Insights
	logger   logging.Logger
}

// Definition returns the MCP tool definition for registration.
func (t *LookupTool) Definition() mcp.Tool {
	return mcp.NewTool("smart_lookup",
		mcp.WithDescription(
			"Turn a free-text question such as 'height of Big Ben' into a category, "+
				"unit pair and estimated value, and return the converted result.",
		),
		mcp.WithString("query", mcp.Required(), mcp.Description("What to measure")),
	)
}

type lookupResult struct {
	Lookup    insight.LookupResponse `json:"lookup"`
	Selection selection.State        `json:"selection"`
	Result    float64                `json:"result"`
	Summary   string                 `json:"summary"`
}

// Handle processes the smart_lookup tool call.
func (t *LookupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	if t.insights == nil {
		return mcp.NewToolResultError(unitai.MessageLookupFailed + " " + insight.ErrMissingCredential.Error()), nil
	}

	resp, err := t.insights.Lookup(ctx, query, catalog.AvailableUnits())
	if err != nil {
		t.logger.Warn("mcp.lookup.error", "query", query, "error", err.Error())
		return mcp.NewToolResultError(unitai.MessageLookupFailed), nil
	}
	state, err := selection.ApplyLookup(selection.Default(), resp.Measurement())
	if err != nil {
		if !errors.Is(err, selection.ErrUnknownUnit) {
			t.logger.Warn("mcp.lookup.invalid", "query", query, "error", err.Error())
		}
		return mcp.NewToolResultError(unitai.MessageLookupFailed), nil
	}

	out := lookupResult{Lookup: resp, Selection: state}
	if from, to, ok := state.Units(); ok {
		out.Result = convert.Convert(resp.Value, from, to, state.Category)
		out.Summary = convert.DefaultFormatter.Summary(resp.Value, from, to, state.Category)
	}
	return jsonResult(out)
}
