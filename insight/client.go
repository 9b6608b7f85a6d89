package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/bqhou/unitai/cache"
	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/internal/util"
	"github.com/bqhou/unitai/logging"
	"github.com/bqhou/unitai/model"
	"github.com/bqhou/unitai/selection"
)

var (
	// ErrMissingCredential is returned when no model is configured.
	ErrMissingCredential = errors.New("no language model configured (missing API key)")
	// ErrInsightsFailed wraps every context failure.
	ErrInsightsFailed = errors.New("failed to generate insights")
	// ErrLookupFailed wraps every smart-lookup failure.
	ErrLookupFailed = errors.New("could not identify units from that query")
	// ErrEmptyQuery is returned for blank lookup queries.
	ErrEmptyQuery = errors.New("empty query")
)

// Options configure a Client.
type Options struct {
	Logger logging.Logger
	// Cache serves repeated questions. Nil disables caching.
	Cache cache.Store
	// Timeout bounds each model call. Zero leaves the caller's context alone.
	Timeout time.Duration
}

// Client issues context and lookup requests against a model.Model.
type Client struct {
	model  model.Model
	opts   Options
	logger logging.Logger
}

// NewClient creates a Client. m may be nil, in which case every call fails
// with ErrMissingCredential.
func NewClient(m model.Model, optFns ...func(o *Options)) *Client {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		model:  m,
		opts:   opts,
		logger: logging.OrNoOp(opts.Logger),
	}
}

// Ready reports whether a model is configured.
func (c *Client) Ready() bool { return c != nil && c.model != nil }

// Context asks for two real-world comparisons and a fun fact about
// converting value fromName into toName.
func (c *Client) Context(ctx context.Context, value float64, fromName, toName string) (ContextResponse, error) {
	if !c.Ready() {
		return ContextResponse{}, fmt.Errorf("%w: %w", ErrInsightsFailed, ErrMissingCredential)
	}

	key := cache.Key(strconv.FormatFloat(value, 'g', -1, 64), fromName, toName)
	var out ContextResponse
	if c.cached(ctx, cache.NamespaceContext, key, &out) {
		return out, nil
	}

	prompt, err := renderContextPrompt(value, fromName, toName)
	if err != nil {
		return ContextResponse{}, fmt.Errorf("%w: render prompt: %w", ErrInsightsFailed, err)
	}

	text, err := c.call(ctx, "insight.context", prompt, "unit_context", contextSchema)
	if err != nil {
		return ContextResponse{}, fmt.Errorf("%w: %w", ErrInsightsFailed, err)
	}

	out, err = parseContext(text)
	if err != nil {
		c.logger.Warn("insight.context.invalid", "error", err.Error())
		return ContextResponse{}, fmt.Errorf("%w: %w", ErrInsightsFailed, err)
	}

	c.store(ctx, cache.NamespaceContext, key, out)
	return out, nil
}

// Lookup maps a free-text query to a measurement. available lists the unit
// ids the model may choose from per category name; nil means the whole
// catalog.
func (c *Client) Lookup(ctx context.Context, query string, available map[string][]string) (LookupResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return LookupResponse{}, fmt.Errorf("%w: %w", ErrLookupFailed, ErrEmptyQuery)
	}
	if !c.Ready() {
		return LookupResponse{}, fmt.Errorf("%w: %w", ErrLookupFailed, ErrMissingCredential)
	}
	if available == nil {
		available = catalog.AvailableUnits()
	}

	key := cache.Key(query)
	var out LookupResponse
	if c.cached(ctx, cache.NamespaceLookup, key, &out) {
		return out, nil
	}

	prompt, err := renderLookupPrompt(query, available)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("%w: render prompt: %w", ErrLookupFailed, err)
	}

	text, err := c.call(ctx, "insight.lookup", prompt, "measurement_lookup", lookupSchema)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	out, err = parseLookup(text)
	if err != nil {
		c.logger.Warn("insight.lookup.invalid", "query", query, "error", err.Error())
		return LookupResponse{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	c.store(ctx, cache.NamespaceLookup, key, out)
	return out, nil
}

type llmCallLogger interface {
	LogLLMCall(model, requestID string, dur time.Duration, success bool, err error)
}

// call runs one structured generation and returns the cleaned response text.
func (c *Client) call(ctx context.Context, op, prompt, schemaName string, schema map[string]any) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	info := c.model.Info()
	c.logger.Debug(op+".start", "request_id", requestID, "provider", info.Provider, "model", info.Name)

	start := time.Now()
	resp, err := model.Collect(ctx, c.model, model.Request{
		Instructions:   instructions,
		Messages:       []model.Message{model.UserMessage(prompt)},
		ResponseSchema: schema,
		SchemaName:     schemaName,
	})
	dur := time.Since(start)

	if l, ok := c.logger.(llmCallLogger); ok {
		l.LogLLMCall(info.Name, requestID, dur, err == nil, err)
	} else if err != nil {
		c.logger.Error(op+".error", "request_id", requestID, "error", err.Error(), "duration", dur)
	} else {
		c.logger.Info(op+".done", "request_id", requestID, "duration", dur)
	}
	if err != nil {
		return "", err
	}

	text := util.StripCodeFence(resp.Text)
	if text == "" {
		return "", errors.New("no response from model")
	}
	return text, nil
}

// decodeChecked validates text against schema and decodes it into dst.
func decodeChecked(text string, schema map[string]any, dst any) error {
	if !gjson.Valid(text) {
		return errors.New("response is not valid JSON")
	}
	if !gjson.Parse(text).IsObject() {
		return errors.New("response is not a JSON object")
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := util.Validate(raw, schema); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseContext(text string) (ContextResponse, error) {
	if n := gjson.Get(text, "examples.#").Int(); n != 2 {
		return ContextResponse{}, fmt.Errorf("want exactly 2 examples, got %d", n)
	}

	var out ContextResponse
	if err := decodeChecked(text, contextSchema, &out); err != nil {
		return ContextResponse{}, err
	}
	for i, ex := range out.Examples {
		if strings.TrimSpace(ex) == "" {
			return ContextResponse{}, fmt.Errorf("example %d is empty", i)
		}
	}
	if strings.TrimSpace(out.FunFact) == "" {
		return ContextResponse{}, errors.New("fun fact is empty")
	}
	return out, nil
}

func parseLookup(text string) (LookupResponse, error) {
	var wire lookupWire
	if err := decodeChecked(text, lookupSchema, &wire); err != nil {
		return LookupResponse{}, err
	}

	category, err := catalog.ParseCategory(wire.Category)
	if err != nil {
		return LookupResponse{}, err
	}
	from, ok := catalog.Find(category, wire.FromUnitID)
	if !ok {
		return LookupResponse{}, fmt.Errorf("%w: %q in %s", selection.ErrUnknownUnit, wire.FromUnitID, category)
	}

	out := LookupResponse{
		Category:    category,
		Value:       wire.Value,
		FromUnitID:  from.ID,
		ToUnitID:    wire.ToUnitID,
		Explanation: wire.Explanation,
	}
	if gjson.Get(text, "confidence").Exists() && wire.Confidence != nil {
		out.HasConfidence = true
		out.Confidence = clamp01(*wire.Confidence)
	}
	return out, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func (c *Client) cached(ctx context.Context, namespace, key string, dst any) bool {
	if c.opts.Cache == nil {
		return false
	}
	data, err := c.opts.Cache.Get(ctx, namespace, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.Warn("insight.cache.error", "namespace", namespace, "error", err.Error())
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("insight.cache.corrupt", "namespace", namespace, "key", key, "error", err.Error())
		return false
	}
	c.logger.Debug("insight.cache.hit", "namespace", namespace, "key", key)
	return true
}

func (c *Client) store(ctx context.Context, namespace, key string, v any) {
	if c.opts.Cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.opts.Cache.Put(ctx, namespace, key, data); err != nil {
		c.logger.Warn("insight.cache.error", "namespace", namespace, "error", err.Error())
	}
}
