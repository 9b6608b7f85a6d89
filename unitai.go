// Package unitai provides a high-level façade over the unit catalog, the
// conversion engine, the selection reconciler and the language-model
// insight client. Most applications interact with this package by:
//  1. Creating a Converter via New() (optionally supplying an insight client)
//  2. Feeding it field changes (SetCategory, SetFromUnit, SetValue, ...)
//  3. Reading Result() for the conversion and Panel() for AI context
//
// The Converter owns one selection on behalf of its caller. Every change is
// run through selection.Reconcile so the selection stays valid. Context
// requests are debounced and each dispatch is tagged with a generation
// number; a response that arrives after the selection moved on is dropped.
package unitai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/convert"
	"github.com/bqhou/unitai/insight"
	"github.com/bqhou/unitai/logging"
	"github.com/bqhou/unitai/selection"
)

// User-facing panel messages.
const (
	MessageInsightsFailed = "Failed to generate AI insights."
	MessageLookupFailed   = "Could not identify units from that query. Please try again."
)

// DefaultContextDebounce is the quiet period before a context fetch.
const DefaultContextDebounce = time.Second

// Insights is the language-model collaborator. *insight.Client implements it.
type Insights interface {
	Context(ctx context.Context, value float64, fromName, toName string) (insight.ContextResponse, error)
	Lookup(ctx context.Context, query string, available map[string][]string) (insight.LookupResponse, error)
}

// Options configures a Converter.
type Options struct {
	// Insights answers context and lookup requests. Nil makes both fail
	// with insight.ErrMissingCredential.
	Insights Insights

	// ContextDebounce is the quiet period after the last change before a
	// context request is sent. Zero uses DefaultContextDebounce; a negative
	// value dispatches immediately.
	ContextDebounce time.Duration

	// Initial selection (defaults to selection.Default()).
	Initial *selection.State

	// Formatter renders numbers (defaults to en-US).
	Formatter *convert.Formatter

	// OnPanel, if set, is called after every panel transition.
	OnPanel func(Panel)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// PanelStatus is the state of the AI context panel.
type PanelStatus int

const (
	// PanelIdle means there is nothing to explain: no value or no units.
	PanelIdle PanelStatus = iota
	// PanelLoading means a context request is in flight.
	PanelLoading
	// PanelError means the last request failed.
	PanelError
	// PanelReady means Data holds the latest context.
	PanelReady
)

func (s PanelStatus) String() string {
	switch s {
	case PanelIdle:
		return "idle"
	case PanelLoading:
		return "loading"
	case PanelError:
		return "error"
	case PanelReady:
		return "ready"
	default:
		return fmt.Sprintf("PanelStatus(%d)", int(s))
	}
}

// Panel is exactly one of idle, loading, error (Err and Message set) or
// ready (Data set).
type Panel struct {
	Status  PanelStatus
	Data    *insight.ContextResponse
	Err     error
	Message string
}

// Result is the rendered conversion for the current selection.
type Result struct {
	State    selection.State
	From, To catalog.Unit
	// Resolved is false when either unit id is unset.
	Resolved bool
	HasValue bool
	Value    float64 // converted value, 0 without input
	Rate     float64 // value of one source unit in target units

	ValueText string // "" without input
	RateText  string // "1 ft ≈ 0.305 m"
	Summary   string // "12 in = 1 ft", "" without input
}

type conversionLogger interface {
	LogConversion(category, from, to string, value, result float64)
}

// Converter is the caller-side owner of one selection.
type Converter struct {
	opts   Options
	logger logging.Logger
	format *convert.Formatter

	mu          sync.Mutex
	state       selection.State
	panel       Panel
	explanation string
	gen         uint64
	timer       *time.Timer
	closed      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Converter. Call Close to stop pending and in-flight requests.
func New(optFns ...func(o *Options)) *Converter {
	opts := Options{
		ContextDebounce: DefaultContextDebounce,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ContextDebounce == 0 {
		opts.ContextDebounce = DefaultContextDebounce
	}
	if opts.Formatter == nil {
		opts.Formatter = convert.DefaultFormatter
	}

	state := selection.Default()
	if opts.Initial != nil {
		state = selection.Normalize(*opts.Initial)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Converter{
		opts:   opts,
		logger: logging.OrNoOp(opts.Logger),
		format: opts.Formatter,
		state:  state,
		ctx:    ctx,
		cancel: cancel,
	}
}

// State returns the current selection.
func (c *Converter) State() selection.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Panel returns the AI context panel.
func (c *Converter) Panel() Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel
}

// Explanation returns the insight attached to the last successful lookup.
func (c *Converter) Explanation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.explanation
}

// Apply reconciles ev into the selection and returns the new selection. A
// change to the value or either unit schedules a context fetch.
func (c *Converter) Apply(ev selection.Event) selection.State {
	c.mu.Lock()
	prev := c.state
	next := selection.Reconcile(prev, ev)
	c.state = next
	c.logger.Debug("converter.event", "kind", ev.Kind.String(), "state", next.String())

	var notify *Panel
	if contextKeyChanged(prev, next) {
		notify = c.scheduleContextLocked()
	}
	c.mu.Unlock()

	c.notify(notify)
	return next
}

// SetCategory changes the category.
func (c *Converter) SetCategory(cat catalog.Category) selection.State {
	return c.Apply(selection.ChangeCategory(cat))
}

// SetDirection changes the direction.
func (c *Converter) SetDirection(d selection.Direction) selection.State {
	return c.Apply(selection.ChangeDirection(d))
}

// SwapDirection flips the direction.
func (c *Converter) SwapDirection() selection.State {
	return c.SetDirection(c.State().Direction.Flip())
}

// SetFromUnit picks the source unit; the target is re-suggested.
func (c *Converter) SetFromUnit(id string) selection.State {
	return c.Apply(selection.ChangeFromUnit(id))
}

// SetToUnit picks the target unit.
func (c *Converter) SetToUnit(id string) selection.State {
	return c.Apply(selection.ChangeToUnit(id))
}

// SetValue enters a value.
func (c *Converter) SetValue(v float64) selection.State {
	return c.Apply(selection.ChangeValue(v))
}

// ClearValue removes the value, which also clears the AI panel.
func (c *Converter) ClearValue() selection.State {
	return c.Apply(selection.ClearValue())
}

// Result converts the current value. It never fails; without input or
// resolvable units it returns the blank fields.
func (c *Converter) Result() Result {
	s := c.State()
	r := Result{State: s, HasValue: s.HasValue()}

	from, to, ok := s.Units()
	if !ok {
		return r
	}
	r.From, r.To, r.Resolved = from, to, true
	r.Rate = convert.Rate(from, to, s.Category)
	r.RateText = c.format.RateLine(from, to, s.Category)

	if !s.HasValue() {
		return r
	}
	r.Value = convert.Convert(*s.Value, from, to, s.Category)
	r.ValueText = c.format.Value(r.Value)
	r.Summary = c.format.Summary(*s.Value, from, to, s.Category)
	if l, ok := c.logger.(conversionLogger); ok {
		l.LogConversion(s.Category.String(), from.ID, to.ID, *s.Value, r.Value)
	}
	return r
}

// Lookup resolves a free-text query and, on success, replaces the selection
// in one step. On failure the selection is left untouched and the panel
// shows MessageLookupFailed.
func (c *Converter) Lookup(ctx context.Context, query string) (insight.LookupResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return insight.LookupResponse{}, fmt.Errorf("%w: %w", insight.ErrLookupFailed, insight.ErrEmptyQuery)
	}

	c.mu.Lock()
	c.explanation = ""
	c.mu.Unlock()

	if c.opts.Insights == nil {
		err := fmt.Errorf("%w: %w", insight.ErrLookupFailed, insight.ErrMissingCredential)
		c.lookupFailed(query, err)
		return insight.LookupResponse{}, err
	}

	start := time.Now()
	resp, err := c.opts.Insights.Lookup(ctx, query, catalog.AvailableUnits())
	if err != nil {
		if !errors.Is(err, insight.ErrLookupFailed) {
			err = fmt.Errorf("%w: %w", insight.ErrLookupFailed, err)
		}
		c.lookupFailed(query, err)
		return insight.LookupResponse{}, err
	}

	c.mu.Lock()
	next, err := selection.ApplyLookup(c.state, resp.Measurement())
	if err != nil {
		c.mu.Unlock()
		err = fmt.Errorf("%w: %w", insight.ErrLookupFailed, err)
		c.lookupFailed(query, err)
		return insight.LookupResponse{}, err
	}
	c.state = next
	c.explanation = resp.Explanation
	notify := c.scheduleContextLocked()
	c.mu.Unlock()

	c.logger.Info("converter.lookup.done", "query", query, "state", next.String(), "duration", time.Since(start))
	c.notify(notify)
	return resp, nil
}

func (c *Converter) lookupFailed(query string, err error) {
	c.logger.Warn("converter.lookup.error", "query", query, "error", err.Error())
	c.mu.Lock()
	c.panel = Panel{Status: PanelError, Err: err, Message: MessageLookupFailed}
	p := c.panel
	c.mu.Unlock()
	c.notify(&p)
}

// Close cancels the pending timer and any in-flight request and waits for
// them to finish. Later changes still reconcile but fetch nothing.
func (c *Converter) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func contextKeyChanged(prev, next selection.State) bool {
	if prev.FromUnit != next.FromUnit || prev.ToUnit != next.ToUnit || prev.Category != next.Category {
		return true
	}
	if prev.HasValue() != next.HasValue() {
		return true
	}
	return prev.HasValue() && *prev.Value != *next.Value
}

// scheduleContextLocked bumps the generation, drops any pending timer and
// arms a new one for the current state. It returns the panel to publish
// when the change cleared it.
func (c *Converter) scheduleContextLocked() *Panel {
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.closed {
		return nil
	}

	snap := c.state
	if _, _, ok := snap.Units(); !ok || !snap.HasValue() {
		if c.panel.Status == PanelIdle {
			return nil
		}
		c.panel = Panel{Status: PanelIdle}
		p := c.panel
		return &p
	}

	delay := c.opts.ContextDebounce
	if delay < 0 {
		delay = 0
	}
	c.timer = time.AfterFunc(delay, func() { c.dispatch(gen, snap) })
	return nil
}

// dispatch runs when the debounce timer fires.
func (c *Converter) dispatch(gen uint64, snap selection.State) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.opts.Insights == nil {
		err := fmt.Errorf("%w: %w", insight.ErrInsightsFailed, insight.ErrMissingCredential)
		c.panel = Panel{Status: PanelError, Err: err, Message: MessageInsightsFailed}
		p := c.panel
		c.mu.Unlock()
		c.notify(&p)
		return
	}
	c.panel = Panel{Status: PanelLoading}
	loading := c.panel
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()
	c.notify(&loading)

	from, to, _ := snap.Units()
	c.logger.Debug("converter.context.start", "generation", gen, "state", snap.String())
	data, err := c.opts.Insights.Context(c.ctx, *snap.Value, from.Name, to.Name)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("converter.context.stale", "generation", gen)
		return
	}
	if err != nil {
		c.panel = Panel{Status: PanelError, Err: err, Message: MessageInsightsFailed}
	} else {
		c.panel = Panel{Status: PanelReady, Data: &data}
	}
	p := c.panel
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("converter.context.error", "generation", gen, "error", err.Error())
	}
	c.notify(&p)
}

func (c *Converter) notify(p *Panel) {
	if p == nil || c.opts.OnPanel == nil {
		return
	}
	c.opts.OnPanel(*p)
}
