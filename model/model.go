package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrMissingAPIKey is returned by adapters that were built without a credential.
// It is raised before any network attempt.
var ErrMissingAPIKey = errors.New("model: API key is missing")

// Message is one turn of the conversation handed to a model.
type Message struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// UserMessage builds a user turn.
func UserMessage(text string) Message { return Message{Role: "user", Text: text} }

// Request captures the normalized model input.
type Request struct {
	Instructions string    `json:"instructions"` // system prompt
	Messages     []Message `json:"messages"`
	// ResponseSchema, when set, asks the provider for a JSON object matching
	// this JSON Schema (minimal subset: type, properties, required, items, enum, description).
	ResponseSchema map[string]any `json:"response_schema,omitempty"`
	SchemaName     string         `json:"schema_name,omitempty"`
	Stream         bool           `json:"stream,omitempty"`
}

// LastUserText returns the text of the last user message or "".
func (r Request) LastUserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Text
		}
	}
	return ""
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", ...
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "gemini", "openai", "anthropic", "mock"
	// NativeSchema is true when the provider enforces ResponseSchema itself
	// rather than relying on prompt instructions.
	NativeSchema bool `json:"native_schema"`
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Collect drives Generate to completion and returns the final response. When
// a provider only streams partial chunks, their text is concatenated.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		partial strings.Builder
		final   *Response
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if r.Partial {
				partial.WriteString(r.Text)
				continue
			}
			rc := r
			final = &rc
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}

	if final != nil {
		return *final, nil
	}
	if partial.Len() > 0 {
		return Response{Text: partial.String(), FinishReason: "stop"}, nil
	}
	return Response{}, fmt.Errorf("model returned no response")
}

// MockModel is a lightweight in‑memory Model useful for tests & examples.
// Replies are keyed by the last user message.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	fallback  string
	requests  []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider, NativeSchema: true},
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// AddError makes the given prompt fail with err.
func (m *MockModel) AddError(prompt string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[prompt] = err
}

// SetFallback sets the reply used for prompts without a canned response.
func (m *MockModel) SetFallback(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model; emits optional streaming char chunks then final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	prompt := req.LastUserText()
	full, ok := m.responses[prompt]
	if !ok {
		full = m.fallback
	}
	failure := m.errs[prompt]
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}
		if failure != nil {
			errCh <- failure
			return
		}
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", prompt)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Text: full, FinishReason: "stop"}:
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
