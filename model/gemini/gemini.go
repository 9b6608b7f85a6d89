// Package gemini implements model.Model on top of the Google Generative AI
// SDK. It is UnitAI's default provider: a ResponseSchema is translated into
// a native genai.Schema and the model is switched to JSON output.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/bqhou/unitai/model"
)

// DefaultModel is the lightweight model used when none is configured.
const DefaultModel = "gemini-flash-lite-latest"

// Options configure the Gemini adapter.
type Options struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	APIKey          string // falls back to GEMINI_API_KEY, then API_KEY
}

// Model wraps a genai.Client behind model.Model.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel builds a Gemini model. A missing key is not an error here: the
// client is left nil and every Generate call reports model.ErrMissingAPIKey.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:           DefaultModel,
		Temperature:     0.7,
		MaxOutputTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("API_KEY")
	}

	m := &Model{opts: opts}
	if opts.APIKey == "" {
		return m, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	m.client = client
	return m, nil
}

// NewModelFromClient wraps an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{Model: DefaultModel, Temperature: 0.7, MaxOutputTokens: 1024}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Close releases the underlying client.
func (m *Model) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if m.client == nil {
			errCh <- fmt.Errorf("gemini: %w", model.ErrMissingAPIKey)
			return
		}
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("gemini: no messages provided")
			return
		}

		gm := m.configure(req)
		cs := gm.StartChat()
		history, last := splitHistory(req.Messages)
		cs.History = history

		if req.Stream {
			m.handleStreaming(ctx, cs, last, out, errCh)
			return
		}

		resp, err := cs.SendMessage(ctx, genai.Text(last))
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}
		text, finish := responseText(resp)
		out <- model.Response{
			Text:         text,
			FinishReason: finish,
			Usage:        usage(resp),
		}
	}()

	return out, errCh
}

func (m *Model) configure(req model.Request) *genai.GenerativeModel {
	gm := m.client.GenerativeModel(m.opts.Model)
	gm.SetTemperature(m.opts.Temperature)
	gm.SetMaxOutputTokens(m.opts.MaxOutputTokens)
	if req.Instructions != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instructions)}}
	}
	if req.ResponseSchema != nil {
		gm.ResponseMIMEType = "application/json"
		gm.ResponseSchema = toSchema(req.ResponseSchema)
	}
	return gm
}

func (m *Model) handleStreaming(
	ctx context.Context,
	cs *genai.ChatSession,
	prompt string,
	out chan<- model.Response,
	errCh chan<- error,
) {
	it := cs.SendMessageStream(ctx, genai.Text(prompt))
	var (
		full   strings.Builder
		finish string
		last   *genai.GenerateContentResponse
	)
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			errCh <- fmt.Errorf("gemini streaming error: %w", err)
			return
		}
		last = resp
		text, fr := responseText(resp)
		if fr != "" {
			finish = fr
		}
		if text == "" {
			continue
		}
		full.WriteString(text)
		out <- model.Response{Partial: true, Text: text}
	}
	out <- model.Response{Text: full.String(), FinishReason: finish, Usage: usage(last)}
}

// splitHistory turns all but the last message into chat history.
func splitHistory(msgs []model.Message) ([]*genai.Content, string) {
	history := make([]*genai.Content, 0, len(msgs)-1)
	for _, msg := range msgs[:len(msgs)-1] {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Text)}})
	}
	return history, msgs[len(msgs)-1].Text
}

func responseText(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil {
		return "", ""
	}
	var (
		b      strings.Builder
		finish string
	)
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if cand.FinishReason != genai.FinishReasonUnspecified {
			finish = cand.FinishReason.String()
		}
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break // first candidate only
	}
	return b.String(), finish
}

func usage(resp *genai.GenerateContentResponse) *model.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &model.TokenUsage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}

// toSchema converts the JSON Schema subset produced by util.CreateSchema.
func toSchema(s map[string]any) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{}
	switch s["type"] {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	}
	if d, ok := s["description"].(string); ok {
		out.Description = d
	}
	out.Enum = stringList(s["enum"])
	out.Required = stringList(s["required"])
	if items, ok := s["items"].(map[string]any); ok {
		out.Items = toSchema(items)
	}
	if props, ok := s["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				out.Properties[name] = toSchema(pm)
			}
		}
	}
	return out
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, x := range l {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:         m.opts.Model,
		Provider:     "gemini",
		NativeSchema: true,
	}
}
