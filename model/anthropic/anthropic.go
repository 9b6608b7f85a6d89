// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bqhou/unitai/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string // falls back to ANTHROPIC_API_KEY
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
	hasKey bool
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}
}

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	client := anthropic.NewClient(option.WithAPIKey(opts.APIKey))

	return &Model{
		client: &client,
		opts:   opts,
		hasKey: opts.APIKey != "",
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
		hasKey: true,
	}
}

// Generate implements model.Model. The Messages API has no native JSON
// schema mode, so a ResponseSchema is appended to the system prompt.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if !m.hasKey {
			errCh <- fmt.Errorf("anthropic: %w", model.ErrMissingAPIKey)
			return
		}

		params, err := m.buildParams(req)
		if err != nil {
			errCh <- err
			return
		}

		// Streaming requests are served by a single final chunk.
		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.AsText().Text)
			}
		}

		finishReason := "stop"
		if resp.StopReason != "" {
			finishReason = string(resp.StopReason)
		}

		out <- model.Response{
			ID:           resp.ID,
			Text:         text.String(),
			FinishReason: finishReason,
			Usage: &model.TokenUsage{
				PromptTokens:     int(resp.Usage.InputTokens),
				CompletionTokens: int(resp.Usage.OutputTokens),
				TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
			},
		}
	}()

	return out, errCh
}

func (m *Model) buildParams(req model.Request) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}

	system, err := systemPrompt(req)
	if err != nil {
		return params, err
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params, nil
}

// systemPrompt merges the instructions with the schema contract.
func systemPrompt(req model.Request) (string, error) {
	if req.ResponseSchema == nil {
		return req.Instructions, nil
	}
	schema, err := json.Marshal(req.ResponseSchema)
	if err != nil {
		return "", fmt.Errorf("encode response schema: %w", err)
	}
	var b strings.Builder
	if req.Instructions != "" {
		b.WriteString(req.Instructions)
		b.WriteString("\n\n")
	}
	b.WriteString("Respond with a single JSON object and nothing else. It must match this JSON Schema:\n")
	b.Write(schema)
	return b.String(), nil
}

// buildMessages converts UnitAI messages to Anthropic message format.
func buildMessages(msgs []model.Message) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Text == "" {
			continue
		}
		switch msg.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Text)))
		default:
			// Treat unknown roles as user
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))
		}
	}
	return messages
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     string(m.opts.Model),
		Provider: "anthropic",
	}
}
