package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bqhou/unitai/model"
)

var _ model.Model = (*Model)(nil)

func TestGenerate_MissingAPIKeyFailsFast(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := model.Collect(context.Background(), NewModel(), model.Request{
		Messages: []model.Message{model.UserMessage("hi")},
	})
	assert.ErrorIs(t, err, model.ErrMissingAPIKey)
}

func TestSystemPrompt(t *testing.T) {
	plain, err := systemPrompt(model.Request{Instructions: "be brief"})
	require.NoError(t, err)
	assert.Equal(t, "be brief", plain)

	withSchema, err := systemPrompt(model.Request{
		Instructions:   "be brief",
		ResponseSchema: map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.Contains(t, withSchema, "be brief\n\n")
	assert.Contains(t, withSchema, `{"type":"object"}`)
}

func TestBuildMessages_SkipsEmpty(t *testing.T) {
	msgs := buildMessages([]model.Message{
		model.UserMessage("q"),
		{Role: "assistant", Text: ""},
		{Role: "assistant", Text: "a"},
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
}

func TestBuildParams(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "k"
		o.MaxTokens = 256
	})
	params, err := m.buildParams(model.Request{
		Instructions: "sys",
		Messages:     []model.Message{model.UserMessage("q")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(256), params.MaxTokens)
	require.Len(t, params.System, 1)
	assert.Equal(t, "sys", params.System[0].Text)
	assert.Equal(t, "anthropic", m.Info().Provider)
}
