package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bqhou/unitai/config"
	"github.com/bqhou/unitai/model"
)

func TestNew_MissingCredential(t *testing.T) {
	cfg := config.Defaults()

	m, err := New(context.Background(), cfg)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, model.ErrMissingAPIKey)
}

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		wantName string
	}{
		{config.ProviderGemini, "", "gemini-flash-lite-latest"},
		{config.ProviderOpenAI, "gpt-4.1-mini", "gpt-4.1-mini"},
		{config.ProviderAnthropic, "claude-test", "claude-test"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Provider = tt.provider
			cfg.Model = tt.model
			cfg.APIKey = "test-key"

			m, err := New(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, m.Info().Provider)
			assert.Equal(t, tt.wantName, m.Info().Name)
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := config.Defaults()
	cfg.Provider = "llama"
	cfg.APIKey = "k"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
