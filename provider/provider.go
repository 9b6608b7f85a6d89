// Package provider turns a config.Config into a ready model.Model.
package provider

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/bqhou/unitai/config"
	"github.com/bqhou/unitai/model"
	"github.com/bqhou/unitai/model/anthropic"
	"github.com/bqhou/unitai/model/gemini"
	"github.com/bqhou/unitai/model/openai"
)

// New builds the model named by cfg.Provider. It returns
// model.ErrMissingAPIKey, before any network activity, when cfg carries no
// credential.
func New(ctx context.Context, cfg *config.Config) (model.Model, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if !cfg.HasCredential() {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, model.ErrMissingAPIKey)
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		m, err := gemini.NewModel(ctx, func(o *gemini.Options) {
			o.APIKey = cfg.APIKey
			o.Temperature = float32(cfg.Temperature)
			if cfg.MaxTokens > 0 {
				o.MaxOutputTokens = int32(cfg.MaxTokens)
			}
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.APIKey
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(cfg.MaxTokens)
			}
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.APIKey
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxTokens = int64(cfg.MaxTokens)
			}
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
