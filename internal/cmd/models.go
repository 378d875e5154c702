package cmd

import (
	"context"
	"fmt"

	"github.com/rahul/finbot/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// buildModels creates one model per enabled provider.
func buildModels(ctx context.Context, cfg *config.Config) (map[string]llms.Model, error) {
	models := make(map[string]llms.Model)
	for _, name := range cfg.EnabledProviders() {
		m, err := buildModel(ctx, cfg.Providers[name])
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", name, err)
		}
		models[name] = m
	}
	return models, nil
}

func buildModel(ctx context.Context, p config.ProviderConfig) (llms.Model, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("api_key is not configured")
	}

	switch p.Kind {
	case "googleai", "gemini":
		opts := []googleai.Option{googleai.WithAPIKey(p.APIKey)}
		if p.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(p.Model))
		}
		return googleai.New(ctx, opts...)
	case "openai", "openrouter", "":
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		baseURL := p.BaseURL
		if baseURL == "" && p.Kind != "openai" {
			baseURL = openRouterBaseURL
		}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", p.Kind)
	}
}
