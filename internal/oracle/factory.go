// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

const defaultClaudeModel = "claude-sonnet-4-5-20250929"

// New builds the generator selected by cfg, wrapped with retries and, when
// configured, rate limiting. ProviderNone (or an empty provider) yields Null.
// A missing API key for a live provider is a configuration error.
func New(cfg types.AIConfig, client *http.Client) (Generator, error) {
	var gen Generator

	switch cfg.Provider {
	case "", types.ProviderNone:
		return Null{}, nil
	case types.ProviderClaude:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("provider %q requires an API key (anthropic-api-key secret or generation.api_key)", cfg.Provider)
		}
		model := cfg.Model
		if model == "" {
			model = defaultClaudeModel
		}
		gen = &Claude{
			APIKey:    cfg.APIKey,
			Model:     model,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.BaseURL,
			Client:    client,
		}
	case types.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("provider %q requires an API key (openai-api-key secret or generation.api_key)", cfg.Provider)
		}
		gen = NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported generation provider %q: use none, claude, or openai", cfg.Provider)
	}

	gen = WithRetry(gen, cfg.MaxRetries)
	return WithRateLimit(gen, cfg.RequestsPerSecond, 1), nil
}
