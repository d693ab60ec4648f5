package llm

import (
	"context"

	"ai-kitchen/internal/config"
)

// NewGenerator returns the TextGenerator for the configured provider. The
// returned close function is always safe to call.
func NewGenerator(ctx context.Context, cfg *config.Config, opts ModelOptions) (TextGenerator, func() error, error) {
	if cfg.LLMProvider == config.ProviderGemini {
		client, err := NewGeminiClient(ctx, cfg, opts)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		return client, client.Close, nil
	}
	return NewOpenAIClient(cfg, opts), func() error { return nil }, nil
}
