package perception

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dahaonode/internal/config"
)

// NewClientFromConfig builds the provider chain from configuration.
// Providers without a key are left out; a provider that cannot be constructed
// is logged and left out as well.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) *ChainClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.GetLLMTimeout()
	candidates := make([]Candidate, 0, len(ProviderOrder))
	for _, p := range ProviderOrder {
		client := newProviderClient(ctx, p, cfg, timeout, logger)
		if client == nil {
			continue
		}
		candidates = append(candidates, Candidate{Provider: p, Client: client})
	}
	return NewChainClient(logger, timeout, candidates...)
}

// newProviderClient returns nil when the provider has no key or fails to start.
func newProviderClient(ctx context.Context, p Provider, cfg *config.Config, timeout time.Duration, logger *zap.Logger) LLMClient {
	switch p {
	case ProviderGemini:
		if cfg.LLM.GeminiAPIKey == "" {
			return nil
		}
		gc := DefaultGeminiConfig(cfg.LLM.GeminiAPIKey)
		gc.Timeout = timeout
		if cfg.LLM.GeminiModel != "" {
			gc.Model = cfg.LLM.GeminiModel
		}
		client, err := NewGeminiClientWithConfig(ctx, gc)
		if err != nil {
			logger.Error("Failed to create Gemini client", zap.Error(err))
			return nil
		}
		return client

	case ProviderOpenAI:
		if cfg.LLM.OpenAIAPIKey == "" {
			return nil
		}
		oc := DefaultOpenAIConfig(cfg.LLM.OpenAIAPIKey)
		oc.Timeout = timeout
		if cfg.LLM.OpenAIModel != "" {
			oc.Model = cfg.LLM.OpenAIModel
		}
		return NewOpenAIClientWithConfig(oc)

	case ProviderAnthropic:
		if cfg.LLM.AnthropicAPIKey == "" {
			return nil
		}
		ac := DefaultAnthropicConfig(cfg.LLM.AnthropicAPIKey)
		ac.Timeout = timeout
		if cfg.LLM.AnthropicModel != "" {
			ac.Model = cfg.LLM.AnthropicModel
		}
		return NewAnthropicClientWithConfig(ac)
	}
	return nil
}
