package perception

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoProviders means no provider had credentials.
	ErrNoProviders = errors.New("no LLM API keys configured")
	// ErrAllProvidersFailed means every configured provider failed or answered empty.
	ErrAllProvidersFailed = errors.New("all LLM providers failed")
)

// Candidate is one provider slot in the chain. A nil Client marks an
// unconfigured provider, which the chain skips silently.
type Candidate struct {
	Provider Provider
	Client   LLMClient
}

// ChainClient tries providers strictly in order and returns the first non-empty answer.
type ChainClient struct {
	candidates []Candidate
	timeout    time.Duration
	logger     *zap.Logger
}

// NewChainClient builds a chain over the configured candidates.
// timeout bounds each provider call; zero leaves it to the provider.
func NewChainClient(logger *zap.Logger, timeout time.Duration, candidates ...Candidate) *ChainClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	configured := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Client != nil {
			configured = append(configured, c)
		}
	}
	return &ChainClient{candidates: configured, timeout: timeout, logger: logger}
}

// Providers returns the configured providers in call order.
func (c *ChainClient) Providers() []Provider {
	out := make([]Provider, len(c.candidates))
	for i, cand := range c.candidates {
		out[i] = cand.Provider
	}
	return out
}

// Complete implements LLMClient.
func (c *ChainClient) Complete(ctx context.Context, prompt string) (string, error) {
	if len(c.candidates) == 0 {
		c.logger.Error("No LLM API keys configured!")
		return "", ErrNoProviders
	}

	var errs []error
	for _, cand := range c.candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := c.call(ctx, cand, prompt)
		switch {
		case errors.Is(err, ErrRateLimited):
			c.logger.Warn("Provider rate limited", zap.String("provider", string(cand.Provider)))
		case err != nil:
			c.logger.Error("Provider error", zap.String("provider", string(cand.Provider)), zap.Error(err))
		case strings.TrimSpace(resp) == "":
			err = ErrEmptyCompletion
			c.logger.Warn("Provider returned empty response", zap.String("provider", string(cand.Provider)))
		default:
			c.logger.Debug("Provider answered",
				zap.String("provider", string(cand.Provider)),
				zap.Int("response_len", len(resp)))
			return resp, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", cand.Provider, err))
	}
	return "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(errs...))
}

func (c *ChainClient) call(ctx context.Context, cand Candidate, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return cand.Client.Complete(ctx, prompt)
}
