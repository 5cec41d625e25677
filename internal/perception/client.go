// Package perception adapts the text-generation providers the node consults
// for its decision and chains them in a fixed priority order.
package perception

import (
	"errors"
	"fmt"

	"dahaonode/internal/types"
)

// LLMClient defines the interface for LLM providers.
// This is an alias to types.LLMClient so callers need only one import.
type LLMClient = types.LLMClient

// Provider names an oracle backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ProviderOrder is the fixed fallback order.
var ProviderOrder = []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic}

var (
	// ErrAPIKeyMissing is returned by a provider called without credentials.
	ErrAPIKeyMissing = errors.New("API key not configured")
	// ErrRateLimited marks an HTTP 429 from a provider.
	ErrRateLimited = errors.New("rate limit exceeded (429)")
	// ErrAPIStatus marks any other non-2xx response.
	ErrAPIStatus = errors.New("API request failed")
	// ErrEmptyCompletion means the provider answered without text.
	ErrEmptyCompletion = errors.New("no completion returned")
)

func statusError(code int, body []byte) error {
	if code == 429 {
		return ErrRateLimited
	}
	return fmt.Errorf("%w with status %d: %s", ErrAPIStatus, code, string(body))
}
