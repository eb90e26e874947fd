package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
	"github.com/hrcore/talent-match/internal/infrastructure/llm/gemini"
	"github.com/hrcore/talent-match/internal/infrastructure/llm/openai"
	"github.com/hrcore/talent-match/internal/infrastructure/resilience"
)

// Supported text-generation providers.
const (
	ProviderGemini  = "gemini"
	ProviderChatGPT = "chatgpt"
)

// RetryObserver is notified with the operation name each time a provider
// call is about to be retried.
type RetryObserver func(operation string)

// Config selects and configures the external text-generation provider.
type Config struct {
	Provider string

	GeminiAPIKey string
	GeminiModel  string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
}

// NewGenerator builds the configured provider client wrapped with the retry
// and circuit-breaker policy. The provider set is closed: anything but
// gemini or chatgpt is rejected up front.
func NewGenerator(ctx context.Context, cfg Config, policy resilience.Policy) (*Resilient, error) {
	var (
		inner ports.TextGenerator
		err   error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		inner, err = gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case ProviderChatGPT:
		inner, err = openai.NewGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedProvider, "build generator",
			fmt.Errorf("unknown provider %q", cfg.Provider))
	}
	if err != nil {
		return nil, fmt.Errorf("build %s generator: %w", cfg.Provider, err)
	}

	return NewResilient(inner, policy), nil
}

// Validate rejects unknown provider names without touching provider APIs.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "", ProviderGemini, ProviderChatGPT:
		return nil
	default:
		return domain.WrapError(domain.ErrUnsupportedProvider, "validate llm config",
			errors.New(c.Provider))
	}
}
