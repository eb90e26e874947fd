package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
	"github.com/hrcore/talent-match/internal/infrastructure/resilience"
)

// Resilient decorates a provider client with the shared retry and breaker
// policy. Only rate limiting is retried; provider-side validation errors
// and empty responses surface immediately.
type Resilient struct {
	inner    ports.TextGenerator
	executor *resilience.Executor
}

func NewResilient(inner ports.TextGenerator, policy resilience.Policy) *Resilient {
	return &Resilient{
		inner:    inner,
		executor: resilience.NewExecutor(policy),
	}
}

// OnRetry registers an observer fired before each retried provider call.
func (r *Resilient) OnRetry(observer RetryObserver) *Resilient {
	r.executor.OnRetry(observer)
	return r
}

func (r *Resilient) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	err := r.executor.Execute(ctx, "llm_generate", func(ctx context.Context) error {
		text, err := r.inner.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	}, classifyProviderError)
	if err != nil {
		return "", wrapTemporary("llm generate", err)
	}
	return out, nil
}

func classifyProviderError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}
	if domain.IsKind(err, domain.ErrInvalidInput) || domain.IsKind(err, domain.ErrEmptyResponse) {
		return resilience.Verdict{Retryable: false, RecordFailure: false}
	}
	if isRateLimited(err) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}
	return resilience.Verdict{Retryable: false, RecordFailure: true}
}

// isRateLimited matches on message text because providers surface throttling
// inconsistently: an HTTP 429, a gRPC RESOURCE_EXHAUSTED status, or a plain
// "rate limit" message depending on the SDK.
func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "resource exhausted", "rate limit"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func wrapTemporary(operation string, err error) error {
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyProviderError(err).Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
