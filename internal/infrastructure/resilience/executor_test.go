package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2.0,
		BreakerEnabled:    false,
	}
}

func retryAll(error) Verdict {
	return Verdict{Retryable: true, RecordFailure: true}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	executor := NewExecutor(fastPolicy())

	calls := 0
	err := executor.Execute(context.Background(), "generate", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("429 too many requests")
		}
		return nil
	}, retryAll)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	executor := NewExecutor(fastPolicy())

	calls := 0
	wantErr := errors.New("rate limit")
	err := executor.Execute(context.Background(), "generate", func(context.Context) error {
		calls++
		return wantErr
	}, retryAll)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected final attempt error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestExecuteReturnsErrorFromFinalAttempt(t *testing.T) {
	executor := NewExecutor(fastPolicy())

	attempt := 0
	err := executor.Execute(context.Background(), "generate", func(context.Context) error {
		attempt++
		return fmt.Errorf("429 attempt %d", attempt)
	}, retryAll)
	if err == nil || err.Error() != "429 attempt 3" {
		t.Fatalf("expected the final attempt's error, got %v", err)
	}
}

func TestExecuteNotifiesRetryHook(t *testing.T) {
	var retried []string
	executor := NewExecutor(fastPolicy()).OnRetry(func(operation string) {
		retried = append(retried, operation)
	})

	_ = executor.Execute(context.Background(), "generate", func(context.Context) error {
		return errors.New("429")
	}, retryAll)

	// 3 attempts mean 2 retries; the final failure is not a retry.
	if len(retried) != 2 {
		t.Fatalf("expected 2 retry notifications, got %d", len(retried))
	}
	for _, operation := range retried {
		if operation != "generate" {
			t.Fatalf("retry hook got operation %q, want %q", operation, "generate")
		}
	}
}

func TestExecuteStopsOnNonRetryable(t *testing.T) {
	executor := NewExecutor(fastPolicy())

	calls := 0
	err := executor.Execute(context.Background(), "generate", func(context.Context) error {
		calls++
		return errors.New("invalid request")
	}, func(error) Verdict {
		return Verdict{Retryable: false, RecordFailure: true}
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error must not be retried, got %d attempts", calls)
	}
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	executor := NewExecutor(Policy{
		MaxAttempts:       3,
		InitialBackoff:    time.Minute,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 2.0,
		BreakerEnabled:    false,
	})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- executor.Execute(ctx, "generate", func(context.Context) error {
			calls++
			return errors.New("429")
		}, retryAll)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected error after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatalf("Execute() did not return after context cancellation")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", calls)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	policy := fastPolicy()
	policy.BreakerEnabled = true
	policy.BreakerMinRequests = 3
	policy.BreakerFailureRatio = 0.5
	policy.BreakerOpenTimeout = time.Minute
	executor := NewExecutor(policy)

	fail := func(context.Context) error { return errors.New("boom") }
	noRetry := func(error) Verdict { return Verdict{Retryable: false, RecordFailure: true} }

	for i := 0; i < 3; i++ {
		_ = executor.Execute(context.Background(), "flaky", fail, noRetry)
	}

	err := executor.Execute(context.Background(), "flaky", fail, noRetry)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	policy := fastPolicy()
	policy.BreakerEnabled = true
	policy.BreakerMinRequests = 2
	policy.BreakerFailureRatio = 0.5
	policy.BreakerOpenTimeout = time.Minute
	executor := NewExecutor(policy)

	noRetry := func(error) Verdict { return Verdict{Retryable: false, RecordFailure: true} }
	for i := 0; i < 3; i++ {
		_ = executor.Execute(context.Background(), "broken", func(context.Context) error {
			return errors.New("boom")
		}, noRetry)
	}

	if err := executor.Execute(context.Background(), "healthy", func(context.Context) error {
		return nil
	}, noRetry); err != nil {
		t.Fatalf("unrelated operation tripped by another breaker: %v", err)
	}
}
