package resilience

import "time"

// Policy bundles the retry and circuit-breaker knobs for one class of
// upstream calls. Zero or out-of-range fields fall back to defaults.
type Policy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64

	BreakerEnabled       bool
	BreakerMinRequests   uint32
	BreakerFailureRatio  float64
	BreakerOpenTimeout   time.Duration
	BreakerHalfOpenCalls uint32
}

// DefaultPolicy is tuned for external model providers: three attempts with
// a 1s then 2s pause, which is what their rate limiters expect.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,

		BreakerEnabled:       true,
		BreakerMinRequests:   10,
		BreakerFailureRatio:  0.5,
		BreakerOpenTimeout:   30 * time.Second,
		BreakerHalfOpenCalls: 2,
	}
}

func (p Policy) normalize() Policy {
	out := p
	def := DefaultPolicy()

	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = def.InitialBackoff
	}
	if out.MaxBackoff <= 0 {
		out.MaxBackoff = def.MaxBackoff
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}
	if out.BackoffMultiplier < 1.0 {
		out.BackoffMultiplier = def.BackoffMultiplier
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenCalls == 0 {
		out.BreakerHalfOpenCalls = def.BreakerHalfOpenCalls
	}

	return out
}
