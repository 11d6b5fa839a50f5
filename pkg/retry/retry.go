package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Policy defines retry behavior
type Policy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         bool
}

// DefaultPolicy returns a policy suitable for idempotent network calls
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// Validate checks the policy for sane values
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if p.InitialBackoff <= 0 {
		return fmt.Errorf("initial backoff must be positive")
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("multiplier must be >= 1")
	}
	return nil
}

// Retrier handles retry logic
type Retrier struct {
	policy Policy
	logger *zap.Logger
}

// NewRetrier creates a new retrier
func NewRetrier(policy Policy, logger *zap.Logger) *Retrier {
	if err := policy.Validate(); err != nil {
		panic(fmt.Sprintf("invalid retry policy: %v", err))
	}
	return &Retrier{policy: policy, logger: logger}
}

// Do executes a function with retry logic
func (r *Retrier) Do(ctx context.Context, operation func() error) error {
	var lastErr error
	backoff := r.policy.InitialBackoff

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if attempt == r.policy.MaxRetries {
			break
		}

		wait := backoff
		if r.policy.Jitter {
			wait = backoff/2 + time.Duration(rand.Int63n(int64(backoff/2)+1))
		}

		r.logger.Debug("retrying operation",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		backoff = time.Duration(float64(backoff) * r.policy.Multiplier)
		if backoff > r.policy.MaxBackoff {
			backoff = r.policy.MaxBackoff
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", r.policy.MaxRetries+1, lastErr)
}
