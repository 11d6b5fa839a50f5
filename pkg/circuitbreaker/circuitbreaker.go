package circuitbreaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds circuit breaker configuration
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// CircuitBreaker wraps gobreaker with a context-aware Execute
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// New creates a circuit breaker from the given config
func New(cfg Config) *CircuitBreaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}

	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs the operation through the breaker, honoring context cancellation
func (cb *CircuitBreaker) Execute(ctx context.Context, operation func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := cb.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	return err
}

// State returns the current breaker state
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}
