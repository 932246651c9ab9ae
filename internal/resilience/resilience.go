// Package resilience guards calls to the remote calendar with retry,
// exponential backoff and a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds retry parameters.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig retries twice starting at 200ms.
func DefaultConfig() Config {
	return Config{MaxRetries: 2, InitialBackoff: 200 * time.Millisecond}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryWithBackoff executes fn with exponential backoff + jitter until it
// succeeds, returns a permanent error, or retries run out.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil || IsPermanent(lastErr) {
			return lastErr
		}
		if attempt < cfg.MaxRetries && cfg.InitialBackoff > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * cfg.InitialBackoff
			wait := backoff
			if half := int64(backoff / 2); half > 0 {
				wait += time.Duration(rand.Int63n(half))
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return lastErr
}

// NewCircuitBreaker opens after 5 requests with at least 60% failures and
// probes again after 10s.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// Permanent errors are the caller's fault, not the remote's.
			return err == nil || IsPermanent(err)
		},
	})
}

// Guard combines a circuit breaker with retries. Each attempt goes
// through the breaker, so an open breaker fails fast.
type Guard struct {
	cb  *gobreaker.CircuitBreaker
	cfg Config
}

func NewGuard(name string, cfg Config) *Guard {
	return &Guard{cb: NewCircuitBreaker(name), cfg: cfg}
}

// Do runs fn under the guard.
func (g *Guard) Do(ctx context.Context, fn func() error) error {
	return RetryWithBackoff(ctx, g.cfg, func() error {
		_, err := g.cb.Execute(func() (interface{}, error) {
			return nil, fn()
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Permanent(err)
		}
		return err
	})
}

// State returns the breaker state name, for logging.
func (g *Guard) State() string {
	return g.cb.State().String()
}
