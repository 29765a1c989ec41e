package utils

import (
	"math"
	"time"
)

// BackoffStrategy represents a retry backoff strategy
type BackoffStrategy interface {
	// NextDelay returns the delay for the given attempt number (0-indexed)
	NextDelay(attempt int) time.Duration
}

// ConstantBackoff implements a constant backoff strategy
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns the constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	return cb.Delay
}

// ExponentialBackoff doubles (by Multiplier) the delay each attempt up to MaxDelay.
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	Multiplier float64
	MaxDelay   time.Duration
}

// NewExponentialBackoff creates a new exponential backoff strategy
func NewExponentialBackoff(baseDelay, maxDelay time.Duration, multiplier float64) *ExponentialBackoff {
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return &ExponentialBackoff{
		BaseDelay:  baseDelay,
		Multiplier: multiplier,
		MaxDelay:   maxDelay,
	}
}

// NextDelay returns the exponentially increasing delay
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt))
	if eb.MaxDelay > 0 && delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}
	return time.Duration(delay)
}

// Retry calls fn up to attempts times, sleeping per strategy between failures.
// It returns the last error.
func Retry(attempts int, strategy BackoffStrategy, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 && strategy != nil {
			time.Sleep(strategy.NextDelay(i))
		}
	}
	return err
}
