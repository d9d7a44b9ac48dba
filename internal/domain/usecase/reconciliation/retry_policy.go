package reconciliation

import (
	"time"
)

// RetryPolicy bounds the casino-leg retry loop: exponential backoff with a
// cap, and a maximum attempt count after which the transaction fails with a
// distinguishable reason instead of being silently dropped.
type RetryPolicy struct {
	BaseDelay  time.Duration
	Factor     float64
	MaxDelay   time.Duration
	MaxRetries int
}

// DefaultRetryPolicy returns the default casino-leg retry policy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:  3 * time.Second,
		Factor:     2.0,
		MaxDelay:   60 * time.Second,
		MaxRetries: 10,
	}
}

// Backoff returns the delay before the given attempt (1-based). The delay
// grows exponentially and saturates at MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= p.Factor
		if delay >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}
