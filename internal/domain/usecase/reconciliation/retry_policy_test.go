package reconciliation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyBackoff(t *testing.T) {
	policy := RetryPolicy{
		BaseDelay:  3 * time.Second,
		Factor:     2.0,
		MaxDelay:   60 * time.Second,
		MaxRetries: 10,
	}

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{"First attempt uses the base delay", 1, 3 * time.Second},
		{"Second attempt doubles", 2, 6 * time.Second},
		{"Third attempt doubles again", 3, 12 * time.Second},
		{"Fourth attempt", 4, 24 * time.Second},
		{"Fifth attempt", 5, 48 * time.Second},
		{"Sixth attempt saturates at the cap", 6, 60 * time.Second},
		{"Far beyond the cap stays at the cap", 20, 60 * time.Second},
		{"Zero attempt is treated as the first", 0, 3 * time.Second},
		{"Negative attempt is treated as the first", -1, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.Backoff(tt.attempt))
		})
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, 3*time.Second, policy.BaseDelay)
	assert.Equal(t, 2.0, policy.Factor)
	assert.Equal(t, 60*time.Second, policy.MaxDelay)
	assert.Equal(t, 10, policy.MaxRetries)
}

func TestRetryPolicyBackoffIsMonotonic(t *testing.T) {
	policy := DefaultRetryPolicy()

	prev := time.Duration(0)
	for attempt := 1; attempt <= policy.MaxRetries; attempt++ {
		delay := policy.Backoff(attempt)
		assert.GreaterOrEqual(t, delay, prev, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, policy.MaxDelay, "attempt %d", attempt)
		prev = delay
	}
}
