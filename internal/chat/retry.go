package chat

import (
	"math"
	"time"
)

// RetryPolicy defines backoff behavior for re-reading the conversation
// listing after the backend mints a new conversation. The write may not
// be visible to an immediate read, so the refresh polls with growing
// delays instead of sleeping a fixed interval.
type RetryPolicy struct {
	MaxRetries   int           // attempts after the first (0 = single read)
	InitialDelay time.Duration // delay before the first retry
	MaxDelay     time.Duration // cap on the computed delay
	Multiplier   float64       // exponential growth factor
}

// Delay computes the wait before retry number attempt (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}

func defaultRefreshPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   4,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}
}
