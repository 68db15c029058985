package deadletter

import (
	"math"
	"time"
)

// Policy is the dead-letter retry schedule: exponential backoff with a
// cap and a bounded number of attempts.
type Policy struct {
	MaxRetries int64         `json:",default=5"`
	BaseDelay  time.Duration `json:",default=60s"`
	Multiplier float64       `json:",default=5"`
	MaxDelay   time.Duration `json:",default=10h"`
}

// DefaultPolicy is 60s, 5m, 25m, 125m, then capped at 10h, at most 5 retries.
var DefaultPolicy = Policy{
	MaxRetries: 5,
	BaseDelay:  time.Minute,
	Multiplier: 5,
	MaxDelay:   10 * time.Hour,
}

// NextRetryDelay returns min(MaxDelay, BaseDelay·Multiplier^(retryCount−1)).
// A record that has never been retried waits BaseDelay.
func (p Policy) NextRetryDelay(retryCount int64) time.Duration {
	n := max(retryCount, 1)
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(n-1))
	if math.IsInf(d, 0) || math.IsNaN(d) || d >= float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Exhausted reports whether a record with retryCount attempts is no longer retried.
func (p Policy) Exhausted(retryCount int64) bool {
	return retryCount >= p.MaxRetries
}
