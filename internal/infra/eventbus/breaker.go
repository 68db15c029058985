package eventbus

import (
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/zeromicro/go-zero/core/logx"
)

// BreakerConf configures the circuit breaker around broker sends.
type BreakerConf struct {
	Name                string        `json:",default=click-events-producer"`
	MaxRequests         uint32        `json:",default=1"`
	Interval            time.Duration `json:",default=60s"`
	Timeout             time.Duration `json:",default=30s"`
	ConsecutiveFailures uint32        `json:",default=5"`
}

// NewBreaker builds a breaker that opens after ConsecutiveFailures failed
// sends and lets a trial send through after Timeout.
func NewBreaker(c BreakerConf) *gobreaker.CircuitBreaker[struct{}] {
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        c.Name,
		MaxRequests: c.MaxRequests,
		Interval:    c.Interval,
		Timeout:     c.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logx.Infow("circuit breaker state changed",
				logx.Field("breaker", name),
				logx.Field("from", from.String()),
				logx.Field("to", to.String()),
			)
		},
	})
}
