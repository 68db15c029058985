package producer

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/shared/events"
)

// Publisher sends a click event to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev events.ClickEvent, retryCount int) error
}

// DeadLetterRecorder stores an event the broker did not accept.
type DeadLetterRecorder interface {
	Record(ctx context.Context, ev events.ClickEvent, reason string, retryCount int) error
}

// Metrics receives the producer's outcomes.
type Metrics interface {
	IncPublished()
	IncPublishFailed()
	IncLost()
}

// Conf configures the producer.
type Conf struct {
	Concurrency int `json:",default=64"`
}

// Producer publishes click events off the caller's path. Publish never
// blocks and never fails: events the broker rejects are dead-lettered,
// and events that cannot be dead-lettered are logged and dropped.
type Producer struct {
	publisher Publisher
	dlq       DeadLetterRecorder
	metrics   Metrics
	runner    *threading.TaskRunner
	fallback  *threading.RoutineGroup
}

// New creates a Producer. metrics may be nil.
func New(publisher Publisher, dlq DeadLetterRecorder, c Conf, metrics Metrics) *Producer {
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Producer{
		publisher: publisher,
		dlq:       dlq,
		metrics:   metrics,
		runner:    threading.NewTaskRunner(c.Concurrency),
		fallback:  threading.NewRoutineGroup(),
	}
}

// Publish hands ev to a background sender and returns immediately. When
// every sender is busy the event goes straight to the dead-letter table.
func (p *Producer) Publish(ctx context.Context, ev events.ClickEvent) {
	// The request that produced the click is long gone by the time we deliver.
	ctx = context.WithoutCancel(ctx)

	err := p.runner.ScheduleImmediately(func() {
		p.send(ctx, ev)
	})
	if err != nil {
		p.metrics.IncPublishFailed()
		p.fallback.RunSafe(func() {
			p.deadLetter(ctx, ev, "producer saturated: "+err.Error())
		})
	}
}

// Close waits for in-flight sends and dead-letter writes to finish.
func (p *Producer) Close() {
	p.runner.Wait()
	p.fallback.Wait()
}

func (p *Producer) send(ctx context.Context, ev events.ClickEvent) {
	if err := p.publisher.Publish(ctx, ev, 0); err != nil {
		p.metrics.IncPublishFailed()
		logx.WithContext(ctx).Errorw("failed to publish click event, dead-lettering",
			logx.Field("event_id", ev.EventID.String()),
			logx.Field("short_code", ev.ShortCode),
			logx.Field("error", err.Error()),
		)
		p.deadLetter(ctx, ev, "publish failed: "+err.Error())
		return
	}
	p.metrics.IncPublished()
}

func (p *Producer) deadLetter(ctx context.Context, ev events.ClickEvent, reason string) {
	if err := p.dlq.Record(ctx, ev, reason, 0); err != nil {
		p.metrics.IncLost()
		deadletter.LogLost(ctx, ev, reason, err)
	}
}

type nopMetrics struct{}

func (nopMetrics) IncPublished()     {}
func (nopMetrics) IncPublishFailed() {}
func (nopMetrics) IncLost()          {}
