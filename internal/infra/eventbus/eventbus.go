package eventbus

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"

	"linkhub/internal/shared/events"
)

const (
	// ClickEventsTopic is the primary topic for click events.
	ClickEventsTopic = "click-events"
	// ClickEventsDLQTopic receives dead-lettered click events for external tooling.
	ClickEventsDLQTopic = "click-events-dlq"

	HeaderEventID    = "event_id"
	HeaderRetryCount = "x-retry-count"
)

// MessageWriter is the subset of *kafka.Writer used by the EventBus.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventBus publishes click events to the primary topic. Every send is
// bounded by a timeout, retried at the transport tier and guarded by a
// circuit breaker.
type EventBus struct {
	writer      MessageWriter
	breaker     *gobreaker.CircuitBreaker[struct{}]
	retry       RetryConf
	sendTimeout time.Duration
}

// NewEventBus creates an EventBus on top of writer.
func NewEventBus(writer MessageWriter, c PublisherConf) *EventBus {
	return &EventBus{
		writer:      writer,
		breaker:     NewBreaker(c.Breaker),
		retry:       c.Retry,
		sendTimeout: c.SendTimeout,
	}
}

// Publish sends ev keyed by its short code. retryCount is the number of
// retry attempts already spent on the event and travels as a header.
func (b *EventBus) Publish(ctx context.Context, ev events.ClickEvent, retryCount int) error {
	msg, err := EventToMessage(ev, retryCount)
	if err != nil {
		return err
	}

	return Retry(ctx, b.retry, "publish "+ev.EventID.String(), func() error {
		_, err := b.breaker.Execute(func() (struct{}, error) {
			sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
			defer cancel()
			return struct{}{}, b.writer.WriteMessages(sendCtx, msg)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		return err
	})
}

// BreakerState reports the state of the publish circuit breaker.
func (b *EventBus) BreakerState() gobreaker.State {
	return b.breaker.State()
}

// Close flushes and closes the underlying writer.
func (b *EventBus) Close() error {
	return b.writer.Close()
}

// EventToMessage converts a click event to a Kafka message keyed by short code.
func EventToMessage(ev events.ClickEvent, retryCount int) (kafka.Message, error) {
	payload, err := events.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(ev.ShortCode),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(ev.EventID.String())},
			{Key: HeaderRetryCount, Value: []byte(strconv.Itoa(retryCount))},
		},
	}, nil
}

// MessageToEvent decodes a Kafka message. A decode error is permanent.
// A missing or malformed retry header counts as zero attempts.
func MessageToEvent(msg kafka.Message) (events.ClickEvent, int, error) {
	ev, err := events.Unmarshal(msg.Value)
	if err != nil {
		return events.ClickEvent{}, 0, err
	}
	return ev, RetryCountOf(msg), nil
}

// RetryCountOf returns the x-retry-count header value of msg.
func RetryCountOf(msg kafka.Message) int {
	for _, h := range msg.Headers {
		if h.Key != HeaderRetryCount {
			continue
		}
		n, err := strconv.Atoi(string(h.Value))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	return 0
}
