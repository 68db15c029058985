package deadletter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/analytics/model"
	"linkhub/internal/shared/events"
)

// Pusher publishes to the dead-letter topic. *kq.Pusher satisfies it.
type Pusher interface {
	PushWithKey(ctx context.Context, key, v string) error
}

// Writer stores failed click events for the retry scheduler and mirrors
// them to the dead-letter topic.
type Writer struct {
	store   model.FailedClickEventsModel
	pusher  Pusher
	policy  Policy
	timeout time.Duration
	now     func() time.Time
}

// NewWriter creates a Writer. pusher may be nil, in which case only the
// table is written. timeout bounds each write.
func NewWriter(store model.FailedClickEventsModel, pusher Pusher, policy Policy, timeout time.Duration) *Writer {
	return &Writer{
		store:   store,
		pusher:  pusher,
		policy:  policy,
		timeout: timeout,
		now:     time.Now,
	}
}

// Record upserts ev into the dead-letter table. retryCount is the number of
// retry attempts already spent on the event; the next retry is scheduled
// accordingly. An event already waiting under the same key is refreshed in
// place, so a retrier holding the older copy will not delete it.
func (w *Writer) Record(ctx context.Context, ev events.ClickEvent, reason string, retryCount int) error {
	payload, err := events.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode dead letter %s: %w", ev.EventID, err)
	}

	row := &model.FailedClickEvents{
		EventId:       ev.EventID.String(),
		ClickedAt:     ev.ClickedAt,
		Payload:       string(payload),
		FailureReason: reason,
		RetryCount:    int64(retryCount),
		NextRetryAt:   w.now().Add(w.policy.NextRetryDelay(int64(retryCount))),
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	inserted, err := w.store.Upsert(ctx, row)
	if err != nil {
		return fmt.Errorf("store dead letter %s: %w", ev.EventID, err)
	}
	if !inserted {
		logx.WithContext(ctx).Infow("dead letter refreshed",
			logx.Field("event_id", ev.EventID.String()),
			logx.Field("retry_count", retryCount),
		)
	}

	return nil
}

// DeadLetter publishes ev to the dead-letter topic and records it in the
// table. The two writes are independent: a failure of one does not stop
// the other. The returned error joins whichever failed.
func (w *Writer) DeadLetter(ctx context.Context, ev events.ClickEvent, reason string, retryCount int) error {
	var pushErr error
	if w.pusher != nil {
		pushErr = w.push(ctx, ev)
		if pushErr != nil {
			logx.WithContext(ctx).Errorw("failed to publish to dead-letter topic",
				logx.Field("event_id", ev.EventID.String()),
				logx.Field("short_code", ev.ShortCode),
				logx.Field("error", pushErr.Error()),
			)
		}
	}

	storeErr := w.Record(ctx, ev, reason, retryCount)
	if storeErr != nil {
		LogLost(ctx, ev, reason, storeErr)
	}

	return errors.Join(pushErr, storeErr)
}

func (w *Writer) push(ctx context.Context, ev events.ClickEvent) error {
	payload, err := events.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	return w.pusher.PushWithKey(ctx, ev.ShortCode, string(payload))
}

// LogLost logs every field of an event that could not be stored anywhere.
func LogLost(ctx context.Context, ev events.ClickEvent, reason string, err error) {
	logx.WithContext(ctx).Errorw("dead-letter write failed, click event discarded",
		logx.Field("event_id", ev.EventID.String()),
		logx.Field("url_id", ev.URLID),
		logx.Field("short_code", ev.ShortCode),
		logx.Field("clicked_at", ev.ClickedAt),
		logx.Field("ip_address", ev.IPAddress),
		logx.Field("user_agent", ev.UserAgent),
		logx.Field("referrer", ev.ReferrerOrEmpty()),
		logx.Field("reason", reason),
		logx.Field("error", err.Error()),
	)
}
