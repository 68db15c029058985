package deadletter

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/analytics/model"
	"linkhub/internal/shared/events"
)

const defaultBatchSize = 100

// Republisher sends an event back to the primary topic.
type Republisher interface {
	Publish(ctx context.Context, ev events.ClickEvent, retryCount int) error
}

// RetryResult summarizes one retry pass.
type RetryResult struct {
	Found       int
	Republished int
	Failed      int
	Exhausted   int
}

// Retrier moves due dead-letter records back onto the primary topic.
type Retrier struct {
	store     model.FailedClickEventsModel
	publisher Republisher
	policy    Policy
	batchSize int64
	timeout   time.Duration
	now       func() time.Time
}

// NewRetrier creates a Retrier that reads due records batchSize at a time.
func NewRetrier(store model.FailedClickEventsModel, publisher Republisher, policy Policy, batchSize int64, timeout time.Duration) *Retrier {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Retrier{
		store:     store,
		publisher: publisher,
		policy:    policy,
		batchSize: batchSize,
		timeout:   timeout,
		now:       time.Now,
	}
}

// RunOnce republishes every record due at the start of the pass, one page
// at a time until a short page. A record is deleted once the broker accepted
// it, unless it was refreshed meanwhile; otherwise its retry count and next
// attempt are advanced. Only a page query can fail the pass.
func (r *Retrier) RunOnce(ctx context.Context) (RetryResult, error) {
	var result RetryResult
	now := r.now()
	seen := make(map[int64]struct{})

	for {
		rows, err := r.page(ctx, now)
		if err != nil {
			r.logResult(ctx, result)
			return result, err
		}

		fresh := 0
		for _, row := range rows {
			// A record whose delete or update failed comes back on the next page.
			if _, ok := seen[row.Id]; ok {
				continue
			}
			seen[row.Id] = struct{}{}
			fresh++
			result.Found++
			r.retry(ctx, row, &result)
		}

		if int64(len(rows)) < r.batchSize || fresh == 0 {
			break
		}
	}

	r.logResult(ctx, result)
	return result, nil
}

func (r *Retrier) page(ctx context.Context, now time.Time) ([]*model.FailedClickEvents, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.store.FindRetryable(ctx, r.policy.MaxRetries, now, r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("find retryable dead letters: %w", err)
	}
	return rows, nil
}

func (r *Retrier) logResult(ctx context.Context, result RetryResult) {
	if result.Found == 0 {
		return
	}
	logx.WithContext(ctx).Infow("dead-letter retry pass finished",
		logx.Field("found", result.Found),
		logx.Field("republished", result.Republished),
		logx.Field("failed", result.Failed),
		logx.Field("exhausted", result.Exhausted),
	)
}

func (r *Retrier) retry(ctx context.Context, row *model.FailedClickEvents, result *RetryResult) {
	logger := logx.WithContext(ctx)

	ev, err := events.Unmarshal([]byte(row.Payload))
	if err != nil {
		// The same bytes can never succeed; park the record for an operator.
		retryCount := max(row.RetryCount, r.policy.MaxRetries)
		r.update(ctx, row, retryCount, "undecodable payload: "+err.Error(), row.NextRetryAt)
		result.Exhausted++
		logger.Errorw("dead letter has undecodable payload, marked exhausted",
			logx.Field("id", row.Id),
			logx.Field("event_id", row.EventId),
		)
		return
	}

	attempt := row.RetryCount + 1
	if err := r.publisher.Publish(ctx, ev, int(attempt)); err != nil {
		next := r.now().Add(r.policy.NextRetryDelay(attempt))
		r.update(ctx, row, attempt, err.Error(), next)
		result.Failed++
		if r.policy.Exhausted(attempt) {
			result.Exhausted++
			logger.Errorw("dead letter exhausted its retries",
				logx.Field("id", row.Id),
				logx.Field("event_id", row.EventId),
				logx.Field("retry_count", attempt),
				logx.Field("error", err.Error()),
			)
		}
		return
	}

	result.Republished++
	deleteCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	deleted, err := r.store.DeleteIfUnchanged(deleteCtx, row.Id, row.Version)
	if err != nil {
		// The record is republished again later; the event store dedups.
		logger.Errorw("failed to delete republished dead letter",
			logx.Field("id", row.Id),
			logx.Field("error", err.Error()),
		)
		return
	}
	if !deleted {
		logger.Infow("dead letter refreshed while republishing, kept",
			logx.Field("id", row.Id),
			logx.Field("event_id", row.EventId),
		)
	}
}

func (r *Retrier) update(ctx context.Context, row *model.FailedClickEvents, retryCount int64, reason string, next time.Time) {
	updateCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.UpdateRetry(updateCtx, row.Id, retryCount, reason, next); err != nil {
		logx.WithContext(ctx).Errorw("failed to update dead letter",
			logx.Field("id", row.Id),
			logx.Field("error", err.Error()),
		)
	}
}
