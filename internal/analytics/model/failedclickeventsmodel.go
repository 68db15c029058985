package model

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ FailedClickEventsModel = (*customFailedClickEventsModel)(nil)

type (
	// FailedClickEventsModel is an interface to be customized, add more methods here,
	// and implement the added methods in customFailedClickEventsModel.
	FailedClickEventsModel interface {
		failedClickEventsModel
		withSession(session sqlx.Session) FailedClickEventsModel
		Upsert(ctx context.Context, data *FailedClickEvents) (bool, error)
		DeleteIfUnchanged(ctx context.Context, id int64, version int64) (bool, error)
		FindRetryable(ctx context.Context, maxRetries int64, now time.Time, limit int64) ([]*FailedClickEvents, error)
		UpdateRetry(ctx context.Context, id int64, retryCount int64, reason string, nextRetryAt time.Time) error
		CountPending(ctx context.Context, maxRetries int64) (int64, error)
		CountExhausted(ctx context.Context, maxRetries int64) (int64, error)
	}

	customFailedClickEventsModel struct {
		*defaultFailedClickEventsModel
	}
)

// NewFailedClickEventsModel returns a model for the database table.
func NewFailedClickEventsModel(conn sqlx.SqlConn) FailedClickEventsModel {
	return &customFailedClickEventsModel{
		defaultFailedClickEventsModel: newFailedClickEventsModel(conn),
	}
}

func (m *customFailedClickEventsModel) withSession(session sqlx.Session) FailedClickEventsModel {
	return NewFailedClickEventsModel(sqlx.NewSqlConnFromSession(session))
}

// Upsert stores a dead-lettered event and reports whether a new record was
// created. An event already waiting under the same (event_id, clicked_at) is
// refreshed instead: its payload, reason and next attempt are replaced, its
// retry count never goes down and its version is bumped.
func (m *customFailedClickEventsModel) Upsert(ctx context.Context, data *FailedClickEvents) (bool, error) {
	query := fmt.Sprintf(`insert into %s as f (event_id, clicked_at, payload, failure_reason, retry_count, next_retry_at)
		values ($1, $2, $3::jsonb, $4, $5, $6)
		on conflict (event_id, clicked_at) do update set
			payload = excluded.payload,
			failure_reason = excluded.failure_reason,
			retry_count = greatest(f.retry_count, excluded.retry_count),
			next_retry_at = excluded.next_retry_at,
			version = f.version + 1
		returning (xmax = 0)`, m.table)

	var inserted bool
	err := m.conn.QueryRowCtx(ctx, &inserted, query, data.EventId, data.ClickedAt, data.Payload,
		data.FailureReason, data.RetryCount, data.NextRetryAt)
	if err != nil {
		return false, err
	}

	return inserted, nil
}

// DeleteIfUnchanged deletes the record only while it still carries version.
// It returns false when the record was refreshed or already removed.
func (m *customFailedClickEventsModel) DeleteIfUnchanged(ctx context.Context, id int64, version int64) (bool, error) {
	query := fmt.Sprintf("delete from %s where id = $1 and version = $2", m.table)
	result, err := m.conn.ExecCtx(ctx, query, id, version)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// FindRetryable returns records under maxRetries that are due at now, oldest due first.
func (m *customFailedClickEventsModel) FindRetryable(ctx context.Context, maxRetries int64, now time.Time, limit int64) ([]*FailedClickEvents, error) {
	query := fmt.Sprintf(`select %s from %s
		where retry_count < $1 and next_retry_at <= $2
		order by next_retry_at limit $3`, failedClickEventsRows, m.table)

	var resp []*FailedClickEvents
	if err := m.conn.QueryRowsCtx(ctx, &resp, query, maxRetries, now, limit); err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *customFailedClickEventsModel) UpdateRetry(ctx context.Context, id int64, retryCount int64, reason string, nextRetryAt time.Time) error {
	query := fmt.Sprintf("update %s set retry_count = $2, failure_reason = $3, next_retry_at = $4, version = version + 1 where id = $1", m.table)
	_, err := m.conn.ExecCtx(ctx, query, id, retryCount, reason, nextRetryAt)
	return err
}

// CountPending counts records that will still be retried.
func (m *customFailedClickEventsModel) CountPending(ctx context.Context, maxRetries int64) (int64, error) {
	return m.count(ctx, "retry_count < $1", maxRetries)
}

// CountExhausted counts records that gave up and wait for an operator.
func (m *customFailedClickEventsModel) CountExhausted(ctx context.Context, maxRetries int64) (int64, error) {
	return m.count(ctx, "retry_count >= $1", maxRetries)
}

func (m *customFailedClickEventsModel) count(ctx context.Context, where string, args ...any) (int64, error) {
	query := fmt.Sprintf("select count(*) from %s where %s", m.table, where)
	var count int64
	if err := m.conn.QueryRowCtx(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}
