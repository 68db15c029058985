package model

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// MockFailedClickEventsModel is a test mock for FailedClickEventsModel interface.
type MockFailedClickEventsModel struct {
	FindOneFunc           func(ctx context.Context, id int64) (*FailedClickEvents, error)
	DeleteFunc            func(ctx context.Context, id int64) error
	UpsertFunc            func(ctx context.Context, data *FailedClickEvents) (bool, error)
	DeleteIfUnchangedFunc func(ctx context.Context, id int64, version int64) (bool, error)
	FindRetryableFunc     func(ctx context.Context, maxRetries int64, now time.Time, limit int64) ([]*FailedClickEvents, error)
	UpdateRetryFunc       func(ctx context.Context, id int64, retryCount int64, reason string, nextRetryAt time.Time) error
	CountPendingFunc      func(ctx context.Context, maxRetries int64) (int64, error)
	CountExhaustedFunc    func(ctx context.Context, maxRetries int64) (int64, error)
	WithSessionFunc       func(session sqlx.Session) FailedClickEventsModel
}

// Ensure MockFailedClickEventsModel implements FailedClickEventsModel interface
var _ FailedClickEventsModel = (*MockFailedClickEventsModel)(nil)

func (m *MockFailedClickEventsModel) FindOne(ctx context.Context, id int64) (*FailedClickEvents, error) {
	if m.FindOneFunc != nil {
		return m.FindOneFunc(ctx, id)
	}
	panic("MockFailedClickEventsModel.FindOneFunc not set")
}

func (m *MockFailedClickEventsModel) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	panic("MockFailedClickEventsModel.DeleteFunc not set")
}

func (m *MockFailedClickEventsModel) Upsert(ctx context.Context, data *FailedClickEvents) (bool, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, data)
	}
	panic("MockFailedClickEventsModel.UpsertFunc not set")
}

func (m *MockFailedClickEventsModel) DeleteIfUnchanged(ctx context.Context, id int64, version int64) (bool, error) {
	if m.DeleteIfUnchangedFunc != nil {
		return m.DeleteIfUnchangedFunc(ctx, id, version)
	}
	panic("MockFailedClickEventsModel.DeleteIfUnchangedFunc not set")
}

func (m *MockFailedClickEventsModel) FindRetryable(ctx context.Context, maxRetries int64, now time.Time, limit int64) ([]*FailedClickEvents, error) {
	if m.FindRetryableFunc != nil {
		return m.FindRetryableFunc(ctx, maxRetries, now, limit)
	}
	panic("MockFailedClickEventsModel.FindRetryableFunc not set")
}

func (m *MockFailedClickEventsModel) UpdateRetry(ctx context.Context, id int64, retryCount int64, reason string, nextRetryAt time.Time) error {
	if m.UpdateRetryFunc != nil {
		return m.UpdateRetryFunc(ctx, id, retryCount, reason, nextRetryAt)
	}
	panic("MockFailedClickEventsModel.UpdateRetryFunc not set")
}

func (m *MockFailedClickEventsModel) CountPending(ctx context.Context, maxRetries int64) (int64, error) {
	if m.CountPendingFunc != nil {
		return m.CountPendingFunc(ctx, maxRetries)
	}
	panic("MockFailedClickEventsModel.CountPendingFunc not set")
}

func (m *MockFailedClickEventsModel) CountExhausted(ctx context.Context, maxRetries int64) (int64, error) {
	if m.CountExhaustedFunc != nil {
		return m.CountExhaustedFunc(ctx, maxRetries)
	}
	panic("MockFailedClickEventsModel.CountExhaustedFunc not set")
}

func (m *MockFailedClickEventsModel) withSession(session sqlx.Session) FailedClickEventsModel {
	if m.WithSessionFunc != nil {
		return m.WithSessionFunc(session)
	}
	panic("MockFailedClickEventsModel.WithSessionFunc not set")
}
