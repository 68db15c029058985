package model

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// MockClickEventsModel is a test mock for ClickEventsModel interface.
type MockClickEventsModel struct {
	FindOneByEventIdFunc func(ctx context.Context, eventId string, clickedAt time.Time) (*ClickEvents, error)
	BulkInsertIgnoreFunc func(ctx context.Context, rows []*ClickEvents) ([]bool, error)
	InsertIgnoreFunc     func(ctx context.Context, row *ClickEvents) (bool, error)
	ApproxCountFunc      func(ctx context.Context) (int64, error)
	WithSessionFunc      func(session sqlx.Session) ClickEventsModel
}

// Ensure MockClickEventsModel implements ClickEventsModel interface
var _ ClickEventsModel = (*MockClickEventsModel)(nil)

func (m *MockClickEventsModel) FindOneByEventId(ctx context.Context, eventId string, clickedAt time.Time) (*ClickEvents, error) {
	if m.FindOneByEventIdFunc != nil {
		return m.FindOneByEventIdFunc(ctx, eventId, clickedAt)
	}
	panic("MockClickEventsModel.FindOneByEventIdFunc not set")
}

func (m *MockClickEventsModel) BulkInsertIgnore(ctx context.Context, rows []*ClickEvents) ([]bool, error) {
	if m.BulkInsertIgnoreFunc != nil {
		return m.BulkInsertIgnoreFunc(ctx, rows)
	}
	panic("MockClickEventsModel.BulkInsertIgnoreFunc not set")
}

func (m *MockClickEventsModel) InsertIgnore(ctx context.Context, row *ClickEvents) (bool, error) {
	if m.InsertIgnoreFunc != nil {
		return m.InsertIgnoreFunc(ctx, row)
	}
	panic("MockClickEventsModel.InsertIgnoreFunc not set")
}

func (m *MockClickEventsModel) ApproxCount(ctx context.Context) (int64, error) {
	if m.ApproxCountFunc != nil {
		return m.ApproxCountFunc(ctx)
	}
	panic("MockClickEventsModel.ApproxCountFunc not set")
}

func (m *MockClickEventsModel) withSession(session sqlx.Session) ClickEventsModel {
	if m.WithSessionFunc != nil {
		return m.WithSessionFunc(session)
	}
	panic("MockClickEventsModel.WithSessionFunc not set")
}
