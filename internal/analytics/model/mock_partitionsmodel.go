package model

import (
	"context"
	"time"
)

// MockPartitionsModel is a test mock for PartitionsModel interface.
type MockPartitionsModel struct {
	ListFunc   func(ctx context.Context) ([]string, error)
	ExistsFunc func(ctx context.Context, name string) (bool, error)
	CreateFunc func(ctx context.Context, name string, from, to time.Time) error
	DetachFunc func(ctx context.Context, name string) error
	StatsFunc  func(ctx context.Context) ([]*PartitionStats, error)
	CountFunc  func(ctx context.Context) (int64, error)
}

// Ensure MockPartitionsModel implements PartitionsModel interface
var _ PartitionsModel = (*MockPartitionsModel)(nil)

func (m *MockPartitionsModel) List(ctx context.Context) ([]string, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	panic("MockPartitionsModel.ListFunc not set")
}

func (m *MockPartitionsModel) Exists(ctx context.Context, name string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, name)
	}
	panic("MockPartitionsModel.ExistsFunc not set")
}

func (m *MockPartitionsModel) Create(ctx context.Context, name string, from, to time.Time) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, name, from, to)
	}
	panic("MockPartitionsModel.CreateFunc not set")
}

func (m *MockPartitionsModel) Detach(ctx context.Context, name string) error {
	if m.DetachFunc != nil {
		return m.DetachFunc(ctx, name)
	}
	panic("MockPartitionsModel.DetachFunc not set")
}

func (m *MockPartitionsModel) Stats(ctx context.Context) ([]*PartitionStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	panic("MockPartitionsModel.StatsFunc not set")
}

func (m *MockPartitionsModel) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	panic("MockPartitionsModel.CountFunc not set")
}
