package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/metrics"
	"linkhub/internal/analytics/model"
	"linkhub/internal/analytics/partition"
	"linkhub/services/analytics-jobs/internal/config"
	"linkhub/services/analytics-jobs/internal/svc"
)

type stubRetrier struct {
	result deadletter.RetryResult
	err    error
}

func (s stubRetrier) RunOnce(context.Context) (deadletter.RetryResult, error) {
	return s.result, s.err
}

type stubPartitions struct {
	infos []partition.Info
	err   error
	runs  int
}

func (s *stubPartitions) Run(context.Context) { s.runs++ }

func (s *stubPartitions) Stats(context.Context) ([]partition.Info, error) {
	return s.infos, s.err
}

type stubLag struct {
	lag    int64
	active bool
	err    error
}

func (s stubLag) Lag(context.Context) (int64, bool, error) {
	return s.lag, s.active, s.err
}

func newServiceContext() *svc.ServiceContext {
	return &svc.ServiceContext{
		Config: config.Config{
			DeadLetter: deadletter.DefaultPolicy,
			Lag:        config.LagConf{Threshold: 1000, Timeout: time.Second},
			OpTimeout:  time.Second,
		},
		Metrics: metrics.New(prometheus.NewRegistry()),
	}
}

func TestRetryDeadLetters(t *testing.T) {
	svcCtx := newServiceContext()
	svcCtx.Retrier = stubRetrier{result: deadletter.RetryResult{Found: 4, Republished: 2, Failed: 1, Exhausted: 1}}

	resp, err := NewRetryDeadLettersLogic(context.Background(), svcCtx).RetryDeadLetters()

	require.NoError(t, err)
	assert.Equal(t, 4, resp.Found)
	assert.Equal(t, 2, resp.Republished)
	assert.Equal(t, float64(2), testutil.ToFloat64(svcCtx.Metrics.RetryRepublished))
	assert.Equal(t, float64(1), testutil.ToFloat64(svcCtx.Metrics.RetryExhausted))
}

func TestRetryDeadLetters_StoreDown(t *testing.T) {
	svcCtx := newServiceContext()
	svcCtx.Retrier = stubRetrier{err: errors.New("connection refused")}

	_, err := NewRetryDeadLettersLogic(context.Background(), svcCtx).RetryDeadLetters()

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestMaintainPartitions(t *testing.T) {
	partitions := &stubPartitions{}
	svcCtx := newServiceContext()
	svcCtx.Partitions = partitions

	NewMaintainPartitionsLogic(context.Background(), svcCtx).MaintainPartitions()

	assert.Equal(t, 1, partitions.runs)
}

func TestGetPartitions(t *testing.T) {
	from := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	svcCtx := newServiceContext()
	svcCtx.Partitions = &stubPartitions{infos: []partition.Info{
		{Name: "click_events_2026_10", From: from, To: from.AddDate(0, 1, 0), SizeBytes: 8192, RowEstimate: 12},
		{Name: "click_events_default"},
	}}

	resp, err := NewGetPartitionsLogic(context.Background(), svcCtx).GetPartitions()

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "2026-10-01", resp.Partitions[0].From)
	assert.Equal(t, "2026-11-01", resp.Partitions[0].To)
	assert.Equal(t, int64(8192), resp.Partitions[0].SizeBytes)
	assert.Empty(t, resp.Partitions[1].From)
}

func TestGetPartitions_StoreDown(t *testing.T) {
	svcCtx := newServiceContext()
	svcCtx.Partitions = &stubPartitions{err: context.DeadlineExceeded}

	_, err := NewGetPartitionsLogic(context.Background(), svcCtx).GetPartitions()

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetDlqStats(t *testing.T) {
	svcCtx := newServiceContext()
	svcCtx.FailedModel = &model.MockFailedClickEventsModel{
		CountPendingFunc: func(_ context.Context, maxRetries int64) (int64, error) {
			assert.Equal(t, int64(5), maxRetries)
			return 7, nil
		},
		CountExhaustedFunc: func(context.Context, int64) (int64, error) {
			return 2, nil
		},
	}

	resp, err := NewGetDlqStatsLogic(context.Background(), svcCtx).GetDlqStats()

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.Pending)
	assert.Equal(t, int64(2), resp.Exhausted)
	assert.Equal(t, int64(5), resp.MaxRetries)
}

func TestGetDlqStats_StoreDown(t *testing.T) {
	svcCtx := newServiceContext()
	svcCtx.FailedModel = &model.MockFailedClickEventsModel{
		CountPendingFunc: func(context.Context, int64) (int64, error) {
			return 0, errors.New("too many connections")
		},
	}

	_, err := NewGetDlqStatsLogic(context.Background(), svcCtx).GetDlqStats()

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestGetAnalyticsLag(t *testing.T) {
	tests := []struct {
		name    string
		lag     stubLag
		want    int64
		delayed bool
		message string
	}{
		{name: "up to date", lag: stubLag{lag: 10, active: true}, want: 10, message: "Analytics data is up to date"},
		{name: "delayed", lag: stubLag{lag: 1500, active: true}, want: 1500, delayed: true, message: "Analytics data may be delayed (1500 events behind)"},
		{name: "group not active", lag: stubLag{}, want: 0, message: "Consumer group not active"},
		{name: "broker unreachable", lag: stubLag{err: errors.New("dial tcp: refused")}, want: -1, message: "Unable to check consumer lag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcCtx := newServiceContext()
			svcCtx.Lag = tt.lag

			resp, err := NewGetAnalyticsLagLogic(context.Background(), svcCtx).GetAnalyticsLag()

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Lag)
			assert.Equal(t, tt.delayed, resp.Delayed)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}
