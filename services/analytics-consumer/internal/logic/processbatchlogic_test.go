package logic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkhub/internal/analytics/enrichment"
	"linkhub/internal/analytics/metrics"
	"linkhub/internal/analytics/model"
	"linkhub/internal/infra/eventbus"
	"linkhub/internal/shared/events"
	"linkhub/services/analytics-consumer/internal/config"
	"linkhub/services/analytics-consumer/internal/svc"
)

type deadLetterCall struct {
	EventID    uuid.UUID
	Reason     string
	RetryCount int
}

type recordingDeadLetter struct {
	mu    sync.Mutex
	calls []deadLetterCall
	err   error
}

func (r *recordingDeadLetter) DeadLetter(_ context.Context, ev events.ClickEvent, reason string, retryCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, deadLetterCall{EventID: ev.EventID, Reason: reason, RetryCount: retryCount})
	return r.err
}

type failingEnricher struct {
	failFor uuid.UUID
	next    svc.ClickEnricher
}

func (f failingEnricher) Enrich(ev events.ClickEvent) (events.EnrichedClickEvent, error) {
	if ev.EventID == f.failFor {
		return events.EnrichedClickEvent{}, errors.New("lookup exploded")
	}
	return f.next.Enrich(ev)
}

func newTestServiceContext(clicks model.ClickEventsModel, dlq *recordingDeadLetter) *svc.ServiceContext {
	return &svc.ServiceContext{
		Config:     config.Config{OpTimeout: time.Second},
		ClickModel: clicks,
		Enricher:   enrichment.NewEnricher(nil, enrichment.NewDeviceDetector()),
		DeadLetter: dlq,
		Referers:   enrichment.NewRefererClassifier(),
		Metrics:    metrics.New(prometheus.NewRegistry()),
	}
}

func delivery(ip, referrer string) eventbus.Delivery {
	return eventbus.Delivery{
		Event: events.NewClickEvent(1, "abc123", ip,
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			referrer),
	}
}

func assertAccounted(t *testing.T, result BatchResult, size int) {
	t.Helper()
	assert.Len(t, result.Items, size)
	assert.Equal(t, size, result.Inserted+result.Duplicates+result.DeadLettered)
}

func TestProcessBatch_AllInserted(t *testing.T) {
	var stored []*model.ClickEvents
	clicks := &model.MockClickEventsModel{
		BulkInsertIgnoreFunc: func(_ context.Context, rows []*model.ClickEvents) ([]bool, error) {
			stored = rows
			return []bool{true, true}, nil
		},
	}
	svcCtx := newTestServiceContext(clicks, &recordingDeadLetter{})
	batch := []eventbus.Delivery{delivery("8.8.8.8", "https://www.google.com/search?q=x"), delivery("", "")}

	result := NewProcessBatchLogic(context.Background(), svcCtx).ProcessBatch(batch)

	assertAccounted(t, result, 2)
	assert.Equal(t, 2, result.Inserted)
	require.Len(t, stored, 2)
	assert.Equal(t, batch[0].Event.EventID.String(), stored[0].EventId)
	assert.Equal(t, "Mobile", stored[0].DeviceType)
	assert.Equal(t, "8.8.8.8", stored[0].IpAddress.String)
	assert.True(t, stored[0].Referrer.Valid)
	assert.False(t, stored[1].IpAddress.Valid)
	assert.False(t, stored[1].Referrer.Valid)
	assert.Equal(t, float64(1), testutil.ToFloat64(svcCtx.Metrics.TrafficSource.WithLabelValues("Search")))
	assert.Equal(t, float64(1), testutil.ToFloat64(svcCtx.Metrics.TrafficSource.WithLabelValues("Direct")))
}

func TestProcessBatch_DuplicatesAreNotErrors(t *testing.T) {
	clicks := &model.MockClickEventsModel{
		BulkInsertIgnoreFunc: func(_ context.Context, rows []*model.ClickEvents) ([]bool, error) {
			return []bool{true, false}, nil
		},
	}
	dlq := &recordingDeadLetter{}
	d := delivery("1.2.3.4", "")
	batch := []eventbus.Delivery{d, d}

	result := NewProcessBatchLogic(context.Background(), newTestServiceContext(clicks, dlq)).ProcessBatch(batch)

	assertAccounted(t, result, 2)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, OutcomeDuplicate, result.Items[1].Outcome)
	assert.Empty(t, dlq.calls)
}

func TestProcessBatch_EnrichmentFailureIsDeadLettered(t *testing.T) {
	var stored []*model.ClickEvents
	clicks := &model.MockClickEventsModel{
		BulkInsertIgnoreFunc: func(_ context.Context, rows []*model.ClickEvents) ([]bool, error) {
			stored = rows
			return []bool{true}, nil
		},
	}
	dlq := &recordingDeadLetter{}
	svcCtx := newTestServiceContext(clicks, dlq)
	bad := delivery("1.2.3.4", "")
	bad.RetryCount = 2
	svcCtx.Enricher = failingEnricher{failFor: bad.Event.EventID, next: svcCtx.Enricher}
	batch := []eventbus.Delivery{bad, delivery("1.2.3.4", "")}

	result := NewProcessBatchLogic(context.Background(), svcCtx).ProcessBatch(batch)

	assertAccounted(t, result, 2)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.DeadLettered)
	require.Len(t, stored, 1)
	assert.Equal(t, batch[1].Event.EventID.String(), stored[0].EventId)
	require.Len(t, dlq.calls, 1)
	assert.Equal(t, bad.Event.EventID, dlq.calls[0].EventID)
	assert.Equal(t, 2, dlq.calls[0].RetryCount)
	assert.Contains(t, dlq.calls[0].Reason, ReasonEnrichment)
}

func TestProcessBatch_BulkFailureFallsBackToRows(t *testing.T) {
	batch := []eventbus.Delivery{delivery("1.2.3.4", ""), delivery("1.2.3.4", ""), delivery("1.2.3.4", "")}
	clicks := &model.MockClickEventsModel{
		BulkInsertIgnoreFunc: func(context.Context, []*model.ClickEvents) ([]bool, error) {
			return nil, errors.New("connection reset")
		},
		InsertIgnoreFunc: func(_ context.Context, row *model.ClickEvents) (bool, error) {
			switch row.EventId {
			case batch[0].Event.EventID.String():
				return true, nil
			case batch[1].Event.EventID.String():
				return false, nil
			default:
				return false, errors.New("check constraint violated")
			}
		},
	}
	dlq := &recordingDeadLetter{}

	result := NewProcessBatchLogic(context.Background(), newTestServiceContext(clicks, dlq)).ProcessBatch(batch)

	assertAccounted(t, result, 3)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.DeadLettered)
	require.Len(t, dlq.calls, 1)
	assert.Equal(t, batch[2].Event.EventID, dlq.calls[0].EventID)
	assert.Contains(t, dlq.calls[0].Reason, ReasonInsert)
}

func TestProcessBatch_DeadLetterWriteFailureStillAccounted(t *testing.T) {
	clicks := &model.MockClickEventsModel{
		BulkInsertIgnoreFunc: func(context.Context, []*model.ClickEvents) ([]bool, error) {
			return nil, errors.New("db down")
		},
		InsertIgnoreFunc: func(context.Context, *model.ClickEvents) (bool, error) {
			return false, errors.New("db down")
		},
	}
	dlq := &recordingDeadLetter{err: errors.New("kafka down")}
	batch := []eventbus.Delivery{delivery("1.2.3.4", ""), delivery("1.2.3.4", "")}

	result := NewProcessBatchLogic(context.Background(), newTestServiceContext(clicks, dlq)).ProcessBatch(batch)

	assertAccounted(t, result, 2)
	assert.Equal(t, 2, result.DeadLettered)
	assert.Len(t, dlq.calls, 2)
}

func TestToClickEventRow(t *testing.T) {
	country, city := "United States", "Mountain View"
	lat, lon := 37.4, -122.1
	ev := events.EnrichedClickEvent{
		ClickEvent: events.NewClickEvent(9, "xyz789", "not-an-ip", "curl/8.0", "https://t.co/abc"),
		DeviceType: "Desktop",
		Browser:    "curl",
		OS:         events.Unknown,
		Country:    &country,
		City:       &city,
		Latitude:   &lat,
		Longitude:  &lon,
	}

	row := toClickEventRow(ev)

	assert.False(t, row.IpAddress.Valid, "unparsable ip must be stored as NULL")
	assert.Equal(t, int64(9), row.UrlId)
	assert.Equal(t, "xyz789", row.ShortCode)
	assert.Equal(t, "https://t.co/abc", row.Referrer.String)
	assert.Equal(t, "United States", row.Country.String)
	assert.Equal(t, "Mountain View", row.City.String)
	assert.InDelta(t, 37.4, row.Latitude.Float64, 1e-9)
	assert.InDelta(t, -122.1, row.Longitude.Float64, 1e-9)
	assert.Equal(t, events.Unknown, row.Os)
}

func TestToClickEventRow_NormalizesIPv6(t *testing.T) {
	ev := events.EnrichedClickEvent{ClickEvent: events.NewClickEvent(1, "abc123", "2001:DB8::1", "", "")}

	row := toClickEventRow(ev)

	assert.Equal(t, "2001:db8::1", row.IpAddress.String)
	assert.False(t, row.Latitude.Valid)
}
