package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zeromicro/go-zero/core/collection"
	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/analytics/model"
)

// Unavailable is reported by a polled gauge when the store cannot be read.
const Unavailable = -1

// PollConf configures the store-backed gauges.
type PollConf struct {
	CacheTTL     time.Duration `json:",default=15s"`
	QueryTimeout time.Duration `json:",default=2s"`
}

// StoreSource is what the polled gauges read.
type StoreSource struct {
	Clicks     model.ClickEventsModel
	Failed     model.FailedClickEventsModel
	Partitions model.PartitionsModel
	MaxRetries int64
}

// StoreGauges are gauges computed from catalog and count queries at scrape
// time. Values are cached for CacheTTL; a failed or slow query reports
// Unavailable instead of failing the scrape.
type StoreGauges struct {
	ClickEvents  prometheus.GaugeFunc
	DLQPending   prometheus.GaugeFunc
	DLQExhausted prometheus.GaugeFunc
	Partitions   prometheus.GaugeFunc

	cache   *collection.Cache
	timeout time.Duration
}

// NewStoreGauges registers the polled gauges with reg.
func NewStoreGauges(reg prometheus.Registerer, src StoreSource, c PollConf) (*StoreGauges, error) {
	cache, err := collection.NewCache(c.CacheTTL, collection.WithName("analytics-store-gauges"))
	if err != nil {
		return nil, err
	}

	g := &StoreGauges{cache: cache, timeout: c.QueryTimeout}
	f := promauto.With(reg)

	g.ClickEvents = f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "analytics_click_events_total",
		Help: "Approximate number of stored click events (-1 when unavailable)",
	}, g.poll("click_events", src.Clicks.ApproxCount))

	g.DLQPending = f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "analytics_dlq_pending",
		Help: "Dead letters still scheduled for retry (-1 when unavailable)",
	}, g.poll("dlq_pending", func(ctx context.Context) (int64, error) {
		return src.Failed.CountPending(ctx, src.MaxRetries)
	}))

	g.DLQExhausted = f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "analytics_dlq_exhausted",
		Help: "Dead letters that ran out of retries (-1 when unavailable)",
	}, g.poll("dlq_exhausted", func(ctx context.Context) (int64, error) {
		return src.Failed.CountExhausted(ctx, src.MaxRetries)
	}))

	g.Partitions = f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "analytics_partitions_count",
		Help: "Partitions attached to the event store (-1 when unavailable)",
	}, g.poll("partitions", src.Partitions.Count))

	return g, nil
}

func (g *StoreGauges) poll(key string, fetch func(ctx context.Context) (int64, error)) func() float64 {
	return func() float64 {
		v, err := g.cache.Take(key, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
			defer cancel()
			return fetch(ctx)
		})
		if err != nil {
			logx.Errorw("polled gauge unavailable",
				logx.Field("gauge", key),
				logx.Field("error", err.Error()),
			)
			return Unavailable
		}
		return float64(v.(int64))
	}
}
