package svc

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/metrics"
	"linkhub/internal/analytics/model"
	"linkhub/internal/analytics/partition"
	"linkhub/internal/infra/database"
	"linkhub/internal/infra/eventbus"
	"linkhub/services/analytics-jobs/internal/config"
)

// DeadLetterRetrier runs one pass over due dead letters.
type DeadLetterRetrier interface {
	RunOnce(ctx context.Context) (deadletter.RetryResult, error)
}

// PartitionManager maintains and reports the monthly partitions.
type PartitionManager interface {
	Run(ctx context.Context)
	Stats(ctx context.Context) ([]partition.Info, error)
}

// LagReader reports the consumer group lag.
type LagReader interface {
	Lag(ctx context.Context) (lag int64, active bool, err error)
}

type ServiceContext struct {
	Config      config.Config
	Retrier     DeadLetterRetrier
	Partitions  PartitionManager
	FailedModel model.FailedClickEventsModel
	Lag         LagReader
	Metrics     *metrics.Metrics

	bus *eventbus.EventBus
}

func NewServiceContext(c config.Config) *ServiceContext {
	conn := database.MustOpenDB(c.Database)

	failed := model.NewFailedClickEventsModel(conn)
	partitions := model.NewPartitionsModel(conn, partition.ParentTable)

	bus := eventbus.NewEventBus(eventbus.NewWriter(c.Kafka, c.Publisher.Writer), c.Publisher)

	_, err := metrics.NewStoreGauges(prometheus.DefaultRegisterer, metrics.StoreSource{
		Clicks:     model.NewClickEventsModel(conn),
		Failed:     failed,
		Partitions: partitions,
		MaxRetries: c.DeadLetter.MaxRetries,
	}, c.Gauges)
	logx.Must(err)

	return &ServiceContext{
		Config:      c,
		Retrier:     deadletter.NewRetrier(failed, bus, c.DeadLetter, c.Retry.BatchSize, c.OpTimeout),
		Partitions:  partition.NewManager(partitions, c.Partition.Conf),
		FailedModel: failed,
		Lag:         eventbus.NewLagMonitor(eventbus.NewAdminClient(c.Kafka), c.Kafka.Topic, c.Reader.GroupID),
		Metrics:     metrics.New(prometheus.DefaultRegisterer),
		bus:         bus,
	}
}

// Close flushes and closes the republish writer.
func (s *ServiceContext) Close() {
	if s.bus == nil {
		return
	}
	if err := s.bus.Close(); err != nil {
		logx.Errorf("failed to close event bus: %v", err)
	}
}
