package svc

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeromicro/go-queue/kq"
	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/enrichment"
	"linkhub/internal/analytics/metrics"
	"linkhub/internal/analytics/model"
	"linkhub/internal/analytics/partition"
	"linkhub/internal/infra/database"
	"linkhub/internal/infra/eventbus"
	"linkhub/internal/shared/events"
	"linkhub/services/analytics-consumer/internal/config"
)

// ClickEnricher derives device and location attributes from a click.
type ClickEnricher interface {
	Enrich(ev events.ClickEvent) (events.EnrichedClickEvent, error)
}

// DeadLetterWriter routes an event to the dead-letter topic and table.
type DeadLetterWriter interface {
	DeadLetter(ctx context.Context, ev events.ClickEvent, reason string, retryCount int) error
}

type ServiceContext struct {
	Config     config.Config
	ClickModel model.ClickEventsModel
	Enricher   ClickEnricher
	DeadLetter DeadLetterWriter
	Referers   *enrichment.RefererClassifier
	Metrics    *metrics.Metrics
	Partitions *partition.Manager

	geo    *enrichment.GeoIPResolver
	pusher *kq.Pusher
}

func NewServiceContext(c config.Config) *ServiceContext {
	conn := database.MustOpenDB(c.Database)

	var geo *enrichment.GeoIPResolver
	if c.GeoIPPath != "" {
		resolver, err := enrichment.NewGeoIPResolver(c.GeoIPPath)
		if err != nil {
			logx.Infof("GeoIP database not available at %s, location fields stay empty: %v", c.GeoIPPath, err)
		} else {
			geo = resolver
		}
	}

	var geoResolver enrichment.GeoResolver
	if geo != nil {
		geoResolver = geo
	}
	enricher := enrichment.NewEnricher(geoResolver, enrichment.NewDeviceDetector())

	pusher := eventbus.NewDLQPusher(c.Kafka)

	return &ServiceContext{
		Config:     c,
		ClickModel: model.NewClickEventsModel(conn),
		Enricher:   enricher,
		DeadLetter: deadletter.NewWriter(model.NewFailedClickEventsModel(conn), pusher, c.DeadLetter, c.OpTimeout),
		Referers:   enrichment.NewRefererClassifier(),
		Metrics:    metrics.New(prometheus.DefaultRegisterer),
		Partitions: partition.NewManager(model.NewPartitionsModel(conn, partition.ParentTable), c.Partition),
		geo:        geo,
		pusher:     pusher,
	}
}

// Close releases the GeoIP database and the dead-letter pusher.
func (s *ServiceContext) Close() {
	if s.pusher != nil {
		if err := s.pusher.Close(); err != nil {
			logx.Errorf("failed to close dead-letter pusher: %v", err)
		}
	}
	if err := s.geo.Close(); err != nil {
		logx.Errorf("failed to close GeoIP database: %v", err)
	}
}
