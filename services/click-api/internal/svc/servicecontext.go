// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package svc

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/metrics"
	"linkhub/internal/analytics/model"
	"linkhub/internal/analytics/producer"
	"linkhub/internal/infra/database"
	"linkhub/internal/infra/eventbus"
	"linkhub/internal/shared/events"
	"linkhub/services/click-api/internal/config"
)

// ClickPublisher records a click without blocking the request.
type ClickPublisher interface {
	Publish(ctx context.Context, ev events.ClickEvent)
}

type ServiceContext struct {
	Config   config.Config
	Producer ClickPublisher

	producer *producer.Producer
	bus      *eventbus.EventBus
}

func NewServiceContext(c config.Config) *ServiceContext {
	conn := database.MustOpenDB(c.Database)

	bus := eventbus.NewEventBus(eventbus.NewWriter(c.Kafka, c.Publisher.Writer), c.Publisher)
	dlq := deadletter.NewWriter(model.NewFailedClickEventsModel(conn), nil, c.DeadLetter, c.OpTimeout)
	p := producer.New(bus, dlq, c.Producer, metrics.New(prometheus.DefaultRegisterer))

	return &ServiceContext{
		Config:   c,
		Producer: p,
		producer: p,
		bus:      bus,
	}
}

// Close drains in-flight clicks, then closes the broker writer.
func (s *ServiceContext) Close() {
	if s.producer != nil {
		s.producer.Close()
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			logx.Errorf("failed to close event bus: %v", err)
		}
	}
}
