package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/service"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/producer"
	"linkhub/internal/infra/database"
	"linkhub/internal/infra/eventbus"
	"linkhub/services/click-loadgen/internal/generator"
)

type Config struct {
	service.ServiceConf
	Database   database.Config
	Kafka      eventbus.KafkaConf
	Publisher  eventbus.PublisherConf
	Producer   producer.Conf
	DeadLetter deadletter.Policy
	Load       generator.Conf
	OpTimeout  time.Duration `json:",default=5s"`
}
