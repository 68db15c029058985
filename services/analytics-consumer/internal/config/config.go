package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/service"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/partition"
	"linkhub/internal/infra/database"
	"linkhub/internal/infra/eventbus"
)

type Config struct {
	service.ServiceConf
	Database        database.Config
	Kafka           eventbus.KafkaConf
	Reader          eventbus.ReaderConf
	Batch           eventbus.BatchConf
	DeadLetter      deadletter.Policy
	Partition       partition.Conf
	OpTimeout       time.Duration `json:",default=5s"`
	GeoIPPath       string        `json:",optional"`
	HealthCheckPort int           `json:",default=8081"`
}
