// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package config

import (
	"time"

	"github.com/zeromicro/go-zero/rest"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/producer"
	"linkhub/internal/infra/database"
	"linkhub/internal/infra/eventbus"
)

type Config struct {
	rest.RestConf
	Database   database.Config
	Kafka      eventbus.KafkaConf
	Publisher  eventbus.PublisherConf
	Producer   producer.Conf
	DeadLetter deadletter.Policy
	OpTimeout  time.Duration `json:",default=5s"`
}
