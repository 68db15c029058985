package config

import (
	"time"

	"github.com/zeromicro/go-zero/rest"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/metrics"
	"linkhub/internal/analytics/partition"
	"linkhub/internal/infra/database"
	"linkhub/internal/infra/eventbus"
)

type Config struct {
	rest.RestConf
	Database   database.Config
	Kafka      eventbus.KafkaConf
	Publisher  eventbus.PublisherConf
	Reader     eventbus.ReaderConf
	DeadLetter deadletter.Policy
	Retry      RetryConf
	Partition  PartitionConf
	Gauges     metrics.PollConf
	Lag        LagConf
	OpTimeout  time.Duration `json:",default=5s"`
}

// RetryConf schedules the dead-letter retry pass.
type RetryConf struct {
	Interval  time.Duration `json:",default=2m"`
	BatchSize int64         `json:",default=100"`
}

// PartitionConf schedules partition maintenance.
type PartitionConf struct {
	partition.Conf
	Schedule string `json:",default=5 0 * * *"`
}

// LagConf configures the consumer lag report.
type LagConf struct {
	Threshold int64         `json:",default=1000"`
	Timeout   time.Duration `json:",default=5s"`
}
