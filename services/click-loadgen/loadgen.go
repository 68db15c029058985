package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/proc"
	_ "go.uber.org/automaxprocs"

	"linkhub/internal/analytics/deadletter"
	"linkhub/internal/analytics/metrics"
	"linkhub/internal/analytics/model"
	"linkhub/internal/analytics/producer"
	"linkhub/internal/infra/database"
	"linkhub/internal/infra/eventbus"
	"linkhub/services/click-loadgen/internal/config"
	"linkhub/services/click-loadgen/internal/generator"
)

var (
	configFile = flag.String("f", "etc/loadgen.yaml", "the config file")
	total      = flag.Int("n", 0, "number of clicks, overrides Load.Total")
	ratePerSec = flag.Float64("rate", 0, "clicks per second, overrides Load.Rate")
)

func main() {
	flag.Parse()

	_ = godotenv.Load()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())
	c.MustSetUp()

	if *total > 0 {
		c.Load.Total = *total
	}
	if *ratePerSec > 0 {
		c.Load.Rate = *ratePerSec
	}

	conn := database.MustOpenDB(c.Database)
	bus := eventbus.NewEventBus(eventbus.NewWriter(c.Kafka, c.Publisher.Writer), c.Publisher)
	dlq := deadletter.NewWriter(model.NewFailedClickEventsModel(conn), nil, c.DeadLetter, c.OpTimeout)
	p := producer.New(bus, dlq, c.Producer, metrics.New(prometheus.DefaultRegisterer))

	ctx, cancel := context.WithCancel(context.Background())
	proc.AddShutdownListener(cancel)

	stats, err := generator.New(p, c.Load).Run(ctx)
	if err != nil {
		logx.Errorw("load run interrupted", logx.Field("error", err.Error()))
	}

	p.Close()
	if err := bus.Close(); err != nil {
		logx.Errorf("failed to close event bus: %v", err)
	}

	fmt.Printf("sent %d clicks (%d duplicates) in %s, %.0f/s, breaker %s\n",
		stats.Sent, stats.Duplicates, stats.Elapsed, float64(stats.Sent)/stats.Elapsed.Seconds(), bus.BreakerState())
}
