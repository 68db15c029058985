package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/service"
	_ "go.uber.org/automaxprocs"

	"linkhub/internal/infra/eventbus"
	"linkhub/services/analytics-consumer/internal/config"
	"linkhub/services/analytics-consumer/internal/mqs"
	"linkhub/services/analytics-consumer/internal/svc"
)

var configFile = flag.String("f", "etc/consumer.yaml", "the config file")

func main() {
	flag.Parse()

	_ = godotenv.Load()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())

	// Setup service infrastructure (logging, metrics, devserver, etc.)
	c.MustSetUp()

	svcCtx := svc.NewServiceContext(c)
	defer svcCtx.Close()

	// Clicks of the current month need a partition before the first insert.
	logx.Must(svcCtx.Partitions.EnsureCurrent(context.Background()))

	go serveHealth(c.HealthCheckPort)

	readers := eventbus.NewReaders(c.Kafka, c.Reader, c.Batch.Workers)
	consumer := eventbus.NewBatchConsumer(readers, mqs.NewClickEventConsumer(svcCtx), c.Batch, svcCtx.Metrics)

	group := service.NewServiceGroup()
	defer group.Stop()

	group.Add(consumer)

	fmt.Printf("Starting analytics consumer, listening on topic %s with %d workers...\n", c.Kafka.Topic, len(readers))
	group.Start()
}

func serveHealth(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logx.Infof("Health check server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Errorf("Health server error: %v", err)
	}
}
