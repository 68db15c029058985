package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
	_ "go.uber.org/automaxprocs"

	"linkhub/services/analytics-jobs/internal/config"
	"linkhub/services/analytics-jobs/internal/handler"
	"linkhub/services/analytics-jobs/internal/scheduler"
	"linkhub/services/analytics-jobs/internal/svc"
)

var configFile = flag.String("f", "etc/jobs.yaml", "the config file")

func main() {
	flag.Parse()

	_ = godotenv.Load()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())

	server := rest.MustNewServer(c.RestConf)

	ctx := svc.NewServiceContext(c)
	defer ctx.Close()

	handler.RegisterHandlers(server, ctx)
	httpx.SetErrorHandlerCtx(handler.ErrorHandler)

	jobs, err := scheduler.New(ctx)
	logx.Must(err)

	group := service.NewServiceGroup()
	defer group.Stop()

	group.Add(server)
	group.Add(jobs)

	fmt.Printf("Starting analytics jobs at %s:%d...\n", c.Host, c.Port)
	group.Start()
}
