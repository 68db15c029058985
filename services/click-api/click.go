// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
	_ "go.uber.org/automaxprocs"

	"linkhub/services/click-api/internal/config"
	"linkhub/services/click-api/internal/handler"
	"linkhub/services/click-api/internal/svc"
)

var configFile = flag.String("f", "etc/click.yaml", "the config file")

func main() {
	flag.Parse()

	_ = godotenv.Load()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(c)
	defer ctx.Close()

	handler.RegisterHandlers(server, ctx)
	httpx.SetErrorHandlerCtx(handler.ErrorHandler)

	fmt.Printf("Starting click api at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
