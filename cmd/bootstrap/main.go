package main

import (
	"context"
	"os"

	adapterlogger "aid-portal/internal/adapters/logger"
	"aid-portal/internal/platform/server"

	"github.com/aws/aws-xray-sdk-go/xray"
)

func main() {
	ctx := context.Background()
	cfg, err := server.LoadConfig()
	if err != nil {
		adapterlogger.New("aid-portal", adapterlogger.ParseLevel("info")).Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.New("aid-portal", adapterlogger.ParseLevel(cfg.LogLevel))
	xray.Configure(xray.Config{LogLevel: "error"})

	e, err := server.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to build server", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "starting http server", "port", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
