package main

import (
	"context"
	"os"

	adapterlogger "aid-portal/internal/adapters/logger"
	platformlambda "aid-portal/internal/platform/lambda"
	"aid-portal/internal/platform/server"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-xray-sdk-go/xray"
)

func main() {
	ctx := context.Background()
	logger := adapterlogger.New("aid-portal-lambda", adapterlogger.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg, err := server.LoadConfig()
	if err != nil {
		logger.Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	xray.Configure(xray.Config{LogLevel: "error"})

	e, err := server.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to build server", "error", err)
		os.Exit(1)
	}
	lambda.Start(platformlambda.NewLambdaHandler(e, logger))
}
