package lambda

import (
	"context"

	"aid-portal/internal/ports"

	"github.com/aws/aws-lambda-go/events"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/labstack/echo/v4"
)

type LambdaHandler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// NewLambdaHandler serves API Gateway HTTP API events through the echo router.
func NewLambdaHandler(e *echo.Echo, logger ports.Logger) LambdaHandler {
	adapter := echoadapter.NewV2(e)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp, err := adapter.ProxyWithContext(ctx, req)
		if err != nil {
			logger.Error(ctx, "lambda proxy failed", "route_key", req.RouteKey, "error", err)
		}
		return resp, err
	}
}
