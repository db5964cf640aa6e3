package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// XRayMiddleware opens one segment per request and annotates it with the
// matched route so traces can be grouped by endpoint.
func XRayMiddleware(segmentName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			ctx, seg := xray.BeginSegment(c.Request().Context(), segmentName)
			defer func() { seg.Close(err) }()
			c.SetRequest(c.Request().WithContext(ctx))
			err = next(c)
			_ = seg.AddAnnotation("route", c.Path())
			return err
		}
	}
}
