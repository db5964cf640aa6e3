package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Middleware struct {
	Auth          echo.MiddlewareFunc
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
}

func newEcho(m Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	for _, mw := range []echo.MiddlewareFunc{m.XRay, m.RequestLogger} {
		if mw != nil {
			e.Use(mw)
		}
	}
	return e
}

// NewMainRouter mounts the portal API. Health and metrics stay outside the
// auth middleware so probes do not need credentials.
func NewMainRouter(apps *ApplicationsHandler, reviews *ReviewsHandler, metrics stdhttp.Handler, m Middleware) *echo.Echo {
	e := newEcho(m)
	e.GET("/healthz", Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	api := e.Group("")
	if m.Auth != nil {
		api.Use(m.Auth)
	}
	api.POST("/applications", apps.Submit)
	api.GET("/applications/:id", apps.Get)
	api.POST("/applications/:id/actions", apps.Act)
	api.GET("/reviews", reviews.List)
	return e
}
