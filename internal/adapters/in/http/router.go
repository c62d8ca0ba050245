package http

import (
	"context"
	"log/slog"
	"net/http"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/generated/servers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// CourierSessions upgrades courier connections for live offers.
type CourierSessions interface {
	ServeCourier(w http.ResponseWriter, r *http.Request, courierID kernel.UUID) error
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterDeps are the pieces NewRouter mounts.
type RouterDeps struct {
	Server *Server
	// Sessions is optional; without it the websocket route is not mounted.
	Sessions CourierSessions
	Health   HealthCheck
	Logger   *slog.Logger
}

// NewRouter builds the echo instance serving the API, the swagger UI, health,
// metrics and the courier websocket.
func NewRouter(deps RouterDeps) (*echo.Echo, error) {
	swagger, err := servers.GetSwagger()
	if err != nil {
		return nil, err
	}
	if err = registerSwaggerDoc(swagger); err != nil {
		return nil, err
	}
	validator, err := RequestValidator(swagger)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger.With("component", "HTTP")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.Recover())
	e.Use(Metrics())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.WarnContext(ctx.Request().Context(), "Request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.DebugContext(ctx.Request().Context(), "Request served", attrs...)
			return nil
		},
	}))
	e.Use(validator)

	e.GET("/health", func(ctx echo.Context) error {
		if deps.Health != nil {
			if err := deps.Health(ctx.Request().Context()); err != nil {
				return ctx.String(http.StatusServiceUnavailable, "Unhealthy")
			}
		}
		return ctx.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if deps.Sessions != nil {
		e.GET("/ws/couriers/:courierId", func(ctx echo.Context) error {
			id, err := kernel.UUIDFromString(ctx.Param("courierId"))
			if err != nil {
				return badRequest(ctx, "Invalid courier id")
			}
			if err = deps.Sessions.ServeCourier(ctx.Response(), ctx.Request(), id); err != nil {
				logger.WarnContext(ctx.Request().Context(), "Courier session ended", "courier_id", id.String(), "error", err)
			}
			return nil
		})
	}

	servers.RegisterHandlers(e, deps.Server)
	return e, nil
}
