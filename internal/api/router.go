package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/99minutos/tracking-viewer/internal/api/handler"
	"github.com/99minutos/tracking-viewer/internal/api/middleware"
	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/ports"

	_ "github.com/99minutos/tracking-viewer/docs"
)

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	// Ctx bounds sessions started over HTTP; it must outlive requests.
	Ctx     context.Context
	Session ports.TrackingSession
	Map     handler.MapView
	// Feed and Redis are nil when the live feed is disabled.
	Feed      handler.MarkerSubscriber
	Redis     handler.Pinger
	JWTSecret string
	Log       zerolog.Logger
	// Metrics receives the HTTP collectors; nil means the default registry,
	// which also holds the tracking metrics.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "tracking_viewer",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Redis, d.Session)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – is the live feed reachable?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Tracking ---
	tracking := handler.NewTrackingHandler(d.Ctx, d.Session, d.Map, d.Feed, d.Log)
	operator := middleware.RBAC(domain.RoleOperator)

	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret, domain.RoleOperator), middleware.RBAC(domain.RoleViewer, domain.RoleOperator))
	v1.GET("/tracking", tracking.Get)
	v1.GET("/tracking/map", tracking.Map)
	v1.GET("/tracking/stream", tracking.Stream)
	v1.PUT("/tracking/subject", tracking.Start, operator)
	v1.DELETE("/tracking/subject", tracking.Stop, operator)
	v1.PUT("/tracking/viewport", tracking.SetViewport)

	return e
}

// requestLogger logs one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
