package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/tracking-viewer/internal/api"
	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/ports"
	"github.com/99minutos/tracking-viewer/internal/core/service"
	"github.com/99minutos/tracking-viewer/internal/infrastructure/config"
	redisdb "github.com/99minutos/tracking-viewer/internal/infrastructure/db/redis"
	"github.com/99minutos/tracking-viewer/internal/infrastructure/mapview"
	"github.com/99minutos/tracking-viewer/internal/infrastructure/queue"
	"github.com/99minutos/tracking-viewer/internal/infrastructure/reader"
	"github.com/99minutos/tracking-viewer/pkg/logger"
)

const (
	serviceName     = "tracking-viewer"
	backendTokenTTL = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// @title                       Tracking Viewer API
// @version                     1.0
// @description                 Live shipment tracking: reconciled position, route overlays and map composition.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("tracking viewer exited")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: serviceName,
	})

	surface := mapview.NewSurface(mapview.Options{
		BaseLayer: cfg.Map.BaseLayer,
		Center:    domain.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng},
		Zoom:      cfg.Map.Zoom,
	})
	log.Info().Str("surface_id", surface.ID()).Str("base_layer", cfg.Map.BaseLayer).Msg("map surface ready")

	deps := api.Deps{
		Ctx:       ctx,
		Map:       surface,
		JWTSecret: cfg.JWTSecret,
		Log:       logger.For("http"),
	}

	// --- Live marker feed (optional) ---
	var sink ports.MarkerSink
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		feed := redisdb.NewMarkerFeed(client)
		dispatcher := queue.NewDispatcher(cfg.Feed.Workers, feed, logger.For("feed"))
		feedCtx, cancelFeed := context.WithCancel(ctx)
		dispatcher.Start(feedCtx)
		defer func() {
			cancelFeed()
			dispatcher.Wait()
		}()

		sink = dispatcher
		deps.Feed, deps.Redis = feed, feed
		log.Info().Str("addr", cfg.Redis.Addr).Int("workers", cfg.Feed.Workers).Msg("live marker feed enabled")
	} else {
		log.Info().Msg("live marker feed disabled, REDIS_ADDR not set")
	}

	// --- Core ---
	backend := reader.New(reader.Config{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		MaxErrorBody: cfg.Backend.MaxErrorBody,
		Tokens:       reader.NewTokenSource(cfg.Backend.JWTSecret, serviceName, backendTokenTTL),
	}, nil, logger.For("reader"))
	presenter := service.NewMarkerPresenter(surface, sink, logger.For("presenter"))
	session := service.NewPollingSession(backend, presenter, service.SessionConfig{Interval: cfg.Polling.Interval}, logger.For("session"))
	defer session.Stop()
	deps.Session = session

	if cfg.Polling.Subject != "" {
		if err := session.Start(ctx, cfg.Polling.Subject); err != nil {
			return err
		}
	}

	// --- HTTP ---
	e := api.NewRouter(deps)
	// Request contexts end with the process so that live streams let go on shutdown.
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("backend", cfg.Backend.BaseURL).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("tracking viewer stopped")
	return nil
}
