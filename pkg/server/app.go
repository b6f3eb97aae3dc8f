package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TrendPulse/internal/handler/api"
	"TrendPulse/internal/usecase"
	"TrendPulse/pkg/cache"
	pkgch "TrendPulse/pkg/clickhouse"
	"TrendPulse/pkg/config"
	xhttp "TrendPulse/pkg/http"
	pkgkafka "TrendPulse/pkg/kafka"
	applogger "TrendPulse/pkg/logger"
)

// App encapsulates the application lifecycle: the collection loop, the
// HTTP API and graceful shutdown of the infrastructure clients.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	collector  *usecase.TrendCollector
	handler    *api.ReportsHandler
	hub        *api.AlertHub
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	cacheSvc   cache.Service
	httpServer *xhttp.Server
}

// New creates an App from its wired dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.TrendCollector,
	handler *api.ReportsHandler,
	hub *api.AlertHub,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	cacheSvc cache.Service,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		collector: collector,
		handler:   handler,
		hub:       hub,
		chClient:  chClient,
		producer:  producer,
		cacheSvc:  cacheSvc,
	}
}

// Run starts the collector and HTTP server, then blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	go func() {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Error("collector error", applogger.Error(err))
		}
	}()
	a.log.Info("collector started", applogger.Strings("terms", a.cfg.Trends.Terms))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops all services in dependency order.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.collector.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.hub.Close(); err != nil {
		a.log.Warn("alert hub close error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
