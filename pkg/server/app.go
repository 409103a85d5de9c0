package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FishMoney/internal/domain/repository"
	"FishMoney/pkg/config"
	xhttp "FishMoney/pkg/http"
	applogger "FishMoney/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	audit      repository.AuditLog
	recent     repository.RecentTracker
	logger     *applogger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	audit repository.AuditLog,
	recent repository.RecentTracker,
	logger *applogger.Logger,
) *App {
	return &App{
		cfg:     cfg,
		handler: handler,
		audit:   audit,
		recent:  recent,
		logger:  logger,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(a.cfg.Server.CORSOrigins),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("backend", a.cfg.Backend.Type),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops the HTTP server and closes backends.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.logger.Warn("audit log close error", applogger.Error(err))
		}
	}
	if a.recent != nil {
		if err := a.recent.Close(); err != nil {
			a.logger.Warn("recent tracker close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
