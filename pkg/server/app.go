package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StreamPulse/internal/handler/api"
	"StreamPulse/internal/handler/ws"
	"StreamPulse/internal/hub"
	"StreamPulse/internal/stream"
	"StreamPulse/pkg/config"
	xhttp "StreamPulse/pkg/http"
	applogger "StreamPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	registry    *hub.Registry
	broadcaster *stream.Broadcaster
	wsHandler   *ws.Handler
	apiHandler  *api.StatusEchoHandler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	registry *hub.Registry,
	broadcaster *stream.Broadcaster,
	wsHandler *ws.Handler,
	apiHandler *api.StatusEchoHandler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		broadcaster: broadcaster,
		wsHandler:   wsHandler,
		apiHandler:  apiHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(xhttp.Handlers{a.wsHandler, a.apiHandler},
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	// Stats broadcaster lives for the whole process, independent of any
	// individual client.
	go a.broadcaster.Run(ctx)
	a.logger.Info("stats broadcaster started",
		applogger.Duration("interval", a.cfg.Stream.StatsInterval))

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("server start failed", applogger.Error(err))
		return err
	}
	a.logger.Info("streaming server listening",
		applogger.String("host", a.cfg.Server.Host),
		applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx, cancel)
}

// shutdown gracefully stops all services: the broadcaster first, then
// every live session (which cancels its dispatcher), then the server.
func (a *App) shutdown(ctx context.Context, cancel context.CancelFunc) error {
	cancel()
	a.registry.CloseAll()

	shutdownCtx, cancelTimeout := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancelTimeout()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.logger.Info("shutdown complete")
	return nil
}
