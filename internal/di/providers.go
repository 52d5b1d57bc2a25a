package di

import (
	drepo "StreamPulse/internal/domain/repository"
	"StreamPulse/internal/generator"
	"StreamPulse/internal/handler/api"
	"StreamPulse/internal/handler/ws"
	"StreamPulse/internal/hub"
	"StreamPulse/internal/stream"
	"StreamPulse/pkg/config"
	applogger "StreamPulse/pkg/logger"
	"StreamPulse/pkg/metrics"
	"StreamPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideConnectionRegistry creates the live-session registry.
func ProvideConnectionRegistry() *hub.Registry {
	return hub.NewRegistry()
}

// ProvideSourceRegistry creates the generator registry.
func ProvideSourceRegistry() *generator.Registry {
	return generator.NewRegistry()
}

// ProvideCounter creates the shared delivered-data-point counter.
func ProvideCounter() *stream.Counter {
	return stream.NewCounter()
}

// ProvideBroadcaster creates the server-stats broadcaster.
func ProvideBroadcaster(
	registry *hub.Registry,
	sources *generator.Registry,
	m drepo.Metrics,
	counter *stream.Counter,
	cfg *config.Config,
	logger *applogger.Logger,
) *stream.Broadcaster {
	return stream.NewBroadcaster(registry, sources, m, counter, cfg.Stream.StatsInterval, logger)
}

// ProvideStreamHandler creates the WebSocket protocol handler.
func ProvideStreamHandler(
	cfg *config.Config,
	registry *hub.Registry,
	sources *generator.Registry,
	broadcaster *stream.Broadcaster,
	m drepo.Metrics,
	counter *stream.Counter,
	logger *applogger.Logger,
) *ws.Handler {
	return ws.NewHandler(cfg, registry, sources, broadcaster, m, counter, logger)
}

// ProvideStatusHandler creates the read-only status API handler.
func ProvideStatusHandler(
	logger *applogger.Logger,
	sources *generator.Registry,
	broadcaster *stream.Broadcaster,
) *api.StatusEchoHandler {
	return api.NewStatusEchoHandler(logger, sources, broadcaster)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	registry *hub.Registry,
	broadcaster *stream.Broadcaster,
	wsHandler *ws.Handler,
	apiHandler *api.StatusEchoHandler,
) *server.App {
	return server.New(cfg, logger, registry, broadcaster, wsHandler, apiHandler)
}
