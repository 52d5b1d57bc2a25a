//go:build wireinject
// +build wireinject

package di

import (
	"StreamPulse/pkg/config"
	"StreamPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Core state
		ProvideConnectionRegistry,
		ProvideSourceRegistry,
		ProvideCounter,

		// Streaming tasks and handlers
		ProvideBroadcaster,
		ProvideStreamHandler,
		ProvideStatusHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
