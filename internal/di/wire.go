//go:build wireinject
// +build wireinject

package di

import (
	"FishMoney/pkg/config"
	"FishMoney/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideAuditLog,
		ProvideRecentTracker,
		ProvideBroadcastHub,
		ProvideAnalysisSource,

		// Use cases
		ProvideAnalyzer,

		// HTTP surface
		ProvideAnalysisHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
