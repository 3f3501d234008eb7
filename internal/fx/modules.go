package fx

import (
	"eagler-tiers/internal/config"
	"eagler-tiers/internal/domain"
	"eagler-tiers/internal/logger"
	"eagler-tiers/internal/metrics"
	"eagler-tiers/internal/registry"
	"eagler-tiers/internal/server"
	"eagler-tiers/internal/storage"

	"go.uber.org/fx"
)

// ProvideConfig loads .env and the environment with a bootstrap logger. The
// service logger is built from the result.
func ProvideConfig() (*config.Config, error) {
	return config.Load(logger.Bootstrap())
}

func ProvideEnumeration(catalog *config.Catalog) domain.Enumeration {
	return catalog
}

var Module = fx.Options(
	fx.Provide(ProvideConfig),
	fx.Provide(logger.New),
	fx.Provide(config.LoadCatalog),
	fx.Provide(ProvideEnumeration),
	fx.Provide(metrics.NewRegistry),
	// storage
	fx.Provide(storage.New),
	// svc
	fx.Provide(registry.NewService),
	// server
	fx.Provide(server.NewTierServer),
	fx.Provide(server.NewRouter),
)
