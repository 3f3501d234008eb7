package logger

import (
	"os"

	"eagler-tiers/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the service logger at the configured LOG_LEVEL, after .env has
// been applied.
func New(cfg *config.Config) zerolog.Logger {
	return SetLevel(cfg.Level())
}

// Bootstrap is only used while the configuration itself is loading.
func Bootstrap() zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return SetLevel(level)
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(level)

	return logger
}

var Module = fx.Provide(New)
