package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	ServerPort     string   `env:"SERVER_PORT" envDefault:"3000"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	StorageDriver  string   `env:"STORAGE_DRIVER" envDefault:"file"`
	DataFile       string   `env:"DATA_FILE" envDefault:"tiers.json"`
	DBPath         string   `env:"DB_PATH" envDefault:"tiers.db"`
	RedisAddr      string   `env:"REDIS_ADDR"`
	RedisKey       string   `env:"REDIS_KEY" envDefault:"eagler:tiers"`
	CatalogPath    string   `env:"CATALOG_PATH"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// consumed by the command gateway
	APIURL           string  `env:"API_URL" envDefault:"http://localhost:3000"`
	APIRateLimit     float64 `env:"API_RATE_LIMIT" envDefault:"5"`
	LogChannelID     string  `env:"LOG_CHANNEL_ID"`
	ResultsChannelID string  `env:"RESULTS_CHANNEL_ID"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("storage_driver", cfg.StorageDriver).
		Str("data_file", cfg.DataFile).
		Str("db_path", cfg.DBPath).
		Str("catalog_path", cfg.CatalogPath).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("configuration loaded")

	return cfg, nil
}

// Parse reads the environment without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level is the parsed LOG_LEVEL. Empty means info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel))); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}

	switch c.StorageDriver {
	case DriverFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the %q storage driver", DriverFile)
		}
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the %q storage driver", DriverSQLite)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the %q storage driver", DriverRedis)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.APIRateLimit <= 0 {
		return fmt.Errorf("API_RATE_LIMIT must be positive, got %v", c.APIRateLimit)
	}
	return nil
}
