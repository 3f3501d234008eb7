package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestParseDefaults(t *testing.T) {
	unsetEnv(t, "STORAGE_DRIVER", "SERVER_PORT", "DATA_FILE", "CORS_ALLOWED_ORIGINS", "API_RATE_LIMIT", "LOG_LEVEL")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, DriverFile, cfg.StorageDriver)
	assert.Equal(t, "tiers.json", cfg.DataFile)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 5.0, cfg.APIRateLimit)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestParseOverrides(t *testing.T) {
	unsetEnv(t, "API_RATE_LIMIT")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/var/lib/tiers/tiers.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/var/lib/tiers/tiers.db", cfg.DBPath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{StorageDriver: "mongo", APIRateLimit: 1}).Validate())
	assert.Error(t, (&Config{StorageDriver: DriverRedis, APIRateLimit: 1}).Validate())
	assert.Error(t, (&Config{StorageDriver: DriverFile, DataFile: "t.json"}).Validate())
	assert.NoError(t, (&Config{StorageDriver: DriverRedis, RedisAddr: "localhost:6379", APIRateLimit: 1}).Validate())
	assert.Error(t, (&Config{StorageDriver: DriverFile, DataFile: "t.json", APIRateLimit: 1, LogLevel: "loud"}).Validate())
}

func TestLoadAppliesDotEnvLogLevel(t *testing.T) {
	unsetEnv(t, "LOG_LEVEL", "STORAGE_DRIVER", "API_RATE_LIMIT")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=warn\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, zerolog.WarnLevel, cfg.Level())
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"vanilla-pvp", "mace-pvp", "axe-pvp", "sword-pvp", "smp", "diamond-smp", "uhc", "pot-pvp", "neth-op"}, c.GameModes)
	assert.Equal(t, []string{"HT1", "LT1", "HT2", "LT2", "HT3", "LT3", "HT4", "LT4", "HT5", "LT5"}, c.Tiers)

	assert.True(t, c.HasGameMode("smp"))
	assert.False(t, c.HasGameMode("SMP"))

	tier, ok := c.CanonicalTier(" lt4 ")
	assert.True(t, ok)
	assert.Equal(t, "LT4", tier)
	_, ok = c.CanonicalTier("HT6")
	assert.False(t, ok)

	for _, gm := range c.GameModes {
		assert.Len(t, c.GameModeRoles(gm), 10, gm)
	}
	assert.Equal(t, "1443102958911881256", c.TierRole("vanilla-pvp", "HT3"))
	assert.True(t, c.IsStaffRole("1348444272302755931"))
	assert.False(t, c.IsStaffRole("1"))
}

func TestParseCatalogRejects(t *testing.T) {
	tests := map[string]string{
		"no gamemodes":       "tiers: [HT1]",
		"no tiers":           "gamemodes: [smp]",
		"duplicate gamemode": "gamemodes: [smp, smp]\ntiers: [HT1]",
		"lower case tier":    "gamemodes: [smp]\ntiers: [ht1]",
		"duplicate tier":     "gamemodes: [smp]\ntiers: [HT1, HT1]",
		"unknown role mode":  "gamemodes: [smp]\ntiers: [HT1]\nroles:\n  uhc:\n    HT1: \"1\"",
		"unknown role tier":  "gamemodes: [smp]\ntiers: [HT1]\nroles:\n  smp:\n    LT9: \"1\"",
		"not yaml":           "gamemodes: [smp",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gamemodes: [bedwars]\ntiers: [S, A, B]\n"), 0o644))

	c, err := LoadCatalog(&Config{CatalogPath: path}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"bedwars"}, c.GameModeList())
	assert.Equal(t, []string{"S", "A", "B"}, c.TierList())
	assert.Empty(t, c.GameModeRoles("bedwars"))

	_, err = LoadCatalog(&Config{CatalogPath: filepath.Join(t.TempDir(), "missing.yaml")}, zerolog.Nop())
	assert.Error(t, err)
}
