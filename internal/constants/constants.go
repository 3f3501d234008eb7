package constants

import "time"

const (
	StorageTimeout     = 5 * time.Second
	RequestTimeout     = 10 * time.Second
	ExternalAPITimeout = 10 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	SnapshotFileMode = 0o644
	SnapshotDirMode  = 0o755

	// request bodies are a handful of short strings
	MaxRequestBodyBytes = 64 << 10
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	RedisDialTimeout = 5 * time.Second
	ClientBurst      = 5
)
