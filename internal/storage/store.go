package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eagler-tiers/internal/config"
	"eagler-tiers/internal/domain"

	"github.com/rs/zerolog"
)

// ErrSnapshotNotFound is returned by Load before anything was ever saved.
var ErrSnapshotNotFound = errors.New("tier snapshot not found")

// Store persists the whole registry document as a single snapshot. Save
// replaces the previous snapshot atomically: a concurrent Load observes either
// the old or the new document, never a mix.
type Store interface {
	Load(ctx context.Context) (domain.Tiers, error)
	Save(ctx context.Context, tiers domain.Tiers) error
	Close() error
}

// New opens the configured driver. Snapshots are written with game modes and
// tiers in catalog order.
func New(cfg *config.Config, catalog domain.Enumeration, logger zerolog.Logger) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverFile:
		return NewFileStore(cfg.DataFile, catalog, logger), nil
	case config.DriverSQLite:
		return NewSQLiteStore(cfg.DBPath, catalog, logger)
	case config.DriverRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisKey, catalog, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func encode(tiers domain.Tiers, order domain.Enumeration) ([]byte, error) {
	b, err := json.MarshalIndent(domain.Ordered{Tiers: tiers, Order: order}, "", "  ")
	if err != nil {
		return nil, &domain.StorageError{Op: "encode", Err: err}
	}
	return b, nil
}

func decode(raw []byte) (domain.Tiers, error) {
	var tiers domain.Tiers
	if err := json.Unmarshal(raw, &tiers); err != nil {
		return nil, &domain.StorageError{Op: "decode", Err: err}
	}
	if tiers == nil {
		return nil, &domain.StorageError{Op: "decode", Err: errors.New("snapshot is not an object")}
	}
	return tiers, nil
}
