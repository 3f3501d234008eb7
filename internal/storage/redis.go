package storage

import (
	"context"
	"errors"
	"fmt"

	"eagler-tiers/internal/constants"
	"eagler-tiers/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps the snapshot under one key. SET replaces it atomically.
type RedisStore struct {
	client *redis.Client
	key    string
	order  domain.Enumeration
	logger zerolog.Logger
}

func NewRedisStore(addr, key string, order domain.Enumeration, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: constants.RedisDialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.StorageTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error().Err(err).Str("addr", addr).Msg("failed to reach redis")
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	logger.Info().Str("addr", addr).Str("key", key).Msg("using redis snapshot store")
	return &RedisStore{client: client, key: key, order: order, logger: logger}, nil
}

func (s *RedisStore) Load(ctx context.Context) (domain.Tiers, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Err: err}
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, tiers domain.Tiers) error {
	raw, err := encode(tiers, s.order)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return &domain.StorageError{Op: "write", Err: err}
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
