package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"eagler-tiers/internal/constants"
	"eagler-tiers/internal/domain"

	"github.com/rs/zerolog"
)

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path   string
	order  domain.Enumeration
	logger zerolog.Logger
}

func NewFileStore(path string, order domain.Enumeration, logger zerolog.Logger) *FileStore {
	logger.Info().Str("path", path).Msg("using file snapshot store")
	return &FileStore{path: path, order: order, logger: logger}
}

func (s *FileStore) Load(ctx context.Context) (domain.Tiers, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug().Str("path", s.path).Msg("snapshot file does not exist yet")
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Err: err}
	}

	tiers, err := decode(raw)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("snapshot file is corrupt")
		return nil, err
	}
	return tiers, nil
}

func (s *FileStore) Save(ctx context.Context, tiers domain.Tiers) error {
	raw, err := encode(tiers, s.order)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, raw, constants.SnapshotFileMode); err != nil {
		return &domain.StorageError{Op: "write", Err: err}
	}
	s.logger.Debug().Str("path", s.path).Int("bytes", len(raw)).Msg("snapshot written")
	return nil
}

func (s *FileStore) Close() error { return nil }
