package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"eagler-tiers/internal/constants"
	"eagler-tiers/internal/domain"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	selectSnapshot = `SELECT document FROM tier_snapshots WHERE id = 1`
	upsertSnapshot = `INSERT INTO tier_snapshots (id, document, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`
)

// SQLiteStore keeps the snapshot as the single row of tier_snapshots.
type SQLiteStore struct {
	db     *sql.DB
	order  domain.Enumeration
	logger zerolog.Logger
}

func NewSQLiteStore(path string, order domain.Enumeration, logger zerolog.Logger) (*SQLiteStore, error) {
	logger.Info().Str("path", path).Msg("connecting to database")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	if err := optimizeSQLite(db, logger); err != nil {
		logger.Error().Err(err).Msg("failed to optimize SQLite")
		_ = db.Close()
		return nil, fmt.Errorf("failed to optimize SQLite: %w", err)
	}
	if err := runMigrations(db, logger); err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Msg("database connection established and optimized")
	return &SQLiteStore{db: db, order: order, logger: logger}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (domain.Tiers, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, selectSnapshot).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug().Msg("no snapshot row yet")
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Err: err}
	}

	tiers, err := decode([]byte(raw))
	if err != nil {
		s.logger.Error().Err(err).Msg("snapshot row is corrupt")
		return nil, err
	}
	return tiers, nil
}

func (s *SQLiteStore) Save(ctx context.Context, tiers domain.Tiers) error {
	raw, err := encode(tiers, s.order)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertSnapshot, string(raw), time.Now().UTC()); err != nil {
		return &domain.StorageError{Op: "write", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func runMigrations(db *sql.DB, logger zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	logger.Info().Msg("migrations completed successfully")
	return nil
}

func optimizeSQLite(sqlDB *sql.DB, logger zerolog.Logger) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "FULL"},
		{"busy_timeout", "5000"},
		{"temp_store", "MEMORY"},
	}

	for _, pragma := range pragmas {
		query := fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)
		if _, err := sqlDB.Exec(query); err != nil {
			logger.Warn().
				Err(err).
				Str("pragma", pragma.name).
				Str("value", pragma.value).
				Msg("failed to set pragma")
			return fmt.Errorf("failed to set PRAGMA %s: %w", pragma.name, err)
		}
		logger.Debug().
			Str("pragma", pragma.name).
			Str("value", pragma.value).
			Msg("SQLite pragma set")
	}

	return nil
}
