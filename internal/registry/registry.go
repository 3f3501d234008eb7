package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eagler-tiers/internal/constants"
	"eagler-tiers/internal/domain"
	"eagler-tiers/internal/metrics"
	"eagler-tiers/internal/storage"

	"github.com/rs/zerolog"
)

// Service is the tier registry. Every storage access runs under one mutex so
// a load-modify-save cycle can never interleave with another one.
type Service struct {
	mu      sync.Mutex
	store   storage.Store
	catalog domain.Enumeration
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(store storage.Store, catalog domain.Enumeration, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		logger:  logger.With().Str("component", "registry").Logger(),
		now:     time.Now,
	}
}

// Tiers re-reads the snapshot so out-of-process edits are visible.
func (s *Service) Tiers(ctx context.Context) (domain.Tiers, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.StorageTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	tiers, err := s.load(ctx)
	observe(metrics.OpRead, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load tiers")
		return nil, err
	}
	return tiers, nil
}

// SetTier moves the player into the requested tier, dropping any tier they
// held in the same game mode.
func (s *Service) SetTier(ctx context.Context, req domain.SetTierRequest) error {
	cmd, err := req.Validate(s.catalog, s.now())
	if err != nil {
		observe(metrics.OpSetTier, err)
		s.logger.Debug().Err(err).Str("player", req.Player).Msg("rejected set tier request")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.StorageTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	tiers, err := s.load(ctx)
	if err != nil {
		observe(metrics.OpSetTier, err)
		s.logger.Error().Err(err).Msg("failed to load tiers")
		return err
	}

	buckets := tiers.EnsureGameMode(cmd.GameMode, s.catalog.TierList())
	previous, _ := buckets.TierOf(cmd.Entry.Name)
	if n := buckets.RemovePlayer(cmd.Entry.Name); n > 1 {
		// the move below repairs it, but the snapshot was inconsistent
		s.logger.Error().
			Err(domain.ErrConsistencyViolation).
			Str("player", cmd.Entry.Name).
			Str("gamemode", cmd.GameMode).
			Int("buckets", n).
			Msg("player held several tiers before set")
	}
	buckets[cmd.Tier] = append(buckets[cmd.Tier], cmd.Entry)

	if err := s.save(ctx, tiers); err != nil {
		observe(metrics.OpSetTier, err)
		s.logger.Error().Err(err).Str("player", cmd.Entry.Name).Msg("failed to save tiers")
		return err
	}

	observe(metrics.OpSetTier, nil)
	s.logger.Info().
		Str("player", cmd.Entry.Name).
		Str("gamemode", cmd.GameMode).
		Str("tier", cmd.Tier).
		Str("previous_tier", previous).
		Str("modified_by", deref(cmd.Entry.LastModifiedBy)).
		Msg("tier set")
	return nil
}

// RemoveTier drops the player from every tier of the game mode. The snapshot
// is saved even when nothing matched.
func (s *Service) RemoveTier(ctx context.Context, req domain.RemoveTierRequest) (domain.RemoveResult, error) {
	cmd, err := req.Validate(s.catalog, s.now())
	if err != nil {
		observe(metrics.OpRemoveTier, err)
		s.logger.Debug().Err(err).Str("player", req.Player).Msg("rejected remove tier request")
		return domain.RemoveResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.StorageTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	tiers, err := s.load(ctx)
	if err != nil {
		observe(metrics.OpRemoveTier, err)
		s.logger.Error().Err(err).Msg("failed to load tiers")
		return domain.RemoveResult{}, err
	}

	buckets := tiers.EnsureGameMode(cmd.GameMode, s.catalog.TierList())
	removed := buckets.RemovePlayer(cmd.Player)
	if removed > 1 {
		err := fmt.Errorf("%w: %q in %s (%d tiers)", domain.ErrConsistencyViolation, cmd.Player, cmd.GameMode, removed)
		observe(metrics.OpRemoveTier, err)
		s.logger.Error().
			Err(err).
			Str("player", cmd.Player).
			Str("gamemode", cmd.GameMode).
			Msg("refusing to persist inconsistent removal")
		return domain.RemoveResult{}, err
	}

	if err := s.save(ctx, tiers); err != nil {
		observe(metrics.OpRemoveTier, err)
		s.logger.Error().Err(err).Str("player", cmd.Player).Msg("failed to save tiers")
		return domain.RemoveResult{}, err
	}

	observe(metrics.OpRemoveTier, nil)
	s.logger.Info().
		Str("player", cmd.Player).
		Str("gamemode", cmd.GameMode).
		Int("removed", removed).
		Str("modified_by", cmd.Actor.Tag).
		Str("modified_by_id", cmd.Actor.ID).
		Time("modified_at", cmd.At).
		Msg("tier removed")
	return domain.RemoveResult{Removed: removed}, nil
}

func (s *Service) load(ctx context.Context) (domain.Tiers, error) {
	start := time.Now()
	tiers, err := s.store.Load(ctx)
	metrics.StorageDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())

	if errors.Is(err, storage.ErrSnapshotNotFound) {
		s.logger.Info().Msg("no snapshot found, starting from an empty registry")
		return domain.NewTiers(s.catalog), nil
	}
	if err != nil {
		return nil, asStorageError("load", err)
	}
	return tiers, nil
}

func (s *Service) save(ctx context.Context, tiers domain.Tiers) error {
	start := time.Now()
	err := s.store.Save(ctx, tiers)
	metrics.StorageDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())
	if err != nil {
		return asStorageError("save", err)
	}
	return nil
}

func asStorageError(op string, err error) error {
	if domain.IsStorage(err) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}

func observe(op string, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case domain.IsValidation(err):
		outcome = metrics.OutcomeValidation
	case errors.Is(err, domain.ErrConsistencyViolation):
		outcome = metrics.OutcomeConsistency
	default:
		outcome = metrics.OutcomeStorage
	}
	metrics.RegistryOperations.WithLabelValues(op, outcome).Inc()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
