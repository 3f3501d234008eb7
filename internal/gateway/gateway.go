// Package gateway turns moderator commands into registry calls. Role changes
// and notifications happen only after the registry reports success.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eagler-tiers/internal/api"
	"eagler-tiers/internal/config"
	"eagler-tiers/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrForbidden        = errors.New("actor is not allowed to manage tiers")
	ErrNoResultsChannel = errors.New("results channel is not configured")
)

// Registry is the subset of the tier registry the gateway drives. Both the
// in-process service and the HTTP client satisfy it.
type Registry interface {
	SetTier(ctx context.Context, req domain.SetTierRequest) error
	RemoveTier(ctx context.Context, req domain.RemoveTierRequest) (domain.RemoveResult, error)
}

// Actor is the moderator issuing a command.
type Actor struct {
	ID            string
	Tag           string
	RoleIDs       []string
	Administrator bool
}

type SetTierCommand struct {
	Player   string
	GameMode string
	Tier     string
	MemberID string
}

type RemoveTierCommand struct {
	Player   string
	GameMode string
	MemberID string
}

type ResultCommand struct {
	Player   string
	GameMode string
	Tier     string
}

// Reply is the message shown back to the actor.
type Reply struct {
	Message string
}

type Gateway struct {
	registry       Registry
	roles          RoleSyncer
	notifier       Notifier
	catalog        *config.Catalog
	logChannel     string
	resultsChannel string
	logger         zerolog.Logger
	now            func() time.Time
}

func New(registry Registry, roles RoleSyncer, notifier Notifier, catalog *config.Catalog, cfg *config.Config, logger zerolog.Logger) *Gateway {
	return &Gateway{
		registry:       registry,
		roles:          roles,
		notifier:       notifier,
		catalog:        catalog,
		logChannel:     cfg.LogChannelID,
		resultsChannel: cfg.ResultsChannelID,
		logger:         logger.With().Str("component", "gateway").Logger(),
		now:            time.Now,
	}
}

// Authorize admits administrators and holders of a staff role.
func (g *Gateway) Authorize(actor Actor) error {
	if actor.Administrator {
		return nil
	}
	for _, id := range actor.RoleIDs {
		if g.catalog.IsStaffRole(id) {
			return nil
		}
	}
	return ErrForbidden
}

func (g *Gateway) SetTier(ctx context.Context, actor Actor, cmd SetTierCommand) (Reply, error) {
	if err := g.Authorize(actor); err != nil {
		return forbidden(), err
	}

	now := g.now().UTC()
	err := g.registry.SetTier(ctx, domain.SetTierRequest{
		Player:       cmd.Player,
		GameModeID:   cmd.GameMode,
		TierName:     cmd.Tier,
		ModifiedBy:   actor.Tag,
		ModifiedByID: actor.ID,
		ModifiedAt:   now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return g.failed(err, "set tier")
	}

	player := strings.TrimSpace(cmd.Player)
	gm := strings.TrimSpace(cmd.GameMode)
	tier, ok := g.catalog.CanonicalTier(cmd.Tier)
	if !ok {
		tier = strings.TrimSpace(cmd.Tier)
	}

	fields := []Field{
		{Name: "Moderator", Value: mention(actor.ID), Inline: true},
		{Name: "Player (IGN)", Value: code(player), Inline: true},
	}
	if cmd.MemberID != "" {
		fields = append(fields, Field{Name: "Discord User", Value: mention(cmd.MemberID), Inline: true})
	}
	fields = append(fields,
		Field{Name: "Gamemode", Value: code(gm), Inline: true},
		Field{Name: "New Tier", Value: code(tier), Inline: true},
	)

	g.afterSuccess(ctx,
		func(ctx context.Context) error {
			return g.syncRoles(ctx, cmd.MemberID, func(current []string) RolePlan {
				return PlanSetRoles(g.catalog, gm, tier, current)
			})
		},
		g.audit("Tier Updated", ColorUpdated, now, fields),
	)

	msg := fmt.Sprintf("Set **%s** to **%s** in **%s**", player, tier, gm)
	if cmd.MemberID != "" {
		msg += " for " + mention(cmd.MemberID)
	}
	return Reply{Message: msg}, nil
}

func (g *Gateway) RemoveTier(ctx context.Context, actor Actor, cmd RemoveTierCommand) (Reply, error) {
	if err := g.Authorize(actor); err != nil {
		return forbidden(), err
	}

	now := g.now().UTC()
	res, err := g.registry.RemoveTier(ctx, domain.RemoveTierRequest{
		Player:       cmd.Player,
		GameModeID:   cmd.GameMode,
		ModifiedBy:   actor.Tag,
		ModifiedByID: actor.ID,
		ModifiedAt:   now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return g.failed(err, "remove tier")
	}

	player := strings.TrimSpace(cmd.Player)
	gm := strings.TrimSpace(cmd.GameMode)

	fields := []Field{
		{Name: "Moderator", Value: mention(actor.ID), Inline: true},
		{Name: "Player (IGN)", Value: code(player), Inline: true},
	}
	if cmd.MemberID != "" {
		fields = append(fields, Field{Name: "Discord User", Value: mention(cmd.MemberID), Inline: true})
	}
	fields = append(fields,
		Field{Name: "Gamemode", Value: code(gm), Inline: true},
		Field{Name: "Removed Entries", Value: code(strconv.Itoa(res.Removed)), Inline: true},
	)

	g.afterSuccess(ctx,
		func(ctx context.Context) error {
			return g.syncRoles(ctx, cmd.MemberID, func(current []string) RolePlan {
				return PlanClearRoles(g.catalog, gm, current)
			})
		},
		g.audit("Tier Removed", ColorRemoved, now, fields),
	)

	var msg string
	if res.Removed > 0 {
		msg = fmt.Sprintf("Removed **%s** from **%s**", player, gm)
		if cmd.MemberID != "" {
			msg += " and cleared tier roles for " + mention(cmd.MemberID)
		}
	} else {
		msg = fmt.Sprintf("**%s** was not found in any tier for **%s**", player, gm)
		if cmd.MemberID != "" {
			msg += ", but tier roles were cleared for " + mention(cmd.MemberID)
		}
	}
	return Reply{Message: msg + "."}, nil
}

// PostResult announces a test result. It does not touch the registry.
func (g *Gateway) PostResult(ctx context.Context, actor Actor, cmd ResultCommand) (Reply, error) {
	if err := g.Authorize(actor); err != nil {
		return forbidden(), err
	}

	player := strings.TrimSpace(cmd.Player)
	gm := strings.TrimSpace(cmd.GameMode)
	if player == "" {
		err := &domain.ValidationError{Field: "player", Reason: domain.ReasonMissing}
		return Reply{Message: "Failed: " + err.Error()}, err
	}
	if !g.catalog.HasGameMode(gm) {
		err := &domain.ValidationError{Field: "gamemode", Reason: domain.ReasonUnknown, Value: gm}
		return Reply{Message: "Failed: " + err.Error()}, err
	}
	tier, ok := g.catalog.CanonicalTier(cmd.Tier)
	if !ok {
		err := &domain.ValidationError{Field: "tier", Reason: domain.ReasonUnknown, Value: strings.TrimSpace(cmd.Tier)}
		return Reply{Message: "Failed: " + err.Error()}, err
	}

	if g.resultsChannel == "" {
		return Reply{Message: "Results channel is not configured. Ask an admin to set RESULTS_CHANNEL_ID."}, ErrNoResultsChannel
	}

	now := g.now().UTC()
	note, err := newNotification(g.resultsChannel, "Tier Test Result", ColorResult, now,
		Field{Name: "Player", Value: code(player), Inline: true},
		Field{Name: "Gamemode", Value: code(gm), Inline: true},
		Field{Name: "Result Tier", Value: code(tier), Inline: true},
		Field{Name: "Tester", Value: actor.Tag, Inline: true},
		Field{Name: "Date", Value: now.Format(time.RFC1123)},
	)
	if err != nil {
		return Reply{Message: "Failed to post result."}, err
	}
	note.Description = "Manual test result submitted by " + mention(actor.ID)

	if err := g.notifier.Notify(ctx, note); err != nil {
		g.logger.Error().Err(err).Str("player", player).Msg("failed to post result")
		return Reply{Message: "Failed to post result."}, err
	}

	return Reply{Message: fmt.Sprintf("Posted test result: **%s** → **%s** in **%s**.", player, tier, gm)}, nil
}

// afterSuccess runs the role sync and the audit notification concurrently.
// Their failures are logged and never reach the actor.
func (g *Gateway) afterSuccess(ctx context.Context, syncRoles func(context.Context) error, notify func(context.Context) error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := syncRoles(egCtx); err != nil {
			g.logger.Error().Err(err).Msg("failed to update roles")
		}
		return nil
	})
	eg.Go(func() error {
		if err := notify(egCtx); err != nil {
			g.logger.Error().Err(err).Msg("failed to send audit notification")
		}
		return nil
	})
	_ = eg.Wait()
}

func (g *Gateway) syncRoles(ctx context.Context, memberID string, plan func([]string) RolePlan) error {
	if memberID == "" {
		return nil
	}
	current, err := g.roles.MemberRoles(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to fetch member roles: %w", err)
	}

	p := plan(current)
	if p.Empty() {
		g.logger.Debug().Str("member_id", memberID).Msg("roles already in sync")
		return nil
	}
	if len(p.Remove) > 0 {
		if err := g.roles.RemoveRoles(ctx, memberID, p.Remove); err != nil {
			return fmt.Errorf("failed to remove roles: %w", err)
		}
	}
	if len(p.Add) > 0 {
		if err := g.roles.AddRoles(ctx, memberID, p.Add); err != nil {
			return fmt.Errorf("failed to add roles: %w", err)
		}
	}
	return nil
}

func (g *Gateway) audit(title string, color int, at time.Time, fields []Field) func(context.Context) error {
	return func(ctx context.Context) error {
		if g.logChannel == "" {
			g.logger.Debug().Str("title", title).Msg("log channel not configured, skipping audit notification")
			return nil
		}
		note, err := newNotification(g.logChannel, title, color, at, fields...)
		if err != nil {
			return err
		}
		return g.notifier.Notify(ctx, note)
	}
}

// failed builds the reply for a registry error. Registry messages are shown
// verbatim; transport failures get a generic message.
func (g *Gateway) failed(err error, op string) (Reply, error) {
	g.logger.Warn().Err(err).Str("op", op).Msg("registry call failed")

	var apiErr *api.APIError
	if errors.As(err, &apiErr) || domain.IsValidation(err) {
		return Reply{Message: "Failed: " + err.Error()}, err
	}
	return Reply{Message: "Error talking to the tier registry."}, err
}

func forbidden() Reply {
	return Reply{Message: "You do not have permission to use this command."}
}
