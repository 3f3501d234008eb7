package domain

import (
	"strings"
	"time"
)

// SetTierRequest is the wire body of POST /setTier.
type SetTierRequest struct {
	Player       string `json:"player"`
	GameModeID   string `json:"gamemodeId"`
	TierName     string `json:"tierName"`
	ModifiedBy   string `json:"modifiedBy,omitempty"`
	ModifiedByID string `json:"modifiedById,omitempty"`
	ModifiedAt   string `json:"modifiedAt,omitempty"`
}

// RemoveTierRequest is the wire body of POST /removeTier.
type RemoveTierRequest struct {
	Player       string `json:"player"`
	GameModeID   string `json:"gamemodeId"`
	ModifiedBy   string `json:"modifiedBy,omitempty"`
	ModifiedByID string `json:"modifiedById,omitempty"`
	ModifiedAt   string `json:"modifiedAt,omitempty"`
}

// SetTier is a validated SetTierRequest.
type SetTier struct {
	GameMode string
	Tier     string
	Entry    PlayerEntry
}

// RemoveTier is a validated RemoveTierRequest.
type RemoveTier struct {
	Player   string
	GameMode string
	Actor    Actor
	At       time.Time
}

func (r SetTierRequest) Validate(e Enumeration, now time.Time) (SetTier, error) {
	player := strings.TrimSpace(r.Player)
	gm := strings.TrimSpace(r.GameModeID)
	tierName := strings.TrimSpace(r.TierName)

	switch {
	case player == "":
		return SetTier{}, &ValidationError{Field: "player", Reason: ReasonMissing}
	case gm == "":
		return SetTier{}, &ValidationError{Field: "gamemodeId", Reason: ReasonMissing}
	case tierName == "":
		return SetTier{}, &ValidationError{Field: "tierName", Reason: ReasonMissing}
	}

	if !e.HasGameMode(gm) {
		return SetTier{}, &ValidationError{Field: "gamemodeId", Reason: ReasonUnknown, Value: gm}
	}
	tier, ok := e.CanonicalTier(tierName)
	if !ok {
		return SetTier{}, &ValidationError{Field: "tierName", Reason: ReasonUnknown, Value: tierName}
	}

	at, err := parseModifiedAt(r.ModifiedAt, now)
	if err != nil {
		return SetTier{}, err
	}

	return SetTier{
		GameMode: gm,
		Tier:     tier,
		Entry: PlayerEntry{
			Name:             player,
			LastModifiedBy:   optional(r.ModifiedBy),
			LastModifiedByID: optional(r.ModifiedByID),
			LastModifiedAt:   at.Format(TimestampLayout),
		},
	}, nil
}

func (r RemoveTierRequest) Validate(e Enumeration, now time.Time) (RemoveTier, error) {
	player := strings.TrimSpace(r.Player)
	gm := strings.TrimSpace(r.GameModeID)

	switch {
	case player == "":
		return RemoveTier{}, &ValidationError{Field: "player", Reason: ReasonMissing}
	case gm == "":
		return RemoveTier{}, &ValidationError{Field: "gamemodeId", Reason: ReasonMissing}
	}

	if !e.HasGameMode(gm) {
		return RemoveTier{}, &ValidationError{Field: "gamemodeId", Reason: ReasonUnknown, Value: gm}
	}

	at, err := parseModifiedAt(r.ModifiedAt, now)
	if err != nil {
		return RemoveTier{}, err
	}

	return RemoveTier{
		Player:   player,
		GameMode: gm,
		Actor:    Actor{Tag: strings.TrimSpace(r.ModifiedBy), ID: strings.TrimSpace(r.ModifiedByID)},
		At:       at,
	}, nil
}

func parseModifiedAt(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "modifiedAt", Reason: ReasonInvalid, Value: raw}
	}
	return at.UTC(), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
