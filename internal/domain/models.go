package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// TimestampLayout is how lastModifiedAt is written for new entries: UTC with
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// PlayerEntry is one player's membership of a tier bucket.
//
// An entry decoded from a snapshot is written back exactly as it was read, so
// audit fields in formats this service would not produce survive unrelated
// mutations. Entries are never edited in place; build a new one instead.
type PlayerEntry struct {
	Name             string
	LastModifiedBy   *string
	LastModifiedByID *string
	// LastModifiedAt is opaque once stored. Older snapshots may hold any string.
	LastModifiedAt   string

	raw json.RawMessage
}

type playerEntryJSON struct {
	Name             string  `json:"name"`
	LastModifiedBy   *string `json:"lastModifiedBy"`
	LastModifiedByID *string `json:"lastModifiedById"`
	LastModifiedAt   string  `json:"lastModifiedAt"`
}

func (e PlayerEntry) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(playerEntryJSON{
		Name:             e.Name,
		LastModifiedBy:   e.LastModifiedBy,
		LastModifiedByID: e.LastModifiedByID,
		LastModifiedAt:   e.LastModifiedAt,
	})
}

// UnmarshalJSON requires a string name. Audit fields that are missing or not
// strings decode as empty.
func (e *PlayerEntry) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("player entry is not an object")
	}

	var name string
	if err := json.Unmarshal(fields["name"], &name); err != nil {
		return errors.New("player entry has no name")
	}

	*e = PlayerEntry{
		Name:             name,
		LastModifiedBy:   stringField(fields["lastModifiedBy"]),
		LastModifiedByID: stringField(fields["lastModifiedById"]),
		raw:              append(json.RawMessage(nil), b...),
	}
	if at := stringField(fields["lastModifiedAt"]); at != nil {
		e.LastModifiedAt = *at
	}
	return nil
}

// Equal compares the decoded fields and ignores how the entry was encoded.
func (e PlayerEntry) Equal(o PlayerEntry) bool {
	return e.Name == o.Name &&
		equalOptional(e.LastModifiedBy, o.LastModifiedBy) &&
		equalOptional(e.LastModifiedByID, o.LastModifiedByID) &&
		e.LastModifiedAt == o.LastModifiedAt
}

func stringField(raw json.RawMessage) *string {
	var s *string
	if json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return s
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// TierBuckets maps a tier label to its ordered entries.
type TierBuckets map[string][]PlayerEntry

// Tiers is the whole registry document: gamemode -> tier -> entries.
type Tiers map[string]TierBuckets

// Enumeration is the fixed set of game modes and tiers the registry accepts.
type Enumeration interface {
	HasGameMode(gm string) bool
	CanonicalTier(name string) (string, bool)
	GameModeList() []string
	TierList() []string
}

type Actor struct {
	Tag string
	ID  string
}

type RemoveResult struct {
	Removed int `json:"removed"`
}

// NewTiers returns the first-run document: every game mode with every tier empty.
func NewTiers(e Enumeration) Tiers {
	t := make(Tiers, len(e.GameModeList()))
	for _, gm := range e.GameModeList() {
		t.EnsureGameMode(gm, e.TierList())
	}
	return t
}

// EnsureGameMode creates gm if needed and fills any missing tier bucket.
func (t Tiers) EnsureGameMode(gm string, tiers []string) TierBuckets {
	buckets, ok := t[gm]
	if !ok || buckets == nil {
		buckets = make(TierBuckets, len(tiers))
		t[gm] = buckets
	}
	for _, tier := range tiers {
		if buckets[tier] == nil {
			buckets[tier] = []PlayerEntry{}
		}
	}
	return buckets
}

// RemovePlayer filters name out of every bucket and reports how many buckets
// held it.
func (b TierBuckets) RemovePlayer(name string) int {
	touched := 0
	for tier, entries := range b {
		kept := make([]PlayerEntry, 0, len(entries))
		for _, e := range entries {
			if !SamePlayer(e.Name, name) {
				kept = append(kept, e)
			}
		}
		if len(kept) != len(entries) {
			touched++
		}
		b[tier] = kept
	}
	return touched
}

// TierOf returns the tier holding name, if any.
func (b TierBuckets) TierOf(name string) (string, bool) {
	for tier, entries := range b {
		for _, e := range entries {
			if SamePlayer(e.Name, name) {
				return tier, true
			}
		}
	}
	return "", false
}

func SamePlayer(a, b string) bool {
	return strings.EqualFold(a, b)
}
