package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the fixed enumeration of game modes and tiers plus the chat
// roles bound to them. It is loaded once and shared by every component that
// validates or maps those keys.
type Catalog struct {
	GameModes  []string                     `yaml:"gamemodes"`
	Tiers      []string                     `yaml:"tiers"`
	Roles      map[string]map[string]string `yaml:"roles"`
	StaffRoles []string                     `yaml:"staff_roles"`

	gameModes  map[string]struct{}
	tiers      map[string]string
	staffRoles map[string]struct{}
}

func LoadCatalog(cfg *Config, logger zerolog.Logger) (*Catalog, error) {
	raw := defaultCatalog
	source := "embedded"
	if cfg.CatalogPath != "" {
		b, err := os.ReadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		raw = b
		source = cfg.CatalogPath
	}

	catalog, err := ParseCatalog(raw)
	if err != nil {
		logger.Error().Err(err).Str("source", source).Msg("invalid catalog")
		return nil, err
	}

	logger.Info().
		Str("source", source).
		Int("gamemodes", len(catalog.GameModes)).
		Int("tiers", len(catalog.Tiers)).
		Int("staff_roles", len(catalog.StaffRoles)).
		Msg("catalog loaded")

	return catalog, nil
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the enumeration and builds the lookup indexes.
func (c *Catalog) Validate() error {
	if len(c.GameModes) == 0 {
		return fmt.Errorf("catalog: no gamemodes configured")
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("catalog: no tiers configured")
	}

	c.gameModes = make(map[string]struct{}, len(c.GameModes))
	for _, gm := range c.GameModes {
		if gm == "" || strings.TrimSpace(gm) != gm {
			return fmt.Errorf("catalog: invalid gamemode %q", gm)
		}
		if _, dup := c.gameModes[gm]; dup {
			return fmt.Errorf("catalog: duplicate gamemode %q", gm)
		}
		c.gameModes[gm] = struct{}{}
	}

	c.tiers = make(map[string]string, len(c.Tiers))
	for _, t := range c.Tiers {
		if t == "" || strings.ToUpper(strings.TrimSpace(t)) != t {
			return fmt.Errorf("catalog: tier %q must be non-empty upper case", t)
		}
		if _, dup := c.tiers[t]; dup {
			return fmt.Errorf("catalog: duplicate tier %q", t)
		}
		c.tiers[t] = t
	}

	for gm, byTier := range c.Roles {
		if _, ok := c.gameModes[gm]; !ok {
			return fmt.Errorf("catalog: roles configured for unknown gamemode %q", gm)
		}
		for t := range byTier {
			if _, ok := c.tiers[t]; !ok {
				return fmt.Errorf("catalog: role configured for unknown tier %q in %q", t, gm)
			}
		}
	}

	c.staffRoles = make(map[string]struct{}, len(c.StaffRoles))
	for _, id := range c.StaffRoles {
		c.staffRoles[id] = struct{}{}
	}
	return nil
}

func (c *Catalog) HasGameMode(gm string) bool {
	_, ok := c.gameModes[gm]
	return ok
}

// CanonicalTier matches name case-insensitively and returns the configured label.
func (c *Catalog) CanonicalTier(name string) (string, bool) {
	t, ok := c.tiers[strings.ToUpper(strings.TrimSpace(name))]
	return t, ok
}

func (c *Catalog) GameModeList() []string { return c.GameModes }
func (c *Catalog) TierList() []string     { return c.Tiers }

// TierRole returns the role bound to gm/tier, or "" when none is configured.
func (c *Catalog) TierRole(gm, tier string) string {
	return c.Roles[gm][tier]
}

// GameModeRoles returns every tier role of gm in tier order.
func (c *Catalog) GameModeRoles(gm string) []string {
	byTier := c.Roles[gm]
	if len(byTier) == 0 {
		return nil
	}
	roles := make([]string, 0, len(byTier))
	for _, t := range c.Tiers {
		if id := byTier[t]; id != "" {
			roles = append(roles, id)
		}
	}
	return roles
}

func (c *Catalog) IsStaffRole(roleID string) bool {
	_, ok := c.staffRoles[roleID]
	return ok
}
