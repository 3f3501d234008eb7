package gateway

import (
	"context"
	"sort"
	"sync"

	"eagler-tiers/internal/config"

	"github.com/rs/zerolog"
)

// RoleSyncer reads and changes a chat member's roles.
type RoleSyncer interface {
	MemberRoles(ctx context.Context, memberID string) ([]string, error)
	AddRoles(ctx context.Context, memberID string, roleIDs []string) error
	RemoveRoles(ctx context.Context, memberID string, roleIDs []string) error
}

type RolePlan struct {
	Add    []string
	Remove []string
}

func (p RolePlan) Empty() bool { return len(p.Add) == 0 && len(p.Remove) == 0 }

// PlanSetRoles grants the tier role of gm/tier and drops every other tier role
// of gm the member holds. Game modes or tiers without a configured role yield
// an empty plan.
func PlanSetRoles(c *config.Catalog, gm, tier string, current []string) RolePlan {
	all := c.GameModeRoles(gm)
	target := c.TierRole(gm, tier)
	if len(all) == 0 || target == "" {
		return RolePlan{}
	}

	held := toSet(current)
	var plan RolePlan
	for _, id := range all {
		if id != target && held[id] {
			plan.Remove = append(plan.Remove, id)
		}
	}
	if !held[target] {
		plan.Add = []string{target}
	}
	return plan
}

// PlanClearRoles drops every tier role of gm the member holds.
func PlanClearRoles(c *config.Catalog, gm string, current []string) RolePlan {
	held := toSet(current)
	var plan RolePlan
	for _, id := range c.GameModeRoles(gm) {
		if held[id] {
			plan.Remove = append(plan.Remove, id)
		}
	}
	return plan
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// MemoryRoleSyncer keeps member roles in process memory. Unknown members start
// with no roles.
type MemoryRoleSyncer struct {
	mu      sync.Mutex
	members map[string]map[string]struct{}
	logger  zerolog.Logger
}

func NewMemoryRoleSyncer(logger zerolog.Logger) *MemoryRoleSyncer {
	return &MemoryRoleSyncer{
		members: make(map[string]map[string]struct{}),
		logger:  logger,
	}
}

// Grant seeds roles without logging a change.
func (m *MemoryRoleSyncer) Grant(memberID string, roleIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(memberID, roleIDs)
}

func (m *MemoryRoleSyncer) MemberRoles(ctx context.Context, memberID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roles := make([]string, 0, len(m.members[memberID]))
	for id := range m.members[memberID] {
		roles = append(roles, id)
	}
	sort.Strings(roles)
	return roles, nil
}

func (m *MemoryRoleSyncer) AddRoles(ctx context.Context, memberID string, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(memberID, roleIDs)
	m.logger.Info().Str("member_id", memberID).Strs("roles", roleIDs).Msg("roles added")
	return nil
}

func (m *MemoryRoleSyncer) RemoveRoles(ctx context.Context, memberID string, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range roleIDs {
		delete(m.members[memberID], id)
	}
	m.logger.Info().Str("member_id", memberID).Strs("roles", roleIDs).Msg("roles removed")
	return nil
}

func (m *MemoryRoleSyncer) add(memberID string, roleIDs []string) {
	held, ok := m.members[memberID]
	if !ok {
		held = make(map[string]struct{})
		m.members[memberID] = held
	}
	for _, id := range roleIDs {
		held[id] = struct{}{}
	}
}
