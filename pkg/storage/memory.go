package storage

import (
	"context"
	"sync"

	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

// MemoryStorage is the nil backend: records live only in process memory.
// It is the default for tests and for GATEHOUSE_BACKEND=nil deployments
// that do not need durability.
type MemoryStorage struct {
	mu sync.RWMutex

	targets  map[string]map[string]*models.Target
	actors   map[string]map[string]*models.Actor
	roles    map[string]*models.Role
	groups   map[string]*models.Group
	policies map[string]*policy.Rule
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		targets:  make(map[string]map[string]*models.Target),
		actors:   make(map[string]map[string]*models.Actor),
		roles:    make(map[string]*models.Role),
		groups:   make(map[string]*models.Group),
		policies: make(map[string]*policy.Rule),
	}
}

// LoadTargets returns a copy of the stored targets keyed by type and name.
func (m *MemoryStorage) LoadTargets(ctx context.Context) (map[string]map[string]*models.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]*models.Target, len(m.targets))
	for typestr, byName := range m.targets {
		typed := make(map[string]*models.Target, len(byName))
		for name, t := range byName {
			typed[name] = t.Clone()
		}
		out[typestr] = typed
	}
	return out, nil
}

// SaveTarget stores the target.
func (m *MemoryStorage) SaveTarget(ctx context.Context, target *models.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	typed, ok := m.targets[target.Typestr]
	if !ok {
		typed = make(map[string]*models.Target)
		m.targets[target.Typestr] = typed
	}
	typed[target.Name] = target.Clone()
	return nil
}

// RemoveTarget deletes the target. Missing records are not an error.
func (m *MemoryStorage) RemoveTarget(ctx context.Context, typestr, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if typed, ok := m.targets[typestr]; ok {
		delete(typed, name)
	}
	return nil
}

// LoadActors returns a copy of the stored actors keyed by type and name.
func (m *MemoryStorage) LoadActors(ctx context.Context) (map[string]map[string]*models.Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]*models.Actor, len(m.actors))
	for typestr, byName := range m.actors {
		typed := make(map[string]*models.Actor, len(byName))
		for name, a := range byName {
			typed[name] = a.Clone()
		}
		out[typestr] = typed
	}
	return out, nil
}

// SaveActor stores the actor.
func (m *MemoryStorage) SaveActor(ctx context.Context, actor *models.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	typed, ok := m.actors[actor.Typestr]
	if !ok {
		typed = make(map[string]*models.Actor)
		m.actors[actor.Typestr] = typed
	}
	typed[actor.Name] = actor.Clone()
	return nil
}

// RemoveActor deletes the actor. Missing records are not an error.
func (m *MemoryStorage) RemoveActor(ctx context.Context, typestr, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if typed, ok := m.actors[typestr]; ok {
		delete(typed, name)
	}
	return nil
}

// LoadRoles returns a copy of the stored roles keyed by name.
func (m *MemoryStorage) LoadRoles(ctx context.Context) (map[string]*models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*models.Role, len(m.roles))
	for name, r := range m.roles {
		out[name] = r.Clone()
	}
	return out, nil
}

// SaveRole stores the role.
func (m *MemoryStorage) SaveRole(ctx context.Context, role *models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[role.Name] = role.Clone()
	return nil
}

// RemoveRole deletes the role. Missing records are not an error.
func (m *MemoryStorage) RemoveRole(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles, name)
	return nil
}

// LoadGroups returns a copy of the stored groups keyed by name.
func (m *MemoryStorage) LoadGroups(ctx context.Context) (map[string]*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*models.Group, len(m.groups))
	for name, g := range m.groups {
		out[name] = g.Clone()
	}
	return out, nil
}

// SaveGroup stores the group.
func (m *MemoryStorage) SaveGroup(ctx context.Context, group *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group.Name] = group.Clone()
	return nil
}

// RemoveGroup deletes the group. Missing records are not an error.
func (m *MemoryStorage) RemoveGroup(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, name)
	return nil
}

// LoadPolicies returns a copy of the stored policy rules keyed by name.
func (m *MemoryStorage) LoadPolicies(ctx context.Context) (map[string]*policy.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*policy.Rule, len(m.policies))
	for name, r := range m.policies {
		out[name] = r.Clone()
	}
	return out, nil
}

// SavePolicy stores the policy rule.
func (m *MemoryStorage) SavePolicy(ctx context.Context, rule *policy.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[rule.Name] = rule.Clone()
	return nil
}

// RemovePolicy deletes the policy rule. Missing records are not an error.
func (m *MemoryStorage) RemovePolicy(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.policies, name)
	return nil
}

// Updates returns nil: the memory backend is not replicated.
func (m *MemoryStorage) Updates() <-chan BackendUpdate {
	return nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}
