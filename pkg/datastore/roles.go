package datastore

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/models"
)

// AddRole registers a new role and returns the stored record.
func (d *DataStore) AddRole(ctx context.Context, req AddRoleRequest) (*models.Role, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrInvalidArgument)
	}
	role := models.NewRole(req.Name, req.Description)

	var out *models.Role
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		_, exists := d.roles[role.Name]
		d.mu.RUnlock()
		if exists {
			return fmt.Errorf("%w: role %s", ErrAlreadyExists, role.Name)
		}
		if err := d.store.SaveRole(ctx, role); err != nil {
			return fmt.Errorf("persist role: %w", err)
		}
		d.mu.Lock()
		d.roles[role.Name] = role
		d.mu.Unlock()
		out = role.Clone()
		return nil
	})
	return out, err
}

// RemoveRole deletes a role. Every group that lists the role is updated and
// persisted first; a group persist failure is logged and skipped, leaving
// the change stream to reconcile that group.
func (d *DataStore) RemoveRole(ctx context.Context, name string) (*models.Role, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrInvalidArgument)
	}
	name = strings.ToLower(name)

	var out *models.Role
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		existing, ok := d.roles[name]
		var affected []*models.Group
		if ok {
			for _, g := range d.groups {
				if g.Roles.Has(name) {
					post := g.Clone()
					post.Roles.Remove(name)
					affected = append(affected, post)
				}
			}
		}
		d.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: role %s", ErrNotFound, name)
		}

		for _, post := range affected {
			if err := d.store.SaveGroup(ctx, post); err != nil {
				d.log.Warn("referential integrity: group not persisted during role removal",
					zap.String("group", post.Name),
					zap.String("role", name),
					zap.Error(err))
				continue
			}
			d.mu.Lock()
			d.groups[post.Name] = post
			d.mu.Unlock()
		}

		if err := d.store.RemoveRole(ctx, name); err != nil {
			return fmt.Errorf("remove role: %w", err)
		}
		d.mu.Lock()
		delete(d.roles, name)
		d.mu.Unlock()
		out = existing.Clone()
		return nil
	})
	return out, err
}

// GetRoles lists roles, optionally filtered by exact name.
func (d *DataStore) GetRoles(ctx context.Context, req GetRolesRequest) ([]*models.Role, error) {
	name := strings.ToLower(req.Name)

	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*models.Role
	for n, r := range d.roles {
		if name != "" && n != name {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}
