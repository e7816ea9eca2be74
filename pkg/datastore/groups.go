package datastore

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/models"
)

// AddGroup registers a new group. Every role the group grants must already
// exist; each such role gains a back-reference to the group. The group is
// persisted and committed first, then each role; a role persist failure is
// logged and skipped.
func (d *DataStore) AddGroup(ctx context.Context, req AddGroupRequest) (*models.Group, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidArgument)
	}
	members := models.NewMemberSet()
	for _, m := range req.Members {
		members.Add(models.NewGroupMember(m.Name, m.Typestr))
	}
	roles := models.NewStringSet()
	for _, r := range req.Roles {
		roles.Add(strings.ToLower(r))
	}
	group := models.NewGroup(req.Name, req.Description, members, roles)

	var out *models.Group
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		_, exists := d.groups[group.Name]
		var missing string
		var linked []*models.Role
		if !exists {
			for roleName := range group.Roles {
				role, ok := d.roles[roleName]
				if !ok {
					missing = roleName
					break
				}
				post := role.Clone()
				post.Groups.Add(group.Name)
				linked = append(linked, post)
			}
		}
		d.mu.RUnlock()
		if exists {
			return fmt.Errorf("%w: group %s", ErrAlreadyExists, group.Name)
		}
		if missing != "" {
			return fmt.Errorf("%w: role %s does not exist", ErrFailedPrecondition, missing)
		}

		if err := d.store.SaveGroup(ctx, group); err != nil {
			return fmt.Errorf("persist group: %w", err)
		}
		d.mu.Lock()
		d.groups[group.Name] = group
		d.mu.Unlock()

		d.persistRoleBackrefs(ctx, group.Name, linked)
		out = group.Clone()
		return nil
	})
	return out, err
}

// ModifyGroup applies member and role deltas to an existing group. Role
// adds and removes must reference existing roles; a non-nil description
// replaces the stored one. The group is persisted and committed first, then
// each affected role's back-reference.
func (d *DataStore) ModifyGroup(ctx context.Context, req ModifyGroupRequest) (*models.Group, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidArgument)
	}
	name := strings.ToLower(req.Name)

	var out *models.Group
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		existing, ok := d.groups[name]
		var missing string
		var linked []*models.Role
		if ok {
			for _, roleName := range append(req.AddRoles, req.RemoveRoles...) {
				if _, found := d.roles[strings.ToLower(roleName)]; !found {
					missing = strings.ToLower(roleName)
					break
				}
			}
		}
		if ok && missing == "" {
			for _, roleName := range req.AddRoles {
				post := d.roles[strings.ToLower(roleName)].Clone()
				post.Groups.Add(name)
				linked = append(linked, post)
			}
			for _, roleName := range req.RemoveRoles {
				post := d.roles[strings.ToLower(roleName)].Clone()
				post.Groups.Remove(name)
				linked = append(linked, post)
			}
		}
		d.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: group %s", ErrNotFound, name)
		}
		if missing != "" {
			return fmt.Errorf("%w: role %s does not exist", ErrFailedPrecondition, missing)
		}

		post := existing.Clone()
		if req.Description != nil {
			post.Description = *req.Description
		}
		for _, m := range req.AddMembers {
			post.Members.Add(models.NewGroupMember(m.Name, m.Typestr))
		}
		for _, m := range req.RemoveMembers {
			post.Members.Remove(models.NewGroupMember(m.Name, m.Typestr))
		}
		for _, roleName := range req.AddRoles {
			post.Roles.Add(strings.ToLower(roleName))
		}
		for _, roleName := range req.RemoveRoles {
			post.Roles.Remove(strings.ToLower(roleName))
		}

		if err := d.store.SaveGroup(ctx, post); err != nil {
			return fmt.Errorf("persist group: %w", err)
		}
		d.mu.Lock()
		d.groups[name] = post
		d.mu.Unlock()

		d.persistRoleBackrefs(ctx, name, linked)
		out = post.Clone()
		return nil
	})
	return out, err
}

// RemoveGroup deletes a group. Each role the group granted loses its
// back-reference first; a role persist failure is logged and skipped.
func (d *DataStore) RemoveGroup(ctx context.Context, name string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidArgument)
	}
	name = strings.ToLower(name)

	var out *models.Group
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		existing, ok := d.groups[name]
		var linked []*models.Role
		if ok {
			for roleName := range existing.Roles {
				role, found := d.roles[roleName]
				if !found {
					continue
				}
				post := role.Clone()
				post.Groups.Remove(name)
				linked = append(linked, post)
			}
		}
		d.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: group %s", ErrNotFound, name)
		}

		d.persistRoleBackrefs(ctx, name, linked)

		if err := d.store.RemoveGroup(ctx, name); err != nil {
			return fmt.Errorf("remove group: %w", err)
		}
		d.mu.Lock()
		delete(d.groups, name)
		d.mu.Unlock()
		out = existing.Clone()
		return nil
	})
	return out, err
}

// persistRoleBackrefs saves and commits each updated role. Failures are
// referential-integrity warnings, not errors; the primary commit stands and
// the change stream is the recovery path.
func (d *DataStore) persistRoleBackrefs(ctx context.Context, groupName string, roles []*models.Role) {
	for _, post := range roles {
		if err := d.store.SaveRole(ctx, post); err != nil {
			d.log.Warn("referential integrity: role back-reference not persisted",
				zap.String("role", post.Name),
				zap.String("group", groupName),
				zap.Error(err))
			continue
		}
		d.mu.Lock()
		d.roles[post.Name] = post
		d.mu.Unlock()
	}
}

// GetGroups lists groups matching the optional filters. Filters are ANDed;
// the member filter requires both member name and typestr.
func (d *DataStore) GetGroups(ctx context.Context, req GetGroupsRequest) ([]*models.Group, error) {
	name := strings.ToLower(req.Name)
	role := strings.ToLower(req.Role)
	var member *models.GroupMember
	if req.MemberName != "" && req.MemberTypestr != "" {
		m := models.NewGroupMember(req.MemberName, req.MemberTypestr)
		member = &m
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*models.Group
	for n, g := range d.groups {
		if name != "" && n != name {
			continue
		}
		if member != nil && !g.Members.Has(*member) {
			continue
		}
		if role != "" && !g.Roles.Has(role) {
			continue
		}
		out = append(out, g.Clone())
	}
	return out, nil
}
