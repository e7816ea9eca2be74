package datastore

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatehouse/gatehouse/pkg/models"
)

// Derived attribute keys added during actor expansion.
const (
	// AttrMemberOf holds the names of the groups the actor belongs to.
	AttrMemberOf = "member-of"
	// AttrHasRole holds the names of the roles those groups grant.
	AttrHasRole = "has-role"
)

// AddActor registers a new actor and returns the stored record.
func (d *DataStore) AddActor(ctx context.Context, req AddActorRequest) (*models.Actor, error) {
	if req.Name == "" || req.Typestr == "" {
		return nil, fmt.Errorf("%w: actor name and typestr are required", ErrInvalidArgument)
	}
	actor := models.NewActor(req.Name, req.Typestr, models.NewAttributes(req.Attributes))

	var out *models.Actor
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		_, exists := d.actors[actor.Typestr][actor.Name]
		d.mu.RUnlock()
		if exists {
			return fmt.Errorf("%w: actor %s/%s", ErrAlreadyExists, actor.Typestr, actor.Name)
		}
		if err := d.store.SaveActor(ctx, actor); err != nil {
			return fmt.Errorf("persist actor: %w", err)
		}
		d.mu.Lock()
		typed, ok := d.actors[actor.Typestr]
		if !ok {
			typed = make(map[string]*models.Actor)
			d.actors[actor.Typestr] = typed
		}
		typed[actor.Name] = actor
		d.mu.Unlock()
		out = actor.Clone()
		return nil
	})
	return out, err
}

// ModifyActor applies attribute deltas to an existing actor. Adds are
// applied before removes; emptied attribute keys are dropped.
func (d *DataStore) ModifyActor(ctx context.Context, req ModifyActorRequest) (*models.Actor, error) {
	if req.Name == "" || req.Typestr == "" {
		return nil, fmt.Errorf("%w: actor name and typestr are required", ErrInvalidArgument)
	}
	name := strings.ToLower(req.Name)
	typestr := strings.ToLower(req.Typestr)

	var out *models.Actor
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		existing, ok := d.actors[typestr][name]
		d.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: actor %s/%s", ErrNotFound, typestr, name)
		}

		post := existing.Clone()
		for key, values := range req.AddAttributes {
			post.Attributes.AddValues(key, values...)
		}
		for key, values := range req.RemoveAttributes {
			post.Attributes.RemoveValues(key, values...)
		}

		if err := d.store.SaveActor(ctx, post); err != nil {
			return fmt.Errorf("persist actor: %w", err)
		}
		d.mu.Lock()
		d.actors[typestr][name] = post
		d.mu.Unlock()
		out = post.Clone()
		return nil
	})
	return out, err
}

// RemoveActor deletes an actor and returns the removed record.
func (d *DataStore) RemoveActor(ctx context.Context, typestr, name string) (*models.Actor, error) {
	if name == "" || typestr == "" {
		return nil, fmt.Errorf("%w: actor name and typestr are required", ErrInvalidArgument)
	}
	name = strings.ToLower(name)
	typestr = strings.ToLower(typestr)

	var out *models.Actor
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		existing, ok := d.actors[typestr][name]
		d.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: actor %s/%s", ErrNotFound, typestr, name)
		}
		if err := d.store.RemoveActor(ctx, typestr, name); err != nil {
			return fmt.Errorf("remove actor: %w", err)
		}
		d.mu.Lock()
		delete(d.actors[typestr], name)
		d.mu.Unlock()
		out = existing.Clone()
		return nil
	})
	return out, err
}

// GetActors lists actors matching the optional filters. Each returned actor
// is expanded with its derived member-of and has-role attributes so callers
// see the same view the policy evaluator sees.
func (d *DataStore) GetActors(ctx context.Context, req GetActorsRequest) ([]*models.Actor, error) {
	name := strings.ToLower(req.Name)
	typestr := strings.ToLower(req.Typestr)

	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*models.Actor
	for ty, byName := range d.actors {
		if typestr != "" && ty != typestr {
			continue
		}
		for n, a := range byName {
			if name != "" && n != name {
				continue
			}
			expanded := a.Clone()
			d.addGroupDerivedLocked(expanded)
			out = append(out, expanded)
		}
	}
	return out, nil
}

// addGroupDerivedLocked unions the actor's group memberships and granted
// roles into its attributes. Caller holds at least the read lock.
func (d *DataStore) addGroupDerivedLocked(actor *models.Actor) {
	member := models.GroupMember{Name: actor.Name, Typestr: actor.Typestr}
	for groupName, group := range d.groups {
		if !group.Members.Has(member) {
			continue
		}
		actor.Attributes.AddValues(AttrMemberOf, groupName)
		actor.Attributes.AddValues(AttrHasRole, group.Roles.Values()...)
	}
}
