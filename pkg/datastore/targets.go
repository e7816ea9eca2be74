package datastore

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatehouse/gatehouse/pkg/models"
)

// AddTarget registers a new target and returns the stored record.
func (d *DataStore) AddTarget(ctx context.Context, req AddTargetRequest) (*models.Target, error) {
	if req.Name == "" || req.Typestr == "" {
		return nil, fmt.Errorf("%w: target name and typestr are required", ErrInvalidArgument)
	}
	target := models.NewTarget(req.Name, req.Typestr, req.Actions, models.NewAttributes(req.Attributes))

	var out *models.Target
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		_, exists := d.targets[target.Typestr][target.Name]
		d.mu.RUnlock()
		if exists {
			return fmt.Errorf("%w: target %s/%s", ErrAlreadyExists, target.Typestr, target.Name)
		}
		if err := d.store.SaveTarget(ctx, target); err != nil {
			return fmt.Errorf("persist target: %w", err)
		}
		d.mu.Lock()
		typed, ok := d.targets[target.Typestr]
		if !ok {
			typed = make(map[string]*models.Target)
			d.targets[target.Typestr] = typed
		}
		typed[target.Name] = target
		d.mu.Unlock()
		out = target.Clone()
		return nil
	})
	return out, err
}

// ModifyTarget applies action and attribute deltas to an existing target.
// Adds are applied before removes; an attribute key whose last value is
// removed is dropped entirely.
func (d *DataStore) ModifyTarget(ctx context.Context, req ModifyTargetRequest) (*models.Target, error) {
	if req.Name == "" || req.Typestr == "" {
		return nil, fmt.Errorf("%w: target name and typestr are required", ErrInvalidArgument)
	}
	name := strings.ToLower(req.Name)
	typestr := strings.ToLower(req.Typestr)

	var out *models.Target
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		existing, ok := d.targets[typestr][name]
		d.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: target %s/%s", ErrNotFound, typestr, name)
		}

		post := existing.Clone()
		for _, action := range req.AddActions {
			post.Actions.Add(strings.ToLower(action))
		}
		for _, action := range req.RemoveActions {
			post.Actions.Remove(strings.ToLower(action))
		}
		for key, values := range req.AddAttributes {
			post.Attributes.AddValues(key, values...)
		}
		for key, values := range req.RemoveAttributes {
			post.Attributes.RemoveValues(key, values...)
		}

		if err := d.store.SaveTarget(ctx, post); err != nil {
			return fmt.Errorf("persist target: %w", err)
		}
		d.mu.Lock()
		d.targets[typestr][name] = post
		d.mu.Unlock()
		out = post.Clone()
		return nil
	})
	return out, err
}

// RemoveTarget deletes a target and returns the removed record.
func (d *DataStore) RemoveTarget(ctx context.Context, typestr, name string) (*models.Target, error) {
	if name == "" || typestr == "" {
		return nil, fmt.Errorf("%w: target name and typestr are required", ErrInvalidArgument)
	}
	name = strings.ToLower(name)
	typestr = strings.ToLower(typestr)

	var out *models.Target
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		existing, ok := d.targets[typestr][name]
		d.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: target %s/%s", ErrNotFound, typestr, name)
		}
		if err := d.store.RemoveTarget(ctx, typestr, name); err != nil {
			return fmt.Errorf("remove target: %w", err)
		}
		d.mu.Lock()
		delete(d.targets[typestr], name)
		d.mu.Unlock()
		out = existing.Clone()
		return nil
	})
	return out, err
}

// GetTargets lists targets matching the optional name and typestr filters.
func (d *DataStore) GetTargets(ctx context.Context, req GetTargetsRequest) ([]*models.Target, error) {
	name := strings.ToLower(req.Name)
	typestr := strings.ToLower(req.Typestr)

	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*models.Target
	for ty, byName := range d.targets {
		if typestr != "" && ty != typestr {
			continue
		}
		for n, t := range byName {
			if name != "" && n != name {
				continue
			}
			out = append(out, t.Clone())
		}
	}
	return out, nil
}
