package datastore

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatehouse/gatehouse/pkg/policy"
)

func validateRule(rule *policy.Rule) error {
	if rule == nil {
		return fmt.Errorf("%w: policy rule body is required", ErrInvalidArgument)
	}
	rule.Normalize()
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

// AddPolicy registers a new policy rule and returns the stored record.
func (d *DataStore) AddPolicy(ctx context.Context, rule *policy.Rule) (*policy.Rule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	rule = rule.Clone()

	var out *policy.Rule
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		_, exists := d.policies[rule.Name]
		d.mu.RUnlock()
		if exists {
			return fmt.Errorf("%w: policy %s", ErrAlreadyExists, rule.Name)
		}
		if err := d.store.SavePolicy(ctx, rule); err != nil {
			return fmt.Errorf("persist policy: %w", err)
		}
		d.mu.Lock()
		d.policies[rule.Name] = rule
		d.mu.Unlock()
		out = rule.Clone()
		return nil
	})
	return out, err
}

// ModifyPolicy replaces an existing rule wholesale. Policy records are
// immutable values; there is no field-level delta.
func (d *DataStore) ModifyPolicy(ctx context.Context, rule *policy.Rule) (*policy.Rule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	rule = rule.Clone()

	var out *policy.Rule
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		_, exists := d.policies[rule.Name]
		d.mu.RUnlock()
		if !exists {
			return fmt.Errorf("%w: policy %s", ErrNotFound, rule.Name)
		}
		if err := d.store.SavePolicy(ctx, rule); err != nil {
			return fmt.Errorf("persist policy: %w", err)
		}
		d.mu.Lock()
		d.policies[rule.Name] = rule
		d.mu.Unlock()
		out = rule.Clone()
		return nil
	})
	return out, err
}

// RemovePolicy deletes a policy rule and returns the removed record.
func (d *DataStore) RemovePolicy(ctx context.Context, name string) (*policy.Rule, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: policy name is required", ErrInvalidArgument)
	}
	name = strings.ToLower(name)

	var out *policy.Rule
	err := d.submit(ctx, func() error {
		d.mu.RLock()
		existing, ok := d.policies[name]
		d.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: policy %s", ErrNotFound, name)
		}
		if err := d.store.RemovePolicy(ctx, name); err != nil {
			return fmt.Errorf("remove policy: %w", err)
		}
		d.mu.Lock()
		delete(d.policies, name)
		d.mu.Unlock()
		out = existing.Clone()
		return nil
	})
	return out, err
}

// GetPolicies lists policy rules, optionally filtered by exact name. The
// rule-matching filter is not supported.
func (d *DataStore) GetPolicies(ctx context.Context, req GetPoliciesRequest) ([]*policy.Rule, error) {
	if req.Matching != nil {
		return nil, fmt.Errorf("%w: rule-matching policy filter", ErrUnimplemented)
	}
	name := strings.ToLower(req.Name)

	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*policy.Rule
	for n, r := range d.policies {
		if name != "" && n != name {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}
