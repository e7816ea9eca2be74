package datastore

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

// Check evaluates the policy rules against the request and returns ALLOW or
// DENY. No rule matching means DENY; a matching DENY short-circuits past any
// number of matching ALLOWs.
func (d *DataStore) Check(ctx context.Context, req CheckRequest) (policy.Decision, error) {
	if req.ActorName == "" || req.ActorTypestr == "" {
		return policy.Deny, fmt.Errorf("%w: actor name and typestr are required", ErrInvalidArgument)
	}
	if req.TargetName == "" || req.TargetTypestr == "" {
		return policy.Deny, fmt.Errorf("%w: target name and typestr are required", ErrInvalidArgument)
	}

	actor := models.NewActor(req.ActorName, req.ActorTypestr, nil)
	callerAttrs := models.NewAttributes(req.ActorAttributes)
	envAttrs := models.NewAttributes(req.EnvAttributes)
	targetName := strings.ToLower(req.TargetName)
	targetType := strings.ToLower(req.TargetTypestr)
	targetAction := strings.ToLower(req.TargetAction)

	d.mu.RLock()
	defer d.mu.RUnlock()

	// Expansion order: registered attributes, then caller-supplied, then
	// group-derived member-of and has-role.
	if registered, ok := d.actors[actor.Typestr][actor.Name]; ok {
		actor.Attributes.Union(registered.Attributes)
	}
	actor.Attributes.Union(callerAttrs)
	d.addGroupDerivedLocked(actor)

	targetAttrs := models.Attributes{}
	if target, ok := d.targets[targetType][targetName]; ok {
		targetAttrs = target.Attributes
	}

	decision := policy.Deny
	for _, rule := range d.policies {
		if rule.ActorCheck != nil && !rule.ActorCheck.Check(actor) {
			continue
		}
		envOK := true
		for i := range rule.EnvAttributes {
			if !rule.EnvAttributes[i].Check(envAttrs) {
				envOK = false
				break
			}
		}
		if !envOK {
			continue
		}
		if rule.TargetCheck != nil && !rule.TargetCheck.Check(
			targetName, targetType, targetAttrs, targetAction,
			actor.Attributes, envAttrs) {
			continue
		}
		decision = rule.Decision
		if decision == policy.Deny {
			return policy.Deny, nil
		}
	}
	return decision, nil
}
