// Package policy holds the rule model and the predicate library the
// evaluator runs against check requests.
package policy

import (
	"github.com/gatehouse/gatehouse/pkg/models"
)

// StringOp selects the comparison a StringCheck performs.
type StringOp string

const (
	// StringOneOf passes when the value equals any of the listed values.
	StringOneOf StringOp = "one_of"
	// StringNotOneOf passes when the value equals none of the listed values.
	StringNotOneOf StringOp = "not_one_of"
)

// StringCheck compares a single string against a value list.
type StringCheck struct {
	Op     StringOp `json:"op"`
	Values []string `json:"values"`
}

// Check evaluates the string check. With an empty value list, one_of never
// matches and not_one_of always matches.
func (c *StringCheck) Check(val string) bool {
	for _, v := range c.Values {
		if v == val {
			return c.Op == StringOneOf
		}
	}
	return c.Op == StringNotOneOf
}

func (c *StringCheck) validate() error {
	switch c.Op {
	case StringOneOf, StringNotOneOf:
		return nil
	}
	return errUnknownOp("string check", string(c.Op))
}

// KvOp selects the comparison a KvCheck performs.
type KvOp string

const (
	// KvHas passes when the key is present and its values intersect.
	KvHas KvOp = "has"
	// KvHasNot passes when the key is absent or its values are disjoint.
	KvHasNot KvOp = "has_not"
)

// KvCheck tests a key in an attribute map against a value list.
type KvCheck struct {
	Op     KvOp     `json:"op"`
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Check evaluates the key-value check against the attribute map.
func (c *KvCheck) Check(attrs models.Attributes) bool {
	set, ok := attrs[c.Key]
	switch c.Op {
	case KvHas:
		return ok && set.Intersects(c.Values)
	case KvHasNot:
		return !ok || !set.Intersects(c.Values)
	}
	return false
}

func (c *KvCheck) validate() error {
	switch c.Op {
	case KvHas, KvHasNot:
		return nil
	}
	return errUnknownOp("kv check", string(c.Op))
}

// NumberOp selects the comparison a NumberCheck performs.
type NumberOp string

const (
	// NumberEquals passes on exact equality.
	NumberEquals NumberOp = "equals"
	// NumberLessThan passes on strict less-than.
	NumberLessThan NumberOp = "less_than"
	// NumberMoreThan passes on strict greater-than.
	NumberMoreThan NumberOp = "more_than"
)

// NumberCheck compares an integer against a fixed value.
type NumberCheck struct {
	Op    NumberOp `json:"op"`
	Value int32    `json:"value"`
}

// Check evaluates the number check.
func (c *NumberCheck) Check(num int32) bool {
	switch c.Op {
	case NumberEquals:
		return num == c.Value
	case NumberLessThan:
		return num < c.Value
	case NumberMoreThan:
		return num > c.Value
	}
	return false
}

func (c *NumberCheck) validate() error {
	switch c.Op {
	case NumberEquals, NumberLessThan, NumberMoreThan:
		return nil
	}
	return errUnknownOp("number check", string(c.Op))
}

// ActorCheck matches the expanded actor of a check request. A nil sub-check
// matches everything; attribute checks are AND-ed.
type ActorCheck struct {
	Name       *StringCheck `json:"name,omitempty"`
	Typestr    *StringCheck `json:"typestr,omitempty"`
	Attributes []KvCheck    `json:"attributes,omitempty"`
	Bucket     *NumberCheck `json:"bucket,omitempty"`
}

// Check evaluates the composite against the actor.
func (c *ActorCheck) Check(actor *models.Actor) bool {
	if c.Name != nil && !c.Name.Check(actor.Name) {
		return false
	}
	if c.Typestr != nil && !c.Typestr.Check(actor.Typestr) {
		return false
	}
	for i := range c.Attributes {
		if !c.Attributes[i].Check(actor.Attributes) {
			return false
		}
	}
	if c.Bucket != nil && !c.Bucket.Check(actor.Bucket()) {
		return false
	}
	return true
}

func (c *ActorCheck) validate() error {
	if c.Name != nil {
		if err := c.Name.validate(); err != nil {
			return err
		}
	}
	if c.Typestr != nil {
		if err := c.Typestr.validate(); err != nil {
			return err
		}
	}
	for i := range c.Attributes {
		if err := c.Attributes[i].validate(); err != nil {
			return err
		}
	}
	if c.Bucket != nil {
		if err := c.Bucket.validate(); err != nil {
			return err
		}
	}
	return nil
}

// TargetCheck matches the target half of a check request: the requested
// name/type/action, the registered target's attributes, and cross-matches
// between the target's attributes and the actor's or the environment's.
type TargetCheck struct {
	Name         *StringCheck `json:"name,omitempty"`
	Typestr      *StringCheck `json:"typestr,omitempty"`
	Attributes   []KvCheck    `json:"attributes,omitempty"`
	MatchInActor []string     `json:"match_in_actor,omitempty"`
	MatchInEnv   []string     `json:"match_in_env,omitempty"`
	Action       *StringCheck `json:"action,omitempty"`
}

// attrMatch requires the key to exist on both sides with intersecting
// value sets.
func attrMatch(key string, ours, theirs models.Attributes) bool {
	ourVals, ok := ours[key]
	if !ok {
		return false
	}
	theirVals, ok := theirs[key]
	if !ok {
		return false
	}
	return ourVals.IntersectsSet(theirVals)
}

// Check evaluates the composite. targetAttrs are the registered target's
// attributes (empty when the target is not registered).
func (c *TargetCheck) Check(
	targetName, targetType string,
	targetAttrs models.Attributes,
	targetAction string,
	actorAttrs models.Attributes,
	envAttrs models.Attributes,
) bool {
	if c.Name != nil && !c.Name.Check(targetName) {
		return false
	}
	if c.Typestr != nil && !c.Typestr.Check(targetType) {
		return false
	}
	for i := range c.Attributes {
		if !c.Attributes[i].Check(targetAttrs) {
			return false
		}
	}
	for _, key := range c.MatchInActor {
		if !attrMatch(key, targetAttrs, actorAttrs) {
			return false
		}
	}
	for _, key := range c.MatchInEnv {
		if !attrMatch(key, targetAttrs, envAttrs) {
			return false
		}
	}
	if c.Action != nil && !c.Action.Check(targetAction) {
		return false
	}
	return true
}

func (c *TargetCheck) validate() error {
	if c.Name != nil {
		if err := c.Name.validate(); err != nil {
			return err
		}
	}
	if c.Typestr != nil {
		if err := c.Typestr.validate(); err != nil {
			return err
		}
	}
	for i := range c.Attributes {
		if err := c.Attributes[i].validate(); err != nil {
			return err
		}
	}
	if c.Action != nil {
		if err := c.Action.validate(); err != nil {
			return err
		}
	}
	return nil
}
