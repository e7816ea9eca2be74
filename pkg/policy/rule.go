package policy

import (
	"errors"
	"fmt"
	"strings"
)

// Decision is the outcome a matching rule contributes.
type Decision string

const (
	// Allow grants the request.
	Allow Decision = "ALLOW"
	// Deny refuses the request. A matching DENY overrides any ALLOW.
	Deny Decision = "DENY"
)

// ErrInvalidRule reports a structurally malformed policy rule.
var ErrInvalidRule = errors.New("invalid policy rule")

func errUnknownOp(kind, op string) error {
	return fmt.Errorf("%w: unknown %s op %q", ErrInvalidRule, kind, op)
}

// Rule is one decision unit. Nil sub-checks match everything; the
// environment checks are AND-ed.
type Rule struct {
	Name          string       `json:"name"`
	Description   string       `json:"desc,omitempty"`
	ActorCheck    *ActorCheck  `json:"actor_check,omitempty"`
	EnvAttributes []KvCheck    `json:"env_attributes,omitempty"`
	TargetCheck   *TargetCheck `json:"target_check,omitempty"`
	Decision      Decision     `json:"decision"`
}

// Normalize lowercases the rule name in place and returns the rule.
func (r *Rule) Normalize() *Rule {
	r.Name = strings.ToLower(r.Name)
	return r
}

// Validate checks structural well-formedness: non-empty name, known
// decision, known ops on every sub-check.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRule)
	}
	if r.Decision != Allow && r.Decision != Deny {
		return fmt.Errorf("%w: unknown decision %q", ErrInvalidRule, r.Decision)
	}
	if r.ActorCheck != nil {
		if err := r.ActorCheck.validate(); err != nil {
			return err
		}
	}
	for i := range r.EnvAttributes {
		if err := r.EnvAttributes[i].validate(); err != nil {
			return err
		}
	}
	if r.TargetCheck != nil {
		if err := r.TargetCheck.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	c := *r
	if r.ActorCheck != nil {
		ac := *r.ActorCheck
		ac.Attributes = append([]KvCheck(nil), r.ActorCheck.Attributes...)
		c.ActorCheck = &ac
	}
	c.EnvAttributes = append([]KvCheck(nil), r.EnvAttributes...)
	if r.TargetCheck != nil {
		tc := *r.TargetCheck
		tc.Attributes = append([]KvCheck(nil), r.TargetCheck.Attributes...)
		tc.MatchInActor = append([]string(nil), r.TargetCheck.MatchInActor...)
		tc.MatchInEnv = append([]string(nil), r.TargetCheck.MatchInEnv...)
		c.TargetCheck = &tc
	}
	return &c
}

func (r *Rule) String() string {
	return fmt.Sprintf("rule[%s] => %s", r.Name, r.Decision)
}
