package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleValidate(t *testing.T) {
	valid := &Rule{
		Name:     "allow-all-users",
		Decision: Allow,
		ActorCheck: &ActorCheck{
			Typestr: &StringCheck{Op: StringOneOf, Values: []string{"user"}},
		},
	}
	require.NoError(t, valid.Validate())

	noName := &Rule{Decision: Allow}
	assert.ErrorIs(t, noName.Validate(), ErrInvalidRule)

	badDecision := &Rule{Name: "r", Decision: "MAYBE"}
	assert.ErrorIs(t, badDecision.Validate(), ErrInvalidRule)

	badOp := &Rule{
		Name:     "r",
		Decision: Deny,
		EnvAttributes: []KvCheck{
			{Op: "contains", Key: "env", Values: []string{"prod"}},
		},
	}
	assert.ErrorIs(t, badOp.Validate(), ErrInvalidRule)

	badNested := &Rule{
		Name:     "r",
		Decision: Deny,
		TargetCheck: &TargetCheck{
			Action: &StringCheck{Op: "equals", Values: []string{"query"}},
		},
	}
	assert.ErrorIs(t, badNested.Validate(), ErrInvalidRule)
}

func TestRuleNormalize(t *testing.T) {
	r := &Rule{Name: "Allow-DB", Decision: Allow}
	r.Normalize()
	assert.Equal(t, "allow-db", r.Name)
}

func TestRuleCloneIsDeep(t *testing.T) {
	r := &Rule{
		Name:     "r",
		Decision: Allow,
		ActorCheck: &ActorCheck{
			Attributes: []KvCheck{{Op: KvHas, Key: "org", Values: []string{"eng"}}},
		},
		EnvAttributes: []KvCheck{{Op: KvHas, Key: "env", Values: []string{"prod"}}},
		TargetCheck: &TargetCheck{
			MatchInActor: []string{"team"},
		},
	}

	c := r.Clone()
	c.ActorCheck.Attributes[0].Key = "changed"
	c.EnvAttributes[0].Key = "changed"
	c.TargetCheck.MatchInActor[0] = "changed"

	assert.Equal(t, "org", r.ActorCheck.Attributes[0].Key)
	assert.Equal(t, "env", r.EnvAttributes[0].Key)
	assert.Equal(t, "team", r.TargetCheck.MatchInActor[0])
}
