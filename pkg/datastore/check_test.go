package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

func addRule(t *testing.T, d *DataStore, rule *policy.Rule) {
	t.Helper()
	_, err := d.AddPolicy(context.Background(), rule)
	require.NoError(t, err)
}

func TestCheckDefaultDeny(t *testing.T) {
	d := newTestStore(t)

	decision, err := d.Check(context.Background(), CheckRequest{
		ActorName:     "kaitlyn",
		ActorTypestr:  "user",
		TargetName:    "db2",
		TargetTypestr: "database",
		TargetAction:  "read",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Deny, decision)
}

func TestCheckDenyWins(t *testing.T) {
	d := newTestStore(t)
	ctx := context.Background()

	addRule(t, d, &policy.Rule{Name: "allow-everyone", Decision: policy.Allow})
	addRule(t, d, &policy.Rule{
		Name: "deny-banned",
		ActorCheck: &policy.ActorCheck{
			Attributes: []policy.KvCheck{{Op: policy.KvHas, Key: "role", Values: []string{"banned"}}},
		},
		Decision: policy.Deny,
	})

	decision, err := d.Check(ctx, CheckRequest{
		ActorName:       "mallory",
		ActorTypestr:    "user",
		ActorAttributes: map[string][]string{"role": {"banned"}},
		TargetName:      "db2",
		TargetTypestr:   "database",
		TargetAction:    "read",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Deny, decision)

	decision, err = d.Check(ctx, CheckRequest{
		ActorName:       "kaitlyn",
		ActorTypestr:    "user",
		ActorAttributes: map[string][]string{"role": {"user"}},
		TargetName:      "db2",
		TargetTypestr:   "database",
		TargetAction:    "read",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Allow, decision)
}

func TestCheckMatchInActor(t *testing.T) {
	d := newTestStore(t)
	ctx := context.Background()

	_, err := d.AddTarget(ctx, AddTargetRequest{
		Name:       "bree",
		Typestr:    "db",
		Attributes: map[string][]string{"env": {"prod"}},
	})
	require.NoError(t, err)

	addRule(t, d, &policy.Rule{
		Name: "same-env",
		TargetCheck: &policy.TargetCheck{
			MatchInActor: []string{"env"},
		},
		Decision: policy.Allow,
	})

	decision, err := d.Check(ctx, CheckRequest{
		ActorName:       "kaitlyn",
		ActorTypestr:    "user",
		ActorAttributes: map[string][]string{"env": {"prod"}},
		TargetName:      "bree",
		TargetTypestr:   "db",
		TargetAction:    "read",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Allow, decision)

	decision, err = d.Check(ctx, CheckRequest{
		ActorName:       "kaitlyn",
		ActorTypestr:    "user",
		ActorAttributes: map[string][]string{"env": {"dev"}},
		TargetName:      "bree",
		TargetTypestr:   "db",
		TargetAction:    "read",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Deny, decision)
}

func TestCheckUsesRegisteredActorAttributes(t *testing.T) {
	d := newTestStore(t)
	ctx := context.Background()

	_, err := d.AddActor(ctx, AddActorRequest{
		Name:       "kaitlyn",
		Typestr:    "user",
		Attributes: map[string][]string{"clearance": {"secret"}},
	})
	require.NoError(t, err)

	addRule(t, d, &policy.Rule{
		Name: "cleared",
		ActorCheck: &policy.ActorCheck{
			Attributes: []policy.KvCheck{{Op: policy.KvHas, Key: "clearance", Values: []string{"secret"}}},
		},
		Decision: policy.Allow,
	})

	// The caller supplies no clearance; the registered record does.
	decision, err := d.Check(ctx, CheckRequest{
		ActorName:     "kaitlyn",
		ActorTypestr:  "user",
		TargetName:    "db2",
		TargetTypestr: "database",
		TargetAction:  "read",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Allow, decision)
}

func TestCheckUsesGroupDerivedAttributes(t *testing.T) {
	d := newTestStore(t)
	ctx := context.Background()

	_, err := d.AddRole(ctx, AddRoleRequest{Name: "admin"})
	require.NoError(t, err)
	_, err = d.AddGroup(ctx, AddGroupRequest{
		Name:    "administrators",
		Members: []models.GroupMember{{Name: "kaitlyn", Typestr: "user"}},
		Roles:   []string{"admin"},
	})
	require.NoError(t, err)

	addRule(t, d, &policy.Rule{
		Name: "admins-allowed",
		ActorCheck: &policy.ActorCheck{
			Attributes: []policy.KvCheck{{Op: policy.KvHas, Key: AttrHasRole, Values: []string{"admin"}}},
		},
		Decision: policy.Allow,
	})

	decision, err := d.Check(ctx, CheckRequest{
		ActorName:     "kaitlyn",
		ActorTypestr:  "user",
		TargetName:    "db2",
		TargetTypestr: "database",
		TargetAction:  "write",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Allow, decision)

	decision, err = d.Check(ctx, CheckRequest{
		ActorName:     "mallory",
		ActorTypestr:  "user",
		TargetName:    "db2",
		TargetTypestr: "database",
		TargetAction:  "write",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Deny, decision)
}

func TestCheckEnvAttributes(t *testing.T) {
	d := newTestStore(t)
	ctx := context.Background()

	addRule(t, d, &policy.Rule{
		Name: "office-hours",
		EnvAttributes: []policy.KvCheck{
			{Op: policy.KvHas, Key: "shift", Values: []string{"day"}},
		},
		Decision: policy.Allow,
	})

	decision, err := d.Check(ctx, CheckRequest{
		ActorName:     "kaitlyn",
		ActorTypestr:  "user",
		EnvAttributes: map[string][]string{"shift": {"day"}},
		TargetName:    "db2",
		TargetTypestr: "database",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Allow, decision)

	decision, err = d.Check(ctx, CheckRequest{
		ActorName:     "kaitlyn",
		ActorTypestr:  "user",
		EnvAttributes: map[string][]string{"shift": {"night"}},
		TargetName:    "db2",
		TargetTypestr: "database",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.Deny, decision)
}

func TestCheckRequiresIdentifiers(t *testing.T) {
	d := newTestStore(t)

	_, err := d.Check(context.Background(), CheckRequest{
		ActorName: "kaitlyn", ActorTypestr: "user",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = d.Check(context.Background(), CheckRequest{
		TargetName: "db2", TargetTypestr: "database",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBucketStability(t *testing.T) {
	a := models.NewActor("kaitlyn", "user", nil)
	b := models.NewActor("Kaitlyn", "User", nil)

	bucket := a.Bucket()
	assert.GreaterOrEqual(t, bucket, int32(0))
	assert.Less(t, bucket, int32(models.BucketCount))
	assert.Equal(t, bucket, b.Bucket())

	for i := 0; i < 100; i++ {
		assert.Equal(t, bucket, a.Bucket())
	}
}
