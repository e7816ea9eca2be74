package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

func TestMemoryStorageImplementsStorage(t *testing.T) {
	var _ Storage = NewMemoryStorage()
	var _ Storage = &FileStorage{}
	var _ Storage = &EtcdStorage{}
}

func TestMemoryStorageActorRoundTrip(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	actor := models.NewActor("kaitlyn", "user",
		models.NewAttributes(map[string][]string{"org": {"eng"}}))
	require.NoError(t, m.SaveActor(ctx, actor))

	loaded, err := m.LoadActors(ctx)
	require.NoError(t, err)
	require.Contains(t, loaded, "user")
	got := loaded["user"]["kaitlyn"]
	require.NotNil(t, got)
	assert.True(t, got.Attributes["org"].Has("eng"))

	require.NoError(t, m.RemoveActor(ctx, "user", "kaitlyn"))
	loaded, err = m.LoadActors(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded["user"])
}

func TestMemoryStorageRemoveMissingIsLenient(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	assert.NoError(t, m.RemoveTarget(ctx, "database", "absent"))
	assert.NoError(t, m.RemoveRole(ctx, "absent"))
	assert.NoError(t, m.RemoveGroup(ctx, "absent"))
	assert.NoError(t, m.RemovePolicy(ctx, "absent"))
}

func TestMemoryStorageLoadsAreCopies(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	rule := &policy.Rule{Name: "allow-all", Decision: policy.Allow}
	require.NoError(t, m.SavePolicy(ctx, rule))

	first, err := m.LoadPolicies(ctx)
	require.NoError(t, err)
	first["allow-all"].Decision = policy.Deny

	second, err := m.LoadPolicies(ctx)
	require.NoError(t, err)
	assert.Equal(t, policy.Allow, second["allow-all"].Decision)
}

func TestMemoryStorageSavesAreCopies(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	group := models.NewGroup("ops", "", nil, models.NewStringSet("admin"))
	require.NoError(t, m.SaveGroup(ctx, group))
	group.Roles.Add("root")

	loaded, err := m.LoadGroups(ctx)
	require.NoError(t, err)
	assert.False(t, loaded["ops"].Roles.Has("root"))
}
