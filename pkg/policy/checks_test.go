package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gatehouse/gatehouse/pkg/models"
)

func TestStringCheck(t *testing.T) {
	oneOf := &StringCheck{Op: StringOneOf, Values: []string{"a", "b"}}
	assert.True(t, oneOf.Check("a"))
	assert.False(t, oneOf.Check("c"))

	notOneOf := &StringCheck{Op: StringNotOneOf, Values: []string{"a", "b"}}
	assert.False(t, notOneOf.Check("a"))
	assert.True(t, notOneOf.Check("c"))

	// Empty value lists: one_of never matches, not_one_of always matches.
	assert.False(t, (&StringCheck{Op: StringOneOf}).Check("anything"))
	assert.True(t, (&StringCheck{Op: StringNotOneOf}).Check("anything"))
}

func TestKvCheck(t *testing.T) {
	attrs := models.NewAttributes(map[string][]string{"org": {"eng", "infra"}})

	has := &KvCheck{Op: KvHas, Key: "org", Values: []string{"eng"}}
	assert.True(t, has.Check(attrs))

	hasMiss := &KvCheck{Op: KvHas, Key: "org", Values: []string{"sales"}}
	assert.False(t, hasMiss.Check(attrs))

	hasAbsent := &KvCheck{Op: KvHas, Key: "region", Values: []string{"eu"}}
	assert.False(t, hasAbsent.Check(attrs))

	hasNot := &KvCheck{Op: KvHasNot, Key: "org", Values: []string{"sales"}}
	assert.True(t, hasNot.Check(attrs))

	hasNotHit := &KvCheck{Op: KvHasNot, Key: "org", Values: []string{"eng"}}
	assert.False(t, hasNotHit.Check(attrs))

	hasNotAbsent := &KvCheck{Op: KvHasNot, Key: "region", Values: []string{"eu"}}
	assert.True(t, hasNotAbsent.Check(attrs))
}

func TestNumberCheck(t *testing.T) {
	assert.True(t, (&NumberCheck{Op: NumberEquals, Value: 5}).Check(5))
	assert.False(t, (&NumberCheck{Op: NumberEquals, Value: 5}).Check(6))
	assert.True(t, (&NumberCheck{Op: NumberLessThan, Value: 5}).Check(4))
	assert.False(t, (&NumberCheck{Op: NumberLessThan, Value: 5}).Check(5))
	assert.True(t, (&NumberCheck{Op: NumberMoreThan, Value: 5}).Check(6))
	assert.False(t, (&NumberCheck{Op: NumberMoreThan, Value: 5}).Check(5))
}

func TestActorCheck(t *testing.T) {
	actor := models.NewActor("kaitlyn", "user", models.NewAttributes(map[string][]string{
		"org": {"eng"},
	}))

	match := &ActorCheck{
		Name:       &StringCheck{Op: StringOneOf, Values: []string{"kaitlyn"}},
		Typestr:    &StringCheck{Op: StringOneOf, Values: []string{"user"}},
		Attributes: []KvCheck{{Op: KvHas, Key: "org", Values: []string{"eng"}}},
	}
	assert.True(t, match.Check(actor))

	wrongName := &ActorCheck{Name: &StringCheck{Op: StringOneOf, Values: []string{"bob"}}}
	assert.False(t, wrongName.Check(actor))

	// A nil composite field matches everything, so the empty check passes.
	assert.True(t, (&ActorCheck{}).Check(actor))
}

func TestActorCheckBucket(t *testing.T) {
	actor := models.NewActor("kaitlyn", "user", nil)
	bucket := actor.Bucket()

	hit := &ActorCheck{Bucket: &NumberCheck{Op: NumberEquals, Value: bucket}}
	assert.True(t, hit.Check(actor))

	miss := &ActorCheck{Bucket: &NumberCheck{Op: NumberEquals, Value: (bucket + 1) % models.BucketCount}}
	assert.False(t, miss.Check(actor))
}

func TestTargetCheck(t *testing.T) {
	targetAttrs := models.NewAttributes(map[string][]string{
		"env":  {"prod"},
		"team": {"data"},
	})

	check := &TargetCheck{
		Name:    &StringCheck{Op: StringOneOf, Values: []string{"bree"}},
		Typestr: &StringCheck{Op: StringOneOf, Values: []string{"db"}},
		Action:  &StringCheck{Op: StringOneOf, Values: []string{"query"}},
	}
	assert.True(t, check.Check("bree", "db", targetAttrs, "query", nil, nil))
	assert.False(t, check.Check("bree", "db", targetAttrs, "drop", nil, nil))
	assert.False(t, check.Check("other", "db", targetAttrs, "query", nil, nil))
}

func TestTargetCheckMatchInActor(t *testing.T) {
	targetAttrs := models.NewAttributes(map[string][]string{"team": {"data"}})

	check := &TargetCheck{MatchInActor: []string{"team"}}

	sameTeam := models.NewAttributes(map[string][]string{"team": {"data", "infra"}})
	assert.True(t, check.Check("bree", "db", targetAttrs, "", sameTeam, nil))

	otherTeam := models.NewAttributes(map[string][]string{"team": {"web"}})
	assert.False(t, check.Check("bree", "db", targetAttrs, "", otherTeam, nil))

	// The key must be present on both sides.
	assert.False(t, check.Check("bree", "db", targetAttrs, "", models.Attributes{}, nil))
	assert.False(t, check.Check("bree", "db", models.Attributes{}, "", sameTeam, nil))
}

func TestTargetCheckMatchInEnv(t *testing.T) {
	targetAttrs := models.NewAttributes(map[string][]string{"env": {"prod"}})

	check := &TargetCheck{MatchInEnv: []string{"env"}}

	prodEnv := models.NewAttributes(map[string][]string{"env": {"prod"}})
	assert.True(t, check.Check("bree", "db", targetAttrs, "", nil, prodEnv))

	stagingEnv := models.NewAttributes(map[string][]string{"env": {"staging"}})
	assert.False(t, check.Check("bree", "db", targetAttrs, "", nil, stagingEnv))
}
