package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/pkg/api"
)

func TestParseAttrs(t *testing.T) {
	attrs, err := parseAttrs([]string{"org:eng,infra", "region:eu"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"org":    {"eng", "infra"},
		"region": {"eu"},
	}, attrs)
}

func TestParseAttrsMergesRepeatedKeys(t *testing.T) {
	attrs, err := parseAttrs([]string{"org:eng", "org:infra"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"org": {"eng", "infra"}}, attrs)
}

func TestParseAttrsRejectsMalformed(t *testing.T) {
	_, err := parseAttrs([]string{"no-colon"})
	assert.Error(t, err)

	_, err = parseAttrs([]string{"key:"})
	assert.Error(t, err)

	_, err = parseAttrs([]string{":values"})
	assert.Error(t, err)
}

func TestParseAttrsEmpty(t *testing.T) {
	attrs, err := parseAttrs(nil)
	require.NoError(t, err)
	assert.Nil(t, attrs)
}

func TestParseMembers(t *testing.T) {
	members, err := parseMembers([]string{"kaitlyn:user", "ci:service"})
	require.NoError(t, err)
	assert.Equal(t, []api.GroupMemberPayload{
		{Name: "kaitlyn", Typestr: "user"},
		{Name: "ci", Typestr: "service"},
	}, members)
}

func TestParseMembersRejectsMalformed(t *testing.T) {
	_, err := parseMembers([]string{"just-a-name"})
	assert.Error(t, err)
}
