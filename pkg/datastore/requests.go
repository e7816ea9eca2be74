package datastore

import (
	"github.com/gatehouse/gatehouse/pkg/models"
)

// AddTargetRequest registers a new target.
type AddTargetRequest struct {
	Name       string
	Typestr    string
	Actions    []string
	Attributes map[string][]string
}

// ModifyTargetRequest mutates an existing target. Adds are applied before
// removes.
type ModifyTargetRequest struct {
	Name             string
	Typestr          string
	AddActions       []string
	RemoveActions    []string
	AddAttributes    map[string][]string
	RemoveAttributes map[string][]string
}

// GetTargetsRequest filters the target listing. Empty fields match all.
type GetTargetsRequest struct {
	Name    string
	Typestr string
}

// AddActorRequest registers a new actor.
type AddActorRequest struct {
	Name       string
	Typestr    string
	Attributes map[string][]string
}

// ModifyActorRequest mutates an existing actor's attributes.
type ModifyActorRequest struct {
	Name             string
	Typestr          string
	AddAttributes    map[string][]string
	RemoveAttributes map[string][]string
}

// GetActorsRequest filters the actor listing. Empty fields match all.
type GetActorsRequest struct {
	Name    string
	Typestr string
}

// AddRoleRequest registers a new role.
type AddRoleRequest struct {
	Name        string
	Description string
}

// GetRolesRequest filters the role listing. An empty name matches all.
type GetRolesRequest struct {
	Name string
}

// AddGroupRequest registers a new group. Every role named must already
// exist.
type AddGroupRequest struct {
	Name        string
	Description string
	Members     []models.GroupMember
	Roles       []string
}

// ModifyGroupRequest mutates an existing group. Role adds and removes must
// reference existing roles; a non-nil Description replaces the stored one.
type ModifyGroupRequest struct {
	Name          string
	Description   *string
	AddMembers    []models.GroupMember
	RemoveMembers []models.GroupMember
	AddRoles      []string
	RemoveRoles   []string
}

// GetGroupsRequest filters the group listing. Filters are ANDed; the member
// filter requires both MemberName and MemberTypestr.
type GetGroupsRequest struct {
	Name          string
	MemberName    string
	MemberTypestr string
	Role          string
}

// GetPoliciesRequest filters the policy listing. The rule-matching filter is
// not supported and yields ErrUnimplemented when set.
type GetPoliciesRequest struct {
	Name     string
	Matching *CheckRequest
}

// CheckRequest asks for an access decision.
type CheckRequest struct {
	ActorName       string
	ActorTypestr    string
	ActorAttributes map[string][]string
	EnvAttributes   map[string][]string
	TargetName      string
	TargetTypestr   string
	TargetAction    string
}
