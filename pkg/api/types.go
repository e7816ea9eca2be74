// Package api defines the wire types of the management and decision API.
// Attributes travel as plain key to value-list maps.
package api

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TargetPayload creates a target
type TargetPayload struct {
	Name       string              `json:"name" binding:"required"`
	Typestr    string              `json:"typestr" binding:"required"`
	Actions    []string            `json:"actions,omitempty"`
	Attributes map[string][]string `json:"attributes,omitempty"`
}

// TargetPatch mutates a target; adds apply before removes
type TargetPatch struct {
	Name             string              `json:"name" binding:"required"`
	Typestr          string              `json:"typestr" binding:"required"`
	AddActions       []string            `json:"add_actions,omitempty"`
	RemoveActions    []string            `json:"remove_actions,omitempty"`
	AddAttributes    map[string][]string `json:"add_attributes,omitempty"`
	RemoveAttributes map[string][]string `json:"remove_attributes,omitempty"`
}

// ActorPayload creates an actor
type ActorPayload struct {
	Name       string              `json:"name" binding:"required"`
	Typestr    string              `json:"typestr" binding:"required"`
	Attributes map[string][]string `json:"attributes,omitempty"`
}

// ActorPatch mutates an actor's attributes
type ActorPatch struct {
	Name             string              `json:"name" binding:"required"`
	Typestr          string              `json:"typestr" binding:"required"`
	AddAttributes    map[string][]string `json:"add_attributes,omitempty"`
	RemoveAttributes map[string][]string `json:"remove_attributes,omitempty"`
}

// RolePayload creates a role
type RolePayload struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"desc,omitempty"`
}

// GroupMemberPayload identifies one group member
type GroupMemberPayload struct {
	Name    string `json:"name" binding:"required"`
	Typestr string `json:"typestr" binding:"required"`
}

// GroupPayload creates a group
type GroupPayload struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"desc,omitempty"`
	Members     []GroupMemberPayload `json:"members,omitempty"`
	Roles       []string             `json:"roles,omitempty"`
}

// GroupPatch mutates a group; a present desc replaces the stored one
type GroupPatch struct {
	Name          string               `json:"name" binding:"required"`
	Description   *string              `json:"desc,omitempty"`
	AddMembers    []GroupMemberPayload `json:"add_members,omitempty"`
	RemoveMembers []GroupMemberPayload `json:"remove_members,omitempty"`
	AddRoles      []string             `json:"add_roles,omitempty"`
	RemoveRoles   []string             `json:"remove_roles,omitempty"`
}

// CheckActor is the subject half of a check request
type CheckActor struct {
	Name       string              `json:"name" binding:"required"`
	Typestr    string              `json:"typestr" binding:"required"`
	Attributes map[string][]string `json:"attributes,omitempty"`
}

// CheckTarget is the object half of a check request
type CheckTarget struct {
	Name    string `json:"name" binding:"required"`
	Typestr string `json:"typestr" binding:"required"`
	Action  string `json:"action,omitempty"`
}

// CheckPayload asks for an access decision
type CheckPayload struct {
	Actor         CheckActor          `json:"actor" binding:"required"`
	EnvAttributes map[string][]string `json:"env_attributes,omitempty"`
	Target        CheckTarget         `json:"target" binding:"required"`
}

// DecisionResponse carries the verdict of a check
type DecisionResponse struct {
	Decision string `json:"decision"`
}
