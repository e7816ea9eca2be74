package models

import (
	"fmt"
	"strings"
)

// Role is a named grant. Groups holds the names of every group that
// currently lists this role; it is a back-reference index maintained by the
// datastore and must stay consistent with the groups' forward references.
type Role struct {
	Name        string    `json:"name"`
	Description string    `json:"desc,omitempty"`
	Groups      StringSet `json:"groups"`
}

// NewRole creates a role with a normalized lowercase name and no group
// references.
func NewRole(name, description string) *Role {
	return &Role{
		Name:        strings.ToLower(name),
		Description: description,
		Groups:      NewStringSet(),
	}
}

// Clone returns a deep copy of the role.
func (r *Role) Clone() *Role {
	return &Role{
		Name:        r.Name,
		Description: r.Description,
		Groups:      r.Groups.Clone(),
	}
}

func (r *Role) String() string {
	return fmt.Sprintf("role[%s] (in %d groups)", r.Name, len(r.Groups))
}
