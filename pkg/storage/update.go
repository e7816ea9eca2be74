package storage

import (
	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

// UpdateOp says whether a backend change put or deleted a record.
type UpdateOp string

const (
	// OpPut carries the full new record.
	OpPut UpdateOp = "put"
	// OpDelete carries only the record key.
	OpDelete UpdateOp = "delete"
)

// Kind names an entity kind in backend keys and change notifications.
type Kind string

const (
	KindTarget Kind = "targets"
	KindActor  Kind = "actors"
	KindRole   Kind = "roles"
	KindGroup  Kind = "groups"
	KindPolicy Kind = "policies"
)

// BackendUpdate is one change notification from a replicated backend.
// Exactly one payload pointer is set for OpPut, matching Kind; for
// OpDelete only Typestr/Name identify the record (Typestr is empty for
// roles, groups, and policies).
type BackendUpdate struct {
	Op   UpdateOp
	Kind Kind

	Typestr string
	Name    string

	Target *models.Target
	Actor  *models.Actor
	Role   *models.Role
	Group  *models.Group
	Policy *policy.Rule
}
