// Package storage defines the persistence contract the datastore depends
// on, and its nil, file, and etcd implementations.
package storage

import (
	"context"

	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

// Storage persists the policy graph. Load methods are called once at
// startup and return the complete snapshot; Save/Remove must only return
// once the backend has acknowledged durability.
type Storage interface {
	// LoadTargets returns all targets keyed by typestr then name.
	LoadTargets(ctx context.Context) (map[string]map[string]*models.Target, error)
	SaveTarget(ctx context.Context, target *models.Target) error
	RemoveTarget(ctx context.Context, typestr, name string) error

	// LoadActors returns all actors keyed by typestr then name.
	LoadActors(ctx context.Context) (map[string]map[string]*models.Actor, error)
	SaveActor(ctx context.Context, actor *models.Actor) error
	RemoveActor(ctx context.Context, typestr, name string) error

	LoadRoles(ctx context.Context) (map[string]*models.Role, error)
	SaveRole(ctx context.Context, role *models.Role) error
	RemoveRole(ctx context.Context, name string) error

	LoadGroups(ctx context.Context) (map[string]*models.Group, error)
	SaveGroup(ctx context.Context, group *models.Group) error
	RemoveGroup(ctx context.Context, name string) error

	LoadPolicies(ctx context.Context) (map[string]*policy.Rule, error)
	SavePolicy(ctx context.Context, rule *policy.Rule) error
	RemovePolicy(ctx context.Context, name string) error

	// Updates returns the backend change stream, or nil when the backend
	// is not replicated. Deliveries are at-least-once; consumers must be
	// idempotent against re-receipt.
	Updates() <-chan BackendUpdate

	// Close releases backend resources and stops the change stream.
	Close() error
}
