// Package datastore owns the in-memory policy graph: targets, actors,
// roles, groups, and policy rules. All mutations funnel through a single
// consumer goroutine, so at most one write is in flight at a time; reads
// run concurrently under a read lock. Every write persists to the storage
// backend before it commits to memory.
package datastore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/metrics"
	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
	"github.com/gatehouse/gatehouse/pkg/storage"
)

const inboxSize = 64

// DataStore is the single owner of the policy graph.
type DataStore struct {
	store storage.Storage
	log   *zap.Logger

	// mu guards the five maps. The consumer goroutine is the only writer;
	// it validates and clones under the read lock, persists with no lock
	// held, and commits under the write lock.
	mu       sync.RWMutex
	targets  map[string]map[string]*models.Target
	actors   map[string]map[string]*models.Actor
	roles    map[string]*models.Role
	groups   map[string]*models.Group
	policies map[string]*policy.Rule

	inbox chan func()
}

// New loads the full snapshot from storage and starts the write consumer
// and, for replicated backends, the update pump. A load failure is fatal.
// The goroutines stop when ctx is cancelled.
func New(ctx context.Context, store storage.Storage, log *zap.Logger) (*DataStore, error) {
	targets, err := store.LoadTargets(ctx)
	if err != nil {
		return nil, loadError("targets", err)
	}
	actors, err := store.LoadActors(ctx)
	if err != nil {
		return nil, loadError("actors", err)
	}
	roles, err := store.LoadRoles(ctx)
	if err != nil {
		return nil, loadError("roles", err)
	}
	groups, err := store.LoadGroups(ctx)
	if err != nil {
		return nil, loadError("groups", err)
	}
	policies, err := store.LoadPolicies(ctx)
	if err != nil {
		return nil, loadError("policies", err)
	}

	d := &DataStore{
		store:    store,
		log:      log,
		targets:  targets,
		actors:   actors,
		roles:    roles,
		groups:   groups,
		policies: policies,
		inbox:    make(chan func(), inboxSize),
	}

	log.Info("datastore loaded",
		zap.Int("targets", d.countKeyed(targets)),
		zap.Int("actors", d.countActors(actors)),
		zap.Int("roles", len(roles)),
		zap.Int("groups", len(groups)),
		zap.Int("policies", len(policies)))

	d.updateRecordGauges()

	go d.consume(ctx)
	if updates := store.Updates(); updates != nil {
		go d.pumpUpdates(ctx, updates)
	}
	return d, nil
}

// loadError distinguishes an unreachable backend from a corrupt or failed
// load so startup failures name the actual problem.
func loadError(kind string, err error) error {
	if storage.IsUnavailableError(err) {
		return fmt.Errorf("storage backend unavailable loading %s: %w", kind, err)
	}
	return fmt.Errorf("load %s: %w", kind, err)
}

func (d *DataStore) countKeyed(m map[string]map[string]*models.Target) int {
	n := 0
	for _, byName := range m {
		n += len(byName)
	}
	return n
}

func (d *DataStore) countActors(m map[string]map[string]*models.Actor) int {
	n := 0
	for _, byName := range m {
		n += len(byName)
	}
	return n
}

// consume executes queued writes one at a time. Record gauges are
// refreshed after every write since nothing else changes the counts.
func (d *DataStore) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-d.inbox:
			op()
			d.updateRecordGauges()
		}
	}
}

func (d *DataStore) updateRecordGauges() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	metrics.RecordsTotal.WithLabelValues("targets").Set(float64(d.countKeyed(d.targets)))
	metrics.RecordsTotal.WithLabelValues("actors").Set(float64(d.countActors(d.actors)))
	metrics.RecordsTotal.WithLabelValues("roles").Set(float64(len(d.roles)))
	metrics.RecordsTotal.WithLabelValues("groups").Set(float64(len(d.groups)))
	metrics.RecordsTotal.WithLabelValues("policies").Set(float64(len(d.policies)))
}

// submit queues a write and waits for it to finish. The reply channel is
// buffered so an abandoned caller never blocks the consumer; the write may
// still complete and commit after the caller's deadline fires.
func (d *DataStore) submit(ctx context.Context, op func() error) error {
	reply := make(chan error, 1)
	select {
	case d.inbox <- func() { reply <- op() }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
