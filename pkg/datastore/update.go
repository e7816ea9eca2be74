package datastore

import (
	"context"

	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/metrics"
	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/storage"
)

// pumpUpdates feeds backend change notifications into the write inbox so
// they serialize with local mutations.
func (d *DataStore) pumpUpdates(ctx context.Context, updates <-chan storage.BackendUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			select {
			case d.inbox <- func() { d.applyUpdate(update) }:
			case <-ctx.Done():
				return
			}
		}
	}
}

// applyUpdate commits one backend-originated change to memory. Updates are
// authoritative and are never re-persisted; applying the same update twice
// leaves the state unchanged.
func (d *DataStore) applyUpdate(update storage.BackendUpdate) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch update.Kind {
	case storage.KindTarget:
		if update.Op == storage.OpDelete {
			if typed, ok := d.targets[update.Typestr]; ok {
				delete(typed, update.Name)
			}
			break
		}
		if update.Target == nil {
			d.log.Error("backend update missing target payload",
				zap.String("typestr", update.Typestr), zap.String("name", update.Name))
			return
		}
		typed, ok := d.targets[update.Target.Typestr]
		if !ok {
			typed = make(map[string]*models.Target)
			d.targets[update.Target.Typestr] = typed
		}
		typed[update.Target.Name] = update.Target.Clone()

	case storage.KindActor:
		if update.Op == storage.OpDelete {
			if typed, ok := d.actors[update.Typestr]; ok {
				delete(typed, update.Name)
			}
			break
		}
		if update.Actor == nil {
			d.log.Error("backend update missing actor payload",
				zap.String("typestr", update.Typestr), zap.String("name", update.Name))
			return
		}
		typed, ok := d.actors[update.Actor.Typestr]
		if !ok {
			typed = make(map[string]*models.Actor)
			d.actors[update.Actor.Typestr] = typed
		}
		typed[update.Actor.Name] = update.Actor.Clone()

	case storage.KindRole:
		if update.Op == storage.OpDelete {
			delete(d.roles, update.Name)
			break
		}
		if update.Role == nil {
			d.log.Error("backend update missing role payload", zap.String("name", update.Name))
			return
		}
		d.roles[update.Role.Name] = update.Role.Clone()

	case storage.KindGroup:
		if update.Op == storage.OpDelete {
			delete(d.groups, update.Name)
			break
		}
		if update.Group == nil {
			d.log.Error("backend update missing group payload", zap.String("name", update.Name))
			return
		}
		d.groups[update.Group.Name] = update.Group.Clone()

	case storage.KindPolicy:
		if update.Op == storage.OpDelete {
			delete(d.policies, update.Name)
			break
		}
		if update.Policy == nil {
			d.log.Error("backend update missing policy payload", zap.String("name", update.Name))
			return
		}
		d.policies[update.Policy.Name] = update.Policy.Clone()

	default:
		d.log.Error("backend update with unknown kind", zap.String("kind", string(update.Kind)))
		return
	}

	metrics.BackendUpdatesTotal.WithLabelValues(string(update.Kind), string(update.Op)).Inc()
	d.log.Debug("applied backend update",
		zap.String("kind", string(update.Kind)),
		zap.String("op", string(update.Op)),
		zap.String("name", update.Name))
}
