package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

const (
	etcdPrefix      = "/gatehouse/"
	etcdDialTimeout = 5 * time.Second
	etcdOpTimeout   = 10 * time.Second

	// Watch reconnect pacing. The inner delay paces stream re-establishment
	// after a dropped watch; the outer delay paces full restart loops.
	watchRetryDelay   = 2 * time.Second
	watchRestartDelay = 10 * time.Second
)

// EtcdStorage stores records under /gatehouse/<kind>/... and replays
// changes made by other instances through Updates.
type EtcdStorage struct {
	client *clientv3.Client
	log    *zap.Logger

	updates chan BackendUpdate
	cancel  context.CancelFunc
}

// NewEtcdStorage connects to the etcd endpoint and starts the watch
// goroutine feeding Updates.
func NewEtcdStorage(endpoint string, log *zap.Logger) (*EtcdStorage, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{endpoint},
		DialTimeout: etcdDialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connect etcd %s: %v", ErrUnavailable, endpoint, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &EtcdStorage{
		client:  client,
		log:     log,
		updates: make(chan BackendUpdate, 64),
		cancel:  cancel,
	}
	go e.watch(ctx)
	return e, nil
}

func etcdKeyedKey(kind Kind, typestr, name string) string {
	return etcdPrefix + string(kind) + "/" + typestr + "/" + name
}

func etcdNamedKey(kind Kind, name string) string {
	return etcdPrefix + string(kind) + "/" + name
}

func (e *EtcdStorage) put(ctx context.Context, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	opCtx, cancel := context.WithTimeout(ctx, etcdOpTimeout)
	defer cancel()
	if _, err := e.client.Put(opCtx, key, string(data)); err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (e *EtcdStorage) delete(ctx context.Context, key string) error {
	opCtx, cancel := context.WithTimeout(ctx, etcdOpTimeout)
	defer cancel()
	resp, err := e.client.Delete(opCtx, key)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrUnavailable, key, err)
	}
	if resp.Deleted == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

// loadPrefix fetches every key under the kind prefix and decodes each value.
func (e *EtcdStorage) loadPrefix(ctx context.Context, kind Kind, decode func(key string, data []byte) error) error {
	prefix := etcdPrefix + string(kind) + "/"
	opCtx, cancel := context.WithTimeout(ctx, etcdOpTimeout)
	defer cancel()
	resp, err := e.client.Get(opCtx, prefix, clientv3.WithPrefix())
	if err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrUnavailable, prefix, err)
	}
	for _, kv := range resp.Kvs {
		if err := decode(string(kv.Key), kv.Value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, string(kv.Key), err)
		}
	}
	return nil
}

// LoadTargets fetches all target records.
func (e *EtcdStorage) LoadTargets(ctx context.Context) (map[string]map[string]*models.Target, error) {
	out := make(map[string]map[string]*models.Target)
	err := e.loadPrefix(ctx, KindTarget, func(_ string, data []byte) error {
		var t models.Target
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		typed, ok := out[t.Typestr]
		if !ok {
			typed = make(map[string]*models.Target)
			out[t.Typestr] = typed
		}
		typed[t.Name] = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveTarget puts the target record.
func (e *EtcdStorage) SaveTarget(ctx context.Context, target *models.Target) error {
	return e.put(ctx, etcdKeyedKey(KindTarget, target.Typestr, target.Name), target)
}

// RemoveTarget deletes the target record.
func (e *EtcdStorage) RemoveTarget(ctx context.Context, typestr, name string) error {
	return e.delete(ctx, etcdKeyedKey(KindTarget, typestr, name))
}

// LoadActors fetches all actor records.
func (e *EtcdStorage) LoadActors(ctx context.Context) (map[string]map[string]*models.Actor, error) {
	out := make(map[string]map[string]*models.Actor)
	err := e.loadPrefix(ctx, KindActor, func(_ string, data []byte) error {
		var a models.Actor
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		typed, ok := out[a.Typestr]
		if !ok {
			typed = make(map[string]*models.Actor)
			out[a.Typestr] = typed
		}
		typed[a.Name] = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveActor puts the actor record.
func (e *EtcdStorage) SaveActor(ctx context.Context, actor *models.Actor) error {
	return e.put(ctx, etcdKeyedKey(KindActor, actor.Typestr, actor.Name), actor)
}

// RemoveActor deletes the actor record.
func (e *EtcdStorage) RemoveActor(ctx context.Context, typestr, name string) error {
	return e.delete(ctx, etcdKeyedKey(KindActor, typestr, name))
}

// LoadRoles fetches all role records.
func (e *EtcdStorage) LoadRoles(ctx context.Context) (map[string]*models.Role, error) {
	out := make(map[string]*models.Role)
	err := e.loadPrefix(ctx, KindRole, func(_ string, data []byte) error {
		var r models.Role
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		out[r.Name] = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveRole puts the role record.
func (e *EtcdStorage) SaveRole(ctx context.Context, role *models.Role) error {
	return e.put(ctx, etcdNamedKey(KindRole, role.Name), role)
}

// RemoveRole deletes the role record.
func (e *EtcdStorage) RemoveRole(ctx context.Context, name string) error {
	return e.delete(ctx, etcdNamedKey(KindRole, name))
}

// LoadGroups fetches all group records.
func (e *EtcdStorage) LoadGroups(ctx context.Context) (map[string]*models.Group, error) {
	out := make(map[string]*models.Group)
	err := e.loadPrefix(ctx, KindGroup, func(_ string, data []byte) error {
		var g models.Group
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		out[g.Name] = &g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveGroup puts the group record.
func (e *EtcdStorage) SaveGroup(ctx context.Context, group *models.Group) error {
	return e.put(ctx, etcdNamedKey(KindGroup, group.Name), group)
}

// RemoveGroup deletes the group record.
func (e *EtcdStorage) RemoveGroup(ctx context.Context, name string) error {
	return e.delete(ctx, etcdNamedKey(KindGroup, name))
}

// LoadPolicies fetches all policy records.
func (e *EtcdStorage) LoadPolicies(ctx context.Context) (map[string]*policy.Rule, error) {
	out := make(map[string]*policy.Rule)
	err := e.loadPrefix(ctx, KindPolicy, func(_ string, data []byte) error {
		var r policy.Rule
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		out[r.Name] = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SavePolicy puts the policy record.
func (e *EtcdStorage) SavePolicy(ctx context.Context, rule *policy.Rule) error {
	return e.put(ctx, etcdNamedKey(KindPolicy, rule.Name), rule)
}

// RemovePolicy deletes the policy record.
func (e *EtcdStorage) RemovePolicy(ctx context.Context, name string) error {
	return e.delete(ctx, etcdNamedKey(KindPolicy, name))
}

// Updates returns the change stream fed by the watch goroutine.
func (e *EtcdStorage) Updates() <-chan BackendUpdate {
	return e.updates
}

// Close stops the watch goroutine and closes the client.
func (e *EtcdStorage) Close() error {
	e.cancel()
	return e.client.Close()
}

// watch streams key changes under the prefix into the updates channel.
// Delivery is at-least-once: after a reconnect the watch resumes from the
// last seen revision, and events at or below it are dropped.
func (e *EtcdStorage) watch(ctx context.Context) {
	defer close(e.updates)

	var lastRev int64
	for {
		if ctx.Err() != nil {
			return
		}
		e.runWatch(ctx, &lastRev)
		e.log.Warn("etcd watch loop ended, restarting",
			zap.Int64("last_revision", lastRev),
			zap.Duration("delay", watchRestartDelay))
		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRestartDelay):
		}
	}
}

func (e *EtcdStorage) runWatch(ctx context.Context, lastRev *int64) {
	for {
		opts := []clientv3.OpOption{clientv3.WithPrefix()}
		if *lastRev > 0 {
			opts = append(opts, clientv3.WithRev(*lastRev+1))
		}
		ch := e.client.Watch(clientv3.WithRequireLeader(ctx), etcdPrefix, opts...)
		for resp := range ch {
			if err := resp.Err(); err != nil {
				e.log.Warn("etcd watch stream error", zap.Error(err))
				break
			}
			for _, ev := range resp.Events {
				if ev.Kv.ModRevision <= *lastRev {
					continue
				}
				*lastRev = ev.Kv.ModRevision
				update, err := decodeEvent(ev)
				if err != nil {
					e.log.Error("drop undecodable etcd event",
						zap.String("key", string(ev.Kv.Key)), zap.Error(err))
					continue
				}
				select {
				case e.updates <- update:
				case <-ctx.Done():
					return
				}
			}
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryDelay):
		}
	}
}

// decodeEvent turns a raw etcd event into a BackendUpdate.
func decodeEvent(ev *clientv3.Event) (BackendUpdate, error) {
	kind, typestr, name, err := splitKey(string(ev.Kv.Key))
	if err != nil {
		return BackendUpdate{}, err
	}
	update := BackendUpdate{Kind: kind, Typestr: typestr, Name: name}
	if ev.Type == mvccpb.DELETE {
		update.Op = OpDelete
		return update, nil
	}

	update.Op = OpPut
	switch kind {
	case KindTarget:
		var t models.Target
		if err := json.Unmarshal(ev.Kv.Value, &t); err != nil {
			return BackendUpdate{}, err
		}
		update.Target = &t
	case KindActor:
		var a models.Actor
		if err := json.Unmarshal(ev.Kv.Value, &a); err != nil {
			return BackendUpdate{}, err
		}
		update.Actor = &a
	case KindRole:
		var r models.Role
		if err := json.Unmarshal(ev.Kv.Value, &r); err != nil {
			return BackendUpdate{}, err
		}
		update.Role = &r
	case KindGroup:
		var g models.Group
		if err := json.Unmarshal(ev.Kv.Value, &g); err != nil {
			return BackendUpdate{}, err
		}
		update.Group = &g
	case KindPolicy:
		var r policy.Rule
		if err := json.Unmarshal(ev.Kv.Value, &r); err != nil {
			return BackendUpdate{}, err
		}
		update.Policy = &r
	}
	return update, nil
}

// splitKey parses /gatehouse/<kind>/<name> or /gatehouse/<kind>/<type>/<name>.
func splitKey(key string) (Kind, string, string, error) {
	rest, ok := strings.CutPrefix(key, etcdPrefix)
	if !ok {
		return "", "", "", fmt.Errorf("key outside prefix: %s", key)
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 2 {
		return "", "", "", fmt.Errorf("malformed key: %s", key)
	}
	kind := Kind(parts[0])
	switch kind {
	case KindTarget, KindActor:
		if len(parts) != 3 {
			return "", "", "", fmt.Errorf("malformed keyed entity key: %s", key)
		}
		return kind, parts[1], parts[2], nil
	case KindRole, KindGroup, KindPolicy:
		if len(parts) != 2 {
			return "", "", "", fmt.Errorf("malformed named entity key: %s", key)
		}
		return kind, "", parts[1], nil
	}
	return "", "", "", fmt.Errorf("unknown entity kind in key: %s", key)
}
