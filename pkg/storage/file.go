package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/models"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

// FileStorage keeps one JSON file per record under
// <basepath>/{targets,actors,roles,groups,policies}. Filenames encode the
// record key; the record itself is decoded from file contents, so the
// filename is only a locator.
type FileStorage struct {
	basepath string
	log      *zap.Logger
}

// NewFileStorage creates the file backend, creating any missing kind
// directories under basepath.
func NewFileStorage(basepath string, log *zap.Logger) (*FileStorage, error) {
	for _, kind := range []Kind{KindTarget, KindActor, KindRole, KindGroup, KindPolicy} {
		if err := os.MkdirAll(filepath.Join(basepath, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory for %s: %w", kind, err)
		}
	}
	return &FileStorage{basepath: basepath, log: log}, nil
}

func (f *FileStorage) keyedPath(kind Kind, typestr, name string) string {
	return filepath.Join(f.basepath, string(kind), fmt.Sprintf("%s-%s.json", typestr, name))
}

func (f *FileStorage) namedPath(kind Kind, name string) string {
	return filepath.Join(f.basepath, string(kind), name+".json")
}

func (f *FileStorage) writeRecord(path string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (f *FileStorage) removeRecord(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}

// loadDir decodes every file in the kind directory through decode.
func (f *FileStorage) loadDir(kind Kind, decode func(data []byte) error) error {
	dir := filepath.Join(f.basepath, string(kind))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read storage directory for %s: %w", kind, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read record %s: %w", entry.Name(), err)
		}
		if err := decode(data); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, entry.Name(), err)
		}
	}
	return nil
}

// LoadTargets scans the targets directory.
func (f *FileStorage) LoadTargets(ctx context.Context) (map[string]map[string]*models.Target, error) {
	out := make(map[string]map[string]*models.Target)
	err := f.loadDir(KindTarget, func(data []byte) error {
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

// SaveTarget writes the target record.
func (f *FileStorage) SaveTarget(ctx context.Context, target *models.Target) error {
	return f.writeRecord(f.keyedPath(KindTarget, target.Typestr, target.Name), target)
}

// RemoveTarget deletes the target record.
func (f *FileStorage) RemoveTarget(ctx context.Context, typestr, name string) error {
	return f.removeRecord(f.keyedPath(KindTarget, typestr, name))
}

// LoadActors scans the actors directory.
func (f *FileStorage) LoadActors(ctx context.Context) (map[string]map[string]*models.Actor, error) {
	out := make(map[string]map[string]*models.Actor)
	err := f.loadDir(KindActor, func(data []byte) error {
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

// SaveActor writes the actor record.
func (f *FileStorage) SaveActor(ctx context.Context, actor *models.Actor) error {
	return f.writeRecord(f.keyedPath(KindActor, actor.Typestr, actor.Name), actor)
}

// RemoveActor deletes the actor record.
func (f *FileStorage) RemoveActor(ctx context.Context, typestr, name string) error {
	return f.removeRecord(f.keyedPath(KindActor, typestr, name))
}

// LoadRoles scans the roles directory.
func (f *FileStorage) LoadRoles(ctx context.Context) (map[string]*models.Role, error) {
	out := make(map[string]*models.Role)
	err := f.loadDir(KindRole, func(data []byte) error {
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

// SaveRole writes the role record.
func (f *FileStorage) SaveRole(ctx context.Context, role *models.Role) error {
	return f.writeRecord(f.namedPath(KindRole, role.Name), role)
}

// RemoveRole deletes the role record.
func (f *FileStorage) RemoveRole(ctx context.Context, name string) error {
	return f.removeRecord(f.namedPath(KindRole, name))
}

// LoadGroups scans the groups directory.
func (f *FileStorage) LoadGroups(ctx context.Context) (map[string]*models.Group, error) {
	out := make(map[string]*models.Group)
	err := f.loadDir(KindGroup, func(data []byte) error {
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

// SaveGroup writes the group record.
func (f *FileStorage) SaveGroup(ctx context.Context, group *models.Group) error {
	return f.writeRecord(f.namedPath(KindGroup, group.Name), group)
}

// RemoveGroup deletes the group record.
func (f *FileStorage) RemoveGroup(ctx context.Context, name string) error {
	return f.removeRecord(f.namedPath(KindGroup, name))
}

// LoadPolicies scans the policies directory.
func (f *FileStorage) LoadPolicies(ctx context.Context) (map[string]*policy.Rule, error) {
	out := make(map[string]*policy.Rule)
	err := f.loadDir(KindPolicy, func(data []byte) error {
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

// SavePolicy writes the policy record.
func (f *FileStorage) SavePolicy(ctx context.Context, rule *policy.Rule) error {
	return f.writeRecord(f.namedPath(KindPolicy, rule.Name), rule)
}

// RemovePolicy deletes the policy record.
func (f *FileStorage) RemovePolicy(ctx context.Context, name string) error {
	return f.removeRecord(f.namedPath(KindPolicy, name))
}

// Updates returns nil: the file backend is not replicated.
func (f *FileStorage) Updates() <-chan BackendUpdate {
	return nil
}

// Close is a no-op.
func (f *FileStorage) Close() error {
	return nil
}
