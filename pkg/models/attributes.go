package models

import (
	"encoding/json"
	"sort"
)

// StringSet is a set of strings that marshals to a sorted JSON array.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts a value into the set.
func (s StringSet) Add(value string) {
	s[value] = struct{}{}
}

// Remove deletes a value from the set.
func (s StringSet) Remove(value string) {
	delete(s, value)
}

// Has reports whether the value is in the set.
func (s StringSet) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// Intersects reports whether any of the given values is in the set.
func (s StringSet) Intersects(values []string) bool {
	for _, v := range values {
		if s.Has(v) {
			return true
		}
	}
	return false
}

// IntersectsSet reports whether the two sets share at least one value.
func (s StringSet) IntersectsSet(other StringSet) bool {
	for v := range other {
		if s.Has(v) {
			return true
		}
	}
	return false
}

// Union adds every value of other into the set.
func (s StringSet) Union(other StringSet) {
	for v := range other {
		s[v] = struct{}{}
	}
}

// Clone returns an independent copy of the set.
func (s StringSet) Clone() StringSet {
	c := make(StringSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

// Values returns the set contents sorted ascending.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes the set from an array.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}

// Attributes maps an attribute key to its set of values. Keys with empty
// value sets are not stored; mutation helpers prune them.
type Attributes map[string]StringSet

// NewAttributes converts a plain key to value-list mapping into Attributes.
// Keys with no values are dropped.
func NewAttributes(in map[string][]string) Attributes {
	attrs := make(Attributes, len(in))
	for key, values := range in {
		if len(values) == 0 {
			continue
		}
		attrs[key] = NewStringSet(values...)
	}
	return attrs
}

// AddValues unions the given values into the key's value set.
func (a Attributes) AddValues(key string, values ...string) {
	if len(values) == 0 {
		return
	}
	set, ok := a[key]
	if !ok {
		set = NewStringSet()
		a[key] = set
	}
	for _, v := range values {
		set.Add(v)
	}
}

// RemoveValues removes the given values from the key's value set, dropping
// the key entirely once its set is empty.
func (a Attributes) RemoveValues(key string, values ...string) {
	set, ok := a[key]
	if !ok {
		return
	}
	for _, v := range values {
		set.Remove(v)
	}
	if len(set) == 0 {
		delete(a, key)
	}
}

// Union merges every key of other into a, set-unioning values per key.
func (a Attributes) Union(other Attributes) {
	for key, set := range other {
		a.AddValues(key, set.Values()...)
	}
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	c := make(Attributes, len(a))
	for key, set := range a {
		c[key] = set.Clone()
	}
	return c
}

// ToMap converts Attributes back into a plain key to sorted value-list map.
func (a Attributes) ToMap() map[string][]string {
	out := make(map[string][]string, len(a))
	for key, set := range a {
		out[key] = set.Values()
	}
	return out
}
