package models

import (
	"fmt"
	"strings"
)

// Target is a protected resource registered with Gatehouse, keyed by
// (typestr, name). Actions are the operations defined on it.
type Target struct {
	Name       string     `json:"name"`
	Typestr    string     `json:"typestr"`
	Actions    StringSet  `json:"actions"`
	Attributes Attributes `json:"attributes"`
}

// NewTarget creates a target with normalized lowercase key and actions.
func NewTarget(name, typestr string, actions []string, attributes Attributes) *Target {
	actionSet := NewStringSet()
	for _, action := range actions {
		actionSet.Add(strings.ToLower(action))
	}
	if attributes == nil {
		attributes = Attributes{}
	}
	return &Target{
		Name:       strings.ToLower(name),
		Typestr:    strings.ToLower(typestr),
		Actions:    actionSet,
		Attributes: attributes,
	}
}

// Clone returns a deep copy of the target.
func (t *Target) Clone() *Target {
	return &Target{
		Name:       t.Name,
		Typestr:    t.Typestr,
		Actions:    t.Actions.Clone(),
		Attributes: t.Attributes.Clone(),
	}
}

func (t *Target) String() string {
	return fmt.Sprintf("target[%s/%s]: %d actions", t.Typestr, t.Name, len(t.Actions))
}
