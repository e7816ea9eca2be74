package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// GroupMember identifies a member of a group by (typestr, name). Members
// need not correspond to registered actors.
type GroupMember struct {
	Name    string `json:"name"`
	Typestr string `json:"typestr"`
}

// NewGroupMember creates a member reference with normalized lowercase key.
func NewGroupMember(name, typestr string) GroupMember {
	return GroupMember{
		Name:    strings.ToLower(name),
		Typestr: strings.ToLower(typestr),
	}
}

// MemberSet is a set of group members that marshals to a stable-ordered
// JSON array.
type MemberSet map[GroupMember]struct{}

// NewMemberSet builds a set from the given members.
func NewMemberSet(members ...GroupMember) MemberSet {
	s := make(MemberSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add inserts a member.
func (s MemberSet) Add(m GroupMember) {
	s[m] = struct{}{}
}

// Remove deletes a member.
func (s MemberSet) Remove(m GroupMember) {
	delete(s, m)
}

// Has reports whether the member is in the set.
func (s MemberSet) Has(m GroupMember) bool {
	_, ok := s[m]
	return ok
}

// Clone returns an independent copy of the set.
func (s MemberSet) Clone() MemberSet {
	c := make(MemberSet, len(s))
	for m := range s {
		c[m] = struct{}{}
	}
	return c
}

// Values returns the members sorted by typestr then name.
func (s MemberSet) Values() []GroupMember {
	out := make([]GroupMember, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Typestr != out[j].Typestr {
			return out[i].Typestr < out[j].Typestr
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s MemberSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes the set from an array.
func (s *MemberSet) UnmarshalJSON(data []byte) error {
	var members []GroupMember
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*s = NewMemberSet(members...)
	return nil
}

// Group is a named collection of members granting a set of roles.
type Group struct {
	Name        string    `json:"name"`
	Description string    `json:"desc,omitempty"`
	Members     MemberSet `json:"members"`
	Roles       StringSet `json:"roles"`
}

// NewGroup creates a group with a normalized lowercase name.
func NewGroup(name, description string, members MemberSet, roles StringSet) *Group {
	if members == nil {
		members = NewMemberSet()
	}
	if roles == nil {
		roles = NewStringSet()
	}
	return &Group{
		Name:        strings.ToLower(name),
		Description: description,
		Members:     members,
		Roles:       roles,
	}
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	return &Group{
		Name:        g.Name,
		Description: g.Description,
		Members:     g.Members.Clone(),
		Roles:       g.Roles.Clone(),
	}
}

func (g *Group) String() string {
	return fmt.Sprintf("group[%s]: %d members  %d roles", g.Name, len(g.Members), len(g.Roles))
}
