package models

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// BucketCount is the number of percentage cohorts actors are spread over.
const BucketCount = 100

// Actor is an entity on behalf of which decisions are requested, keyed by
// (typestr, name). Identity is the key alone; attributes do not affect it.
type Actor struct {
	Name       string     `json:"name"`
	Typestr    string     `json:"typestr"`
	Attributes Attributes `json:"attributes"`
}

// NewActor creates an actor with normalized lowercase key.
func NewActor(name, typestr string, attributes Attributes) *Actor {
	if attributes == nil {
		attributes = Attributes{}
	}
	return &Actor{
		Name:       strings.ToLower(name),
		Typestr:    strings.ToLower(typestr),
		Attributes: attributes,
	}
}

// Bucket derives the actor's stable cohort in [0, BucketCount) from a
// 64-bit FNV-1a hash of "typestr/name". The same key always lands in the
// same bucket, across processes and restarts.
func (a *Actor) Bucket() int32 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%s", a.Typestr, a.Name)
	return int32(h.Sum64() % BucketCount)
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	return &Actor{
		Name:       a.Name,
		Typestr:    a.Typestr,
		Attributes: a.Attributes.Clone(),
	}
}

func (a *Actor) String() string {
	return fmt.Sprintf("actor[%s/%s]", a.Typestr, a.Name)
}
