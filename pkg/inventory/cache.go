package inventory

import (
	"fmt"
	"sort"
)

// Edge is a directed (kind, name) pointer stored on the source object's
// extension data, meaning "this object is related to / upstream-consumed-by
// the named object of the named kind".
type Edge struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

// Entry holds one gathered resource plus the extension data accumulated by
// the pipeline: its relationship edges and, optionally, a log snippet.
type Entry struct {
	Resource      *Resource `json:"definition" yaml:"definition"`
	Relationships []Edge    `json:"relationships" yaml:"relationships"`
	LogSnip       []string  `json:"logSnip,omitempty" yaml:"logSnip,omitempty"`
}

// AddRelationship appends an edge unless an identical (kind, name) edge is
// already present. Reports whether the edge was added. Insertion order is
// preserved for consumers with first-found semantics.
func (e *Entry) AddRelationship(edge Edge) bool {
	for _, existing := range e.Relationships {
		if existing == edge {
			return false
		}
	}
	e.Relationships = append(e.Relationships, edge)
	return true
}

// Bucket holds everything gathered for one kind. A kind that could not be
// listed is still recorded, with Available=false and no items, so downstream
// consumers can tell "kind known but inaccessible" from "kind never gathered".
type Bucket struct {
	Available bool              `json:"available" yaml:"available"`
	Count     int               `json:"count" yaml:"count"`
	Items     map[string]*Entry `json:"items" yaml:"items"`
}

// ItemNames returns the bucket's item names in sorted order, for
// deterministic iteration.
func (b *Bucket) ItemNames() []string {
	names := make([]string, 0, len(b.Items))
	for name := range b.Items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cache maps each gathered kind to its bucket. A kind appears at most once;
// the gatherer short-circuits on kinds already present.
type Cache map[Kind]*Bucket

// NewCache returns an empty cache.
func NewCache() Cache { return make(Cache) }

// Bucket returns the bucket for a kind, if gathered.
func (c Cache) Bucket(kind Kind) (*Bucket, bool) {
	b, ok := c[kind]
	return b, ok
}

// Entry returns the entry for one (kind, name), if present.
func (c Cache) Entry(kind Kind, name string) (*Entry, bool) {
	b, ok := c[kind]
	if !ok {
		return nil, false
	}
	e, ok := b.Items[name]
	return e, ok
}

// Kinds returns the gathered kinds in sorted order.
func (c Cache) Kinds() []Kind {
	kinds := make([]Kind, 0, len(c))
	for k := range c {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// SeedUnavailableError reports that the seed kind could not be listed at all.
// Without the seed kind no component graph can be built, so this aborts the
// run instead of degrading it.
type SeedUnavailableError struct {
	Kind      Kind
	Namespace string
	Err       error
}

func (e *SeedUnavailableError) Error() string {
	return fmt.Sprintf("listing %s is not permitted in namespace %q: %v", e.Kind, e.Namespace, e.Err)
}

func (e *SeedUnavailableError) Unwrap() error { return e.Err }
