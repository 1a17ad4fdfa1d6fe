// Package catalog loads and publishes the schema catalog: the immutable
// registry of tables, concept mappings, intent templates, validation rules,
// and table relationships driving query compilation.
//
// The catalog is parsed once from its declarative YAML source, validated
// for consistency, and published as an immutable Snapshot. Readers are
// unbounded and lock-free; hot reloads swap in a whole new snapshot
// atomically rather than mutating in place.
package catalog

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/tessella/opsq/nlq/types"
)

// Snapshot is one immutable, fully-validated catalog revision. All lookup
// methods are safe for unbounded concurrent use.
type Snapshot struct {
	Version       string
	Tables        map[string]*types.TableDefinition
	Concepts      map[string]*types.ConceptMapping
	Templates     map[types.Intent]*types.IntentTemplate
	Rules         map[types.Intent]*types.ValidationRule
	Relationships []types.Relationship

	conceptNames []string // sorted, for deterministic fuzzy lookup
}

// Table returns the table definition for a canonical name.
func (s *Snapshot) Table(name string) (*types.TableDefinition, bool) {
	t, ok := s.Tables[name]
	return t, ok
}

// Template returns the intent template for an intent.
func (s *Snapshot) Template(intent types.Intent) (*types.IntentTemplate, bool) {
	t, ok := s.Templates[intent]
	return t, ok
}

// Rule returns the validation rule for an intent. Intents without declared
// rules validate trivially.
func (s *Snapshot) Rule(intent types.Intent) (*types.ValidationRule, bool) {
	r, ok := s.Rules[intent]
	return r, ok
}

// Concept resolves a field name to its concept mapping: exact match first,
// then containment fuzzy match over the sorted concept names so the result
// is deterministic.
func (s *Snapshot) Concept(field string) (*types.ConceptMapping, bool) {
	if c, ok := s.Concepts[field]; ok {
		return c, true
	}
	for _, name := range s.conceptNames {
		if strings.Contains(name, field) || strings.Contains(field, name) {
			return s.Concepts[name], true
		}
	}
	return nil, false
}

// Relationship returns the declared join edge between two tables, in either
// direction.
func (s *Snapshot) Relationship(from, to string) (*types.Relationship, bool) {
	for i := range s.Relationships {
		r := &s.Relationships[i]
		if (r.From == from && r.To == to) || (r.From == to && r.To == from) {
			return r, true
		}
	}
	return nil, false
}

// Intents returns the declared intents in sorted order.
func (s *Snapshot) Intents() []types.Intent {
	intents := make([]types.Intent, 0, len(s.Templates))
	for intent := range s.Templates {
		intents = append(intents, intent)
	}
	sort.Slice(intents, func(i, j int) bool { return intents[i] < intents[j] })
	return intents
}

// Catalog publishes the current snapshot. The zero value is not usable;
// construct with New.
type Catalog struct {
	snapshot atomic.Pointer[Snapshot]
}

// New wraps an initial snapshot.
func New(snap *Snapshot) *Catalog {
	c := &Catalog{}
	c.snapshot.Store(snap)
	return c
}

// Snapshot returns the current catalog revision. Callers must not retain it
// across turns if they want reload visibility, and must not mutate it.
func (c *Catalog) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// swap atomically publishes a new revision.
func (c *Catalog) swap(snap *Snapshot) {
	c.snapshot.Store(snap)
}
