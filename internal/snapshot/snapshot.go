// Package snapshot turns two successive fetches of an authoritative
// collection into a deterministic list of lifecycle events.
//
// A nil *Snapshot is the cold-start marker: no fetch has been recorded
// yet, so there is nothing to compare against. A non-nil snapshot with
// zero entities is a real observation of an empty collection.
package snapshot

import (
	"sort"
	"time"
)

// Field names a watched attribute of an entity.
type Field string

const (
	// FieldStatus is a ticket's workflow status.
	FieldStatus Field = "status"

	// FieldAssignee is the id of the employee a ticket is assigned to.
	FieldAssignee Field = "employee_id"
)

// Entity is anything with a stable identity that can be diffed.
type Entity interface {
	// EntityID returns the identity of the entity. It is unique within
	// a collection and never reused.
	EntityID() string

	// FieldValue returns the current value of f. The boolean is false
	// when the field is null or unknown for this entity.
	FieldValue(f Field) (string, bool)
}

// WatchedField declares one field the differ compares.
type WatchedField struct {
	Name Field

	// IgnoreCleared suppresses changes whose new value is null. The
	// assignee uses this: only a new concrete assignment is reported.
	IgnoreCleared bool
}

// Snapshot is the complete result of one fetch.
type Snapshot struct {
	TakenAt time.Time

	entities []Entity
	index    map[string]Entity
}

// New builds a snapshot from one fetch. When an id appears more than
// once, the last occurrence wins.
func New(entities []Entity, takenAt time.Time) *Snapshot {
	s := &Snapshot{
		TakenAt:  takenAt,
		entities: entities,
		index:    make(map[string]Entity, len(entities)),
	}
	for _, e := range entities {
		s.index[e.EntityID()] = e
	}
	return s
}

// Len returns the number of distinct entities.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.index)
}

// Get looks up an entity by id.
func (s *Snapshot) Get(id string) (Entity, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.index[id]
	return e, ok
}

// Entities returns the entities in fetch order.
func (s *Snapshot) Entities() []Entity {
	if s == nil {
		return nil
	}
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// IDs returns the distinct entity ids in ascending order.
func (s *Snapshot) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
