package snapshot

import "fmt"

// EventType classifies a lifecycle event.
type EventType int

const (
	EventCreated EventType = iota + 1
	EventFieldChanged
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventFieldChanged:
		return "field_changed"
	case EventDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Event describes how one entity changed between two snapshots. Field,
// Old and New are only set for EventFieldChanged. For EventDeleted the
// Entity is the last observed version.
type Event struct {
	Type   EventType
	Entity Entity
	Field  Field
	Old    string
	New    string
}

// Diff compares prev against curr and returns the lifecycle events in
// a deterministic order:
//
//  1. ids in curr, ascending: Created, or one FieldChanged per changed
//     watched field in the order fields are declared;
//  2. ids only in prev, ascending: Deleted.
//
// A nil prev is the cold-start marker and yields no events.
func Diff(prev, curr *Snapshot, fields []WatchedField) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	for _, id := range curr.IDs() {
		current, _ := curr.Get(id)
		previous, existed := prev.Get(id)
		if !existed {
			events = append(events, Event{Type: EventCreated, Entity: current})
			continue
		}
		events = append(events, fieldChanges(previous, current, fields)...)
	}

	for _, id := range prev.IDs() {
		if _, ok := curr.Get(id); ok {
			continue
		}
		previous, _ := prev.Get(id)
		events = append(events, Event{Type: EventDeleted, Entity: previous})
	}

	return events
}

// fieldChanges compares the watched fields of two versions of the same
// entity.
func fieldChanges(previous, current Entity, fields []WatchedField) []Event {
	var events []Event
	for _, wf := range fields {
		oldValue, oldSet := previous.FieldValue(wf.Name)
		newValue, newSet := current.FieldValue(wf.Name)

		if oldSet == newSet && oldValue == newValue {
			continue
		}
		if wf.IgnoreCleared && !newSet {
			continue
		}

		events = append(events, Event{
			Type:   EventFieldChanged,
			Entity: current,
			Field:  wf.Name,
			Old:    oldValue,
			New:    newValue,
		})
	}
	return events
}
