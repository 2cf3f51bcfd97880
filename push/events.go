package push

import "github.com/todobackend/ws-contract-tests/servicedef"

// EventKind classifies a push notification by the change it describes.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event is the decoded form of one push notification. It is immutable once
// decoded; consumers must not modify it.
type Event struct {
	Kind EventKind
	Todo servicedef.Todo
}

// Predicate decides whether an event is the one a subscription is waiting
// for. Predicates are evaluated on the channel's delivery path and must be
// fast and side-effect free; in particular they must not call back into the
// Coordinator.
type Predicate func(Event) bool

// MatchTodo matches an event by kind and entity id.
func MatchTodo(kind EventKind, id int64) Predicate {
	return func(e Event) bool {
		return e.Kind == kind && e.Todo.ID == id
	}
}

// MatchTodoText matches an event by kind and exact text. Useful when the
// entity id is not known yet, such as waiting for the notification of a
// create that has not returned.
func MatchTodoText(kind EventKind, text string) Predicate {
	return func(e Event) bool {
		return e.Kind == kind && e.Todo.Text == text
	}
}
