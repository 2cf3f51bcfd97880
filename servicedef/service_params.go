// Package servicedef defines the wire-level types of the todo service's REST
// and WebSocket contract. These structs describe what goes over the network,
// independently of how the harness uses them.
package servicedef

import "encoding/json"

// Wire values of the "type" field in push messages.
const (
	MessageTypeNewTodo    = "new_todo"
	MessageTypeUpdateTodo = "update_todo"
	MessageTypeDeleteTodo = "delete_todo"
)

// Todo is one entity record as returned by the REST endpoints and mirrored in
// push message payloads.
type Todo struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoRequest is the body of POST /todos and PUT /todos/{id}. Completed is a
// pointer so that tests can deliberately omit the field, which the service
// must reject.
type TodoRequest struct {
	Text      string `json:"text"`
	Completed *bool  `json:"completed,omitempty"`
}

// NewTodoRequest builds a well-formed request body.
func NewTodoRequest(text string, completed bool) TodoRequest {
	return TodoRequest{Text: text, Completed: &completed}
}

// PushMessage is the envelope of one WebSocket push notification. Data is
// kept raw so that payload decoding can fail independently of envelope
// decoding.
type PushMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
