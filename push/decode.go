package push

import (
	"encoding/json"
	"fmt"

	"github.com/todobackend/ws-contract-tests/servicedef"
)

// DecodeFailure reports a push message that could not be turned into an
// Event. It carries the original raw text so the caller can log it. Decode
// failures are isolated per message: the caller logs and discards them, and
// they never satisfy or disturb any subscription.
type DecodeFailure struct {
	Raw    string
	Reason string
}

func (e *DecodeFailure) Error() string {
	return fmt.Sprintf("cannot decode push message (%s): %s", e.Reason, e.Raw)
}

// payload mirrors servicedef.Todo with pointer fields so that missing keys
// can be told apart from zero values.
type payload struct {
	ID        *int64  `json:"id"`
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// Decode turns one raw transport message into an Event. It never panics; any
// malformed input yields a *DecodeFailure. Decoding is stateless, so the same
// input always produces the same result.
func Decode(raw []byte) (Event, error) {
	fail := func(reason string) (Event, error) {
		return Event{}, &DecodeFailure{Raw: string(raw), Reason: reason}
	}

	var msg servicedef.PushMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fail("not a JSON message envelope")
	}

	var kind EventKind
	switch msg.Type {
	case servicedef.MessageTypeNewTodo:
		kind = EventCreated
	case servicedef.MessageTypeUpdateTodo:
		kind = EventUpdated
	case servicedef.MessageTypeDeleteTodo:
		kind = EventDeleted
	case "":
		return fail("missing message type")
	default:
		return fail(fmt.Sprintf("unknown message type %q", msg.Type))
	}

	if len(msg.Data) == 0 {
		return fail("missing data payload")
	}
	var p payload
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		return fail("data payload is not a JSON object")
	}
	if p.ID == nil {
		return fail("data payload has no id")
	}
	// Delete notifications only need to carry the id.
	if kind != EventDeleted && p.Text == nil {
		return fail("data payload has no text")
	}

	ev := Event{Kind: kind, Todo: servicedef.Todo{ID: *p.ID}}
	if p.Text != nil {
		ev.Todo.Text = *p.Text
	}
	if p.Completed != nil {
		ev.Todo.Completed = *p.Completed
	}
	return ev, nil
}
