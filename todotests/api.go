package todotests

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/todobackend/ws-contract-tests/client"
	"github.com/todobackend/ws-contract-tests/framework"
	"github.com/todobackend/ws-contract-tests/push"
	"github.com/todobackend/ws-contract-tests/servicedef"
)

// DefaultEventTimeout is how long tests wait for an expected push event when
// no -timeout override is given on the command line.
const DefaultEventTimeout = 5 * time.Second

type environment struct {
	client       *client.Client
	coordinator  *push.Coordinator
	eventTimeout time.Duration
}

// T represents a test or subtest in the todo contract test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an
// environment that is outside of the Go test runner, with extra features such
// as per-test debug logging. Those features are provided by the lower-level
// framework package.
//
// It also provides functionality specific to todo testing: helpers for the
// CRUD operations with their expected-success assertions built in, and
// helpers for subscribing to and awaiting push events. To make test
// assertions, use the assert and require packages, passing the *T as if it
// were a *testing.T.
type T struct {
	context *framework.Context
	env     *environment
}

// Errorf is called by assertions to log a test failure. It does not cause an
// immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately
// exit. The methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest, equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Defer registers a cleanup function to run when this test finishes.
func (t *T) Defer(cleanup func()) {
	t.context.Defer(cleanup)
}

// Debug logs some debug output for the test. The output will be passed to
// the test logger at the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Client exposes the REST client for tests that need raw requests, such as
// the validation and auth tests.
func (t *T) Client() *client.Client {
	return t.env.client
}

// RandomTodoText returns todo text that no other test (or concurrent run)
// will produce, so event predicates keyed on it cannot be satisfied by
// unrelated activity.
func (t *T) RandomTodoText(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// CreateTodo creates a todo, requiring success and a server-assigned id, and
// schedules the todo's deletion at the end of the test.
func (t *T) CreateTodo(text string, completed bool) servicedef.Todo {
	todo, err := t.env.client.Create(text, completed)
	require.NoError(t, err)
	require.Greater(t, todo.ID, int64(0), "service must assign a positive id")
	t.Debug("Created todo %d (%q, completed=%v)", todo.ID, todo.Text, todo.Completed)
	t.Defer(func() {
		// Best effort; the test may have deleted it already.
		_, _ = t.env.client.DeleteRaw(todo.ID, true)
	})
	return todo
}

// UpdateTodo updates a todo, requiring success.
func (t *T) UpdateTodo(id int64, text string, completed bool) servicedef.Todo {
	todo, err := t.env.client.Update(id, text, completed)
	require.NoError(t, err)
	t.Debug("Updated todo %d (%q, completed=%v)", todo.ID, todo.Text, todo.Completed)
	return todo
}

// DeleteTodo deletes a todo, requiring success.
func (t *T) DeleteTodo(id int64) {
	require.NoError(t, t.env.client.Delete(id))
	t.Debug("Deleted todo %d", id)
}

// ListTodos fetches one page of todos, requiring success.
func (t *T) ListTodos(offset, limit ldvalue.OptionalInt) []servicedef.Todo {
	todos, err := t.env.client.List(offset, limit)
	require.NoError(t, err)
	t.Debug("Listed %d todos", len(todos))
	return todos
}

// ListAllTodos fetches every record in one oversized page.
func (t *T) ListAllTodos() []servicedef.Todo {
	return t.ListTodos(ldvalue.OptionalInt{}, ldvalue.NewOptionalInt(1000000))
}

// ExpectEvent registers a subscription for a matching push event. Call this
// before the REST action that triggers the event, then pass the returned
// wait to RequireEvent. The subscription is cancelled automatically at the
// end of the test if it never matched.
func (t *T) ExpectEvent(predicate push.Predicate) *push.Wait {
	w := t.env.coordinator.Subscribe(predicate)
	t.Defer(w.Cancel)
	t.Debug("Subscribed to push events")
	return w
}

// ExpectTodoEvent is ExpectEvent scoped to an event kind and entity id.
func (t *T) ExpectTodoEvent(kind push.EventKind, id int64) *push.Wait {
	t.Debug("Expecting a %s event for todo %d", kind, id)
	return t.ExpectEvent(push.MatchTodo(kind, id))
}

// ExpectTodoEventWithText is ExpectEvent scoped to an event kind and exact
// text, for use when the entity id is not known yet.
func (t *T) ExpectTodoEventWithText(kind push.EventKind, text string) *push.Wait {
	t.Debug("Expecting a %s event with text %q", kind, text)
	return t.ExpectEvent(push.MatchTodoText(kind, text))
}

// EventTimeout returns the configured wait window for expected push events.
func (t *T) EventTimeout() time.Duration {
	return t.env.eventTimeout
}

// RequireEvent waits for the subscription to match, failing the test if it
// times out or is cancelled.
func (t *T) RequireEvent(w *push.Wait) push.Event {
	t.Debug("Waiting up to %s for a matching push event", t.env.eventTimeout)
	ev, err := w.Await(t.env.eventTimeout)
	require.NoError(t, err)
	t.Debug("Received %s event for todo %d", ev.Kind, ev.Todo.ID)
	return ev
}

// RequireNoEvent asserts that the subscription does not match within the
// given window.
func (t *T) RequireNoEvent(w *push.Wait, within time.Duration) {
	ev, err := w.Await(within)
	if err == nil {
		require.Fail(t, "received an event that should not have matched",
			"got %s event for todo %d", ev.Kind, ev.Todo.ID)
	}
	var timeout *push.TimeoutError
	require.ErrorAs(t, err, &timeout)
	t.Debug("No matching push event within %s, as expected", within)
}

// RequireStatus checks a raw REST response against an expected status code.
func (t *T) RequireStatus(resp *resty.Response, err error, status int) {
	require.NoError(t, err)
	t.Debug("Got status %d from %s %s", resp.StatusCode(), resp.Request.Method, resp.Request.URL)
	require.Equal(t, status, resp.StatusCode(),
		"expected status %d but got %d: %s", status, resp.StatusCode(), resp.String())
}
