package todotests

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todobackend/ws-contract-tests/push"
)

func DoNotificationTests(t *T) {
	t.Run("unrelated activity does not satisfy a scoped wait", func(t *T) {
		w := t.ExpectTodoEventWithText(push.EventCreated, t.RandomTodoText("never-created"))

		// This create triggers a new_todo broadcast, but with different text.
		t.CreateTodo(t.RandomTodoText("unrelated"), false)

		t.RequireNoEvent(w, 2*time.Second)
	})

	t.Run("a wait that can never match times out at the deadline", func(t *T) {
		timeout := time.Second
		w := t.ExpectEvent(func(push.Event) bool { return false })

		started := time.Now()
		_, err := w.Await(timeout)
		elapsed := time.Since(started)

		var timeoutErr *push.TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.GreaterOrEqual(t, elapsed, timeout)
		assert.Less(t, elapsed, timeout+3*time.Second)
	})

	t.Run("one event can complete multiple subscriptions", func(t *T) {
		text := t.RandomTodoText("broadcast")
		first := t.ExpectTodoEventWithText(push.EventCreated, text)
		second := t.ExpectEvent(func(e push.Event) bool {
			return e.Kind == push.EventCreated && e.Todo.Text == text
		})

		t.CreateTodo(text, false)

		ev1 := t.RequireEvent(first)
		ev2 := t.RequireEvent(second)
		assert.Equal(t, ev1, ev2)
	})

	t.Run("concurrent waiters each receive exactly their own event", func(t *T) {
		const waiters = 4

		type outcome struct {
			index int
			err   error
		}
		results := make(chan outcome, waiters)

		for i := 0; i < waiters; i++ {
			text := t.RandomTodoText(fmt.Sprintf("concurrent-%d", i))
			w := t.ExpectTodoEventWithText(push.EventCreated, text)
			go func(i int, text string, w *push.Wait) {
				// The subscription is registered; now trigger our own event.
				todo, err := t.Client().Create(text, false)
				if err != nil {
					results <- outcome{i, err}
					return
				}
				defer func() { _, _ = t.Client().DeleteRaw(todo.ID, true) }()

				ev, err := w.Await(t.EventTimeout())
				if err != nil {
					results <- outcome{i, err}
					return
				}
				if ev.Todo.Text != text {
					results <- outcome{i, fmt.Errorf("received event for %q instead of %q", ev.Todo.Text, text)}
					return
				}
				results <- outcome{i, nil}
			}(i, text, w)
		}

		for i := 0; i < waiters; i++ {
			select {
			case r := <-results:
				assert.NoError(t, r.err, "waiter %d", r.index)
			case <-time.After(t.EventTimeout() + time.Second):
				require.Fail(t, "timed out waiting for concurrent waiters to finish")
			}
		}
	})
}
