package todotests

import (
	"net/http"

	"github.com/stretchr/testify/assert"

	"github.com/todobackend/ws-contract-tests/push"
)

func DoCRUDTests(t *T) {
	t.Run("create returns the new record and broadcasts new_todo", func(t *T) {
		text := t.RandomTodoText("create")
		w := t.ExpectTodoEventWithText(push.EventCreated, text)

		todo := t.CreateTodo(text, false)
		assert.Equal(t, text, todo.Text)
		assert.False(t, todo.Completed)

		ev := t.RequireEvent(w)
		assert.Equal(t, push.EventCreated, ev.Kind)
		assert.Equal(t, todo, ev.Todo)
	})

	t.Run("update returns the new fields and broadcasts update_todo", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("update"), false)

		newText := t.RandomTodoText("updated")
		w := t.ExpectTodoEvent(push.EventUpdated, todo.ID)

		updated := t.UpdateTodo(todo.ID, newText, true)
		assert.Equal(t, todo.ID, updated.ID)
		assert.Equal(t, newText, updated.Text)
		assert.True(t, updated.Completed)

		ev := t.RequireEvent(w)
		assert.Equal(t, updated, ev.Todo)
	})

	t.Run("delete removes the record and broadcasts delete_todo", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("delete"), true)

		w := t.ExpectTodoEvent(push.EventDeleted, todo.ID)
		t.DeleteTodo(todo.ID)

		ev := t.RequireEvent(w)
		assert.Equal(t, todo.ID, ev.Todo.ID)

		resp, err := t.Client().DeleteRaw(todo.ID, true)
		t.RequireStatus(resp, err, http.StatusNotFound)
	})

	t.Run("full lifecycle", func(t *T) {
		created := t.ExpectTodoEventWithText(push.EventCreated, "abc")
		todo := t.CreateTodo("abc", false)
		assert.Equal(t, "abc", todo.Text)
		assert.False(t, todo.Completed)

		ev := t.RequireEvent(created)
		assert.Equal(t, todo.ID, ev.Todo.ID)
		assert.Equal(t, "abc", ev.Todo.Text)
		assert.False(t, ev.Todo.Completed)

		updated := t.ExpectTodoEvent(push.EventUpdated, todo.ID)
		after := t.UpdateTodo(todo.ID, "xyz", true)
		assert.Equal(t, todo.ID, after.ID)
		assert.Equal(t, "xyz", after.Text)
		assert.True(t, after.Completed)

		ev = t.RequireEvent(updated)
		assert.Equal(t, "xyz", ev.Todo.Text)
		assert.True(t, ev.Todo.Completed)

		deleted := t.ExpectTodoEvent(push.EventDeleted, todo.ID)
		t.DeleteTodo(todo.ID)
		ev = t.RequireEvent(deleted)
		assert.Equal(t, todo.ID, ev.Todo.ID)

		resp, err := t.Client().DeleteRaw(todo.ID, true)
		t.RequireStatus(resp, err, http.StatusNotFound)
	})
}
