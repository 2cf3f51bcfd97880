package todotests

import (
	"net/http"

	"github.com/stretchr/testify/assert"
)

func DoAuthTests(t *T) {
	t.Run("delete without Authorization header returns 401", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("auth"), false)

		resp, err := t.Client().DeleteRaw(todo.ID, false)
		t.RequireStatus(resp, err, http.StatusUnauthorized)

		// The record must have survived the rejected delete.
		found := false
		for _, item := range t.ListAllTodos() {
			if item.ID == todo.ID {
				found = true
				break
			}
		}
		assert.True(t, found, "todo %d disappeared after an unauthorized delete", todo.ID)
	})

	t.Run("delete with Authorization header succeeds", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("auth"), false)

		resp, err := t.Client().DeleteRaw(todo.ID, true)
		t.RequireStatus(resp, err, http.StatusNoContent)
	})
}
