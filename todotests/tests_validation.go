package todotests

import (
	"net/http"
	"strings"

	"github.com/todobackend/ws-contract-tests/servicedef"
)

// Long enough to exceed any plausible server-side maximum.
const overlongTextLength = 10000

func DoValidationTests(t *T) {
	t.Run("create rejects empty text", func(t *T) {
		resp, err := t.Client().CreateRaw(servicedef.NewTodoRequest("", false))
		t.RequireStatus(resp, err, http.StatusBadRequest)
	})

	t.Run("create rejects whitespace-only text", func(t *T) {
		resp, err := t.Client().CreateRaw(servicedef.NewTodoRequest(" \t  ", false))
		t.RequireStatus(resp, err, http.StatusBadRequest)
	})

	t.Run("create rejects overlong text", func(t *T) {
		resp, err := t.Client().CreateRaw(servicedef.NewTodoRequest(strings.Repeat("x", overlongTextLength), false))
		t.RequireStatus(resp, err, http.StatusBadRequest)
	})

	t.Run("create rejects missing completed flag", func(t *T) {
		resp, err := t.Client().CreateRaw(map[string]interface{}{"text": "no flag"})
		t.RequireStatus(resp, err, http.StatusBadRequest)
	})

	t.Run("update rejects empty text", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("validate"), false)
		resp, err := t.Client().UpdateRaw(todo.ID, servicedef.NewTodoRequest("", true))
		t.RequireStatus(resp, err, http.StatusBadRequest)
	})

	t.Run("update rejects whitespace-only text", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("validate"), false)
		resp, err := t.Client().UpdateRaw(todo.ID, servicedef.NewTodoRequest(" \t  ", true))
		t.RequireStatus(resp, err, http.StatusBadRequest)
	})

	t.Run("update rejects overlong text", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("validate"), false)
		resp, err := t.Client().UpdateRaw(todo.ID, servicedef.NewTodoRequest(strings.Repeat("x", overlongTextLength), true))
		t.RequireStatus(resp, err, http.StatusBadRequest)
	})

	t.Run("update rejects missing completed flag", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("validate"), false)
		resp, err := t.Client().UpdateRaw(todo.ID, map[string]interface{}{"text": "no flag"})
		t.RequireStatus(resp, err, http.StatusBadRequest)
	})

	t.Run("update of unknown id returns 404", func(t *T) {
		todo := t.CreateTodo(t.RandomTodoText("gone"), false)
		t.DeleteTodo(todo.ID)

		resp, err := t.Client().UpdateRaw(todo.ID, servicedef.NewTodoRequest("still valid text", false))
		t.RequireStatus(resp, err, http.StatusNotFound)
	})
}
