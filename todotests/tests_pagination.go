package todotests

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoPaginationTests(t *T) {
	t.Run("limit bounds the page size", func(t *T) {
		for i := 0; i < 3; i++ {
			t.CreateTodo(t.RandomTodoText("page"), false)
		}

		page := t.ListTodos(ldvalue.OptionalInt{}, ldvalue.NewOptionalInt(2))
		assert.LessOrEqual(t, len(page), 2)
	})

	t.Run("offset skips leading records", func(t *T) {
		for i := 0; i < 2; i++ {
			t.CreateTodo(t.RandomTodoText("page"), false)
		}

		all := t.ListAllTodos()
		require.GreaterOrEqual(t, len(all), 2)

		skipped := t.ListTodos(ldvalue.NewOptionalInt(1), ldvalue.NewOptionalInt(1000000))
		require.Len(t, skipped, len(all)-1)
		assert.Equal(t, all[1:], skipped)
	})

	t.Run("offset equal to the total yields an empty page", func(t *T) {
		t.CreateTodo(t.RandomTodoText("page"), false)

		total := len(t.ListAllTodos())
		page := t.ListTodos(ldvalue.NewOptionalInt(total), ldvalue.NewOptionalInt(1000000))
		assert.Empty(t, page)
	})

	t.Run("offset beyond the total yields an empty page", func(t *T) {
		total := len(t.ListAllTodos())
		page := t.ListTodos(ldvalue.NewOptionalInt(total+50), ldvalue.NewOptionalInt(1000000))
		assert.Empty(t, page)
	})
}
