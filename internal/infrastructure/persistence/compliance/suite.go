// Package compliance holds the behaviour every todo.Repository backend must share.
package compliance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRepositoryComplianceTest runs a standard set of tests against a Repository implementation.
// setup returns a fresh (empty) repository and a cleanup function for its resources.
func RunRepositoryComplianceTest(t *testing.T, setup func() (todo.Repository, func())) {
	t.Run("InsertAndFindByID", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		want := newTodo(t, "buy milk", time.Now())

		inserted, err := store.Insert(ctx, want)
		require.NoError(t, err)
		assertSameTodo(t, want, inserted)

		fetched, err := store.FindByID(ctx, want.ID)
		require.NoError(t, err)
		assertSameTodo(t, want, fetched)
		assert.False(t, fetched.Completed)
		assert.Nil(t, fetched.CompletedAt)
	})

	t.Run("FindAllEmpty", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		todos, err := store.FindAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, todos)
		assert.Empty(t, todos)
	})

	t.Run("FindAllInCreationOrder", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		base := time.Now().Add(-time.Hour)
		first := newTodo(t, "first", base)
		second := newTodo(t, "second", base.Add(time.Second))
		third := newTodo(t, "third", base.Add(2*time.Second))

		// Insert out of order; results must still follow createdAt.
		for _, td := range []*domain.Todo{second, third, first} {
			_, err := store.Insert(ctx, td)
			require.NoError(t, err)
		}

		todos, err := store.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, todos, 3)
		assert.Equal(t, first.ID, todos[0].ID)
		assert.Equal(t, second.ID, todos[1].ID)
		assert.Equal(t, third.ID, todos[2].ID)
	})

	t.Run("FindByIDNotFound", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		_, err := store.FindByID(context.Background(), mustID(t))
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	})

	t.Run("FindByIDAndRemove", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		want := newTodo(t, "remove me", time.Now())
		_, err := store.Insert(ctx, want)
		require.NoError(t, err)

		removed, err := store.FindByIDAndRemove(ctx, want.ID)
		require.NoError(t, err)
		assertSameTodo(t, want, removed)

		_, err = store.FindByID(ctx, want.ID)
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)

		_, err = store.FindByIDAndRemove(ctx, want.ID)
		assert.ErrorIs(t, err, domain.ErrTodoNotFound, "second remove must report not found")
	})

	t.Run("FindByIDAndUpdateCompletes", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		want := newTodo(t, "finish report", time.Now())
		_, err := store.Insert(ctx, want)
		require.NoError(t, err)

		completedAt := time.Now().UTC().Truncate(time.Millisecond)
		updated, err := store.FindByIDAndUpdate(ctx, want.ID, domain.NewTodoUpdate(nil, true, completedAt))
		require.NoError(t, err)

		assert.Equal(t, want.ID, updated.ID)
		assert.Equal(t, "finish report", updated.Title, "title untouched when not patched")
		assert.True(t, updated.Completed)
		require.NotNil(t, updated.CompletedAt)
		assert.Equal(t, completedAt.UnixMilli(), updated.CompletedAt.UnixMilli())
		assert.Equal(t, want.CreatedAt.UnixMilli(), updated.CreatedAt.UnixMilli())

		fetched, err := store.FindByID(ctx, want.ID)
		require.NoError(t, err)
		assert.True(t, fetched.Completed)
		require.NotNil(t, fetched.CompletedAt)
		assert.Equal(t, completedAt.UnixMilli(), fetched.CompletedAt.UnixMilli())
	})

	t.Run("FindByIDAndUpdateReopensAndRenames", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		want := newTodo(t, "old title", time.Now())
		want.Complete(time.Now())
		_, err := store.Insert(ctx, want)
		require.NoError(t, err)

		title, err := domain.NewTitle("new title")
		require.NoError(t, err)

		updated, err := store.FindByIDAndUpdate(ctx, want.ID, domain.NewTodoUpdate(&title, false, time.Now()))
		require.NoError(t, err)

		assert.Equal(t, "new title", updated.Title)
		assert.False(t, updated.Completed)
		assert.Nil(t, updated.CompletedAt)
	})

	t.Run("FindByIDAndUpdateNotFound", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		_, err := store.FindByIDAndUpdate(context.Background(), mustID(t), domain.NewTodoUpdate(nil, true, time.Now()))
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	})

	t.Run("ConcurrentUpdatesKeepInvariant", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		want := newTodo(t, "contended", time.Now())
		_, err := store.Insert(ctx, want)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(complete bool) {
				defer wg.Done()
				_, err := store.FindByIDAndUpdate(ctx, want.ID, domain.NewTodoUpdate(nil, complete, time.Now()))
				assert.NoError(t, err)
			}(i%2 == 0)
		}
		wg.Wait()

		fetched, err := store.FindByID(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, fetched.Completed, fetched.CompletedAt != nil)
	})
}

func mustID(t *testing.T) string {
	t.Helper()
	id, err := domain.NewID()
	require.NoError(t, err)
	return id
}

func newTodo(t *testing.T, title string, createdAt time.Time) *domain.Todo {
	t.Helper()
	tt, err := domain.NewTitle(title)
	require.NoError(t, err)
	return domain.NewTodo(mustID(t), tt, createdAt)
}

func assertSameTodo(t *testing.T, want, got *domain.Todo) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Completed, got.Completed)
	assert.Equal(t, want.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
	if want.CompletedAt == nil {
		assert.Nil(t, got.CompletedAt)
	} else {
		require.NotNil(t, got.CompletedAt)
		assert.Equal(t, want.CompletedAt.UnixMilli(), got.CompletedAt.UnixMilli())
	}
}
