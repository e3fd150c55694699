package todo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rezkam/todos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo is a function-field mock; unset functions panic so tests fail loudly
// when the service touches the store unexpectedly.
type mockRepo struct {
	insertFn            func(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	findAllFn           func(ctx context.Context) ([]*domain.Todo, error)
	findByIDFn          func(ctx context.Context, id string) (*domain.Todo, error)
	findByIDAndRemoveFn func(ctx context.Context, id string) (*domain.Todo, error)
	findByIDAndUpdateFn func(ctx context.Context, id string, update domain.TodoUpdate) (*domain.Todo, error)
}

func (m *mockRepo) Insert(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, todo)
	}
	panic("Insert not implemented")
}

func (m *mockRepo) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	panic("FindAll not implemented")
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	panic("FindByID not implemented")
}

func (m *mockRepo) FindByIDAndRemove(ctx context.Context, id string) (*domain.Todo, error) {
	if m.findByIDAndRemoveFn != nil {
		return m.findByIDAndRemoveFn(ctx, id)
	}
	panic("FindByIDAndRemove not implemented")
}

func (m *mockRepo) FindByIDAndUpdate(ctx context.Context, id string, update domain.TodoUpdate) (*domain.Todo, error) {
	if m.findByIDAndUpdateFn != nil {
		return m.findByIDAndUpdateFn(ctx, id, update)
	}
	panic("FindByIDAndUpdate not implemented")
}

var fixedNow = time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC)

func newTestService(repo Repository) *Service {
	return NewService(repo, Config{Now: func() time.Time { return fixedNow }})
}

func TestNewService_DefaultsClock(t *testing.T) {
	svc := NewService(&mockRepo{}, Config{})
	require.NotNil(t, svc.config.Now)
}

func TestCreateTodo(t *testing.T) {
	t.Run("builds open todo with generated id", func(t *testing.T) {
		var inserted *domain.Todo
		repo := &mockRepo{
			insertFn: func(_ context.Context, todo *domain.Todo) (*domain.Todo, error) {
				inserted = todo
				return todo, nil
			},
		}

		created, err := newTestService(repo).CreateTodo(context.Background(), "  buy milk ")
		require.NoError(t, err)

		require.NotNil(t, inserted)
		assert.True(t, domain.IsValidID(created.ID))
		assert.Equal(t, "buy milk", created.Title)
		assert.False(t, created.Completed)
		assert.Nil(t, created.CompletedAt)
		assert.Equal(t, fixedNow, created.CreatedAt)
	})

	t.Run("rejects blank title before store", func(t *testing.T) {
		_, err := newTestService(&mockRepo{}).CreateTodo(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrTitleRequired)
	})

	t.Run("wraps store errors", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		repo := &mockRepo{
			insertFn: func(context.Context, *domain.Todo) (*domain.Todo, error) {
				return nil, storeErr
			},
		}

		_, err := newTestService(repo).CreateTodo(context.Background(), "buy milk")
		assert.ErrorIs(t, err, storeErr)
		assert.Contains(t, err.Error(), "failed to insert todo")
	})
}

func TestListTodos_NilBecomesEmpty(t *testing.T) {
	repo := &mockRepo{
		findAllFn: func(context.Context) ([]*domain.Todo, error) {
			return nil, nil
		},
	}

	todos, err := newTestService(repo).ListTodos(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestIDOperations_InvalidIDNeverReachesStore(t *testing.T) {
	svc := newTestService(&mockRepo{})
	ctx := context.Background()

	_, err := svc.GetTodo(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.DeleteTodo(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.UpdateTodo(ctx, "not-an-id", Patch{Complete: true})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestGetTodo_PassesNotFoundThrough(t *testing.T) {
	id, err := domain.NewID()
	require.NoError(t, err)

	repo := &mockRepo{
		findByIDFn: func(_ context.Context, got string) (*domain.Todo, error) {
			assert.Equal(t, id, got)
			return nil, domain.ErrTodoNotFound
		},
	}

	_, err = newTestService(repo).GetTodo(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestDeleteTodo_ReturnsRemoved(t *testing.T) {
	id, err := domain.NewID()
	require.NoError(t, err)

	repo := &mockRepo{
		findByIDAndRemoveFn: func(_ context.Context, got string) (*domain.Todo, error) {
			return &domain.Todo{ID: got, Title: "gone"}, nil
		},
	}

	removed, err := newTestService(repo).DeleteTodo(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, removed.ID)
}

func TestUpdateTodo_DerivesCompletion(t *testing.T) {
	id, err := domain.NewID()
	require.NoError(t, err)

	tests := []struct {
		name          string
		patch         Patch
		wantCompleted bool
		wantTitle     *string
	}{
		{name: "complete", patch: Patch{Complete: true}, wantCompleted: true},
		{name: "omitted completes nothing", patch: Patch{}, wantCompleted: false},
		{name: "title only reopens", patch: Patch{Text: strPtr(" walk dog ")}, wantCompleted: false, wantTitle: strPtr("walk dog")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured domain.TodoUpdate
			repo := &mockRepo{
				findByIDAndUpdateFn: func(_ context.Context, _ string, update domain.TodoUpdate) (*domain.Todo, error) {
					captured = update
					todo := &domain.Todo{ID: id, Title: "old"}
					todo.Apply(update)
					return todo, nil
				},
			}

			updated, err := newTestService(repo).UpdateTodo(context.Background(), id, tt.patch)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCompleted, captured.Completed)
			assert.Equal(t, tt.wantCompleted, updated.Completed)
			if tt.wantCompleted {
				require.NotNil(t, captured.CompletedAt)
				assert.Equal(t, fixedNow, *captured.CompletedAt)
			} else {
				assert.Nil(t, captured.CompletedAt)
			}
			assert.Equal(t, tt.wantTitle, captured.Title)
		})
	}
}

func TestUpdateTodo_RejectsBlankText(t *testing.T) {
	id, err := domain.NewID()
	require.NoError(t, err)

	_, err = newTestService(&mockRepo{}).UpdateTodo(context.Background(), id, Patch{Text: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func strPtr(s string) *string {
	return &s
}
