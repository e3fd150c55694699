package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/infrastructure/persistence/compliance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Compliance(t *testing.T) {
	compliance.RunRepositoryComplianceTest(t, func() (todo.Repository, func()) {
		store, err := NewStore(context.Background(), ":memory:")
		require.NoError(t, err)

		return store, func() {
			_ = store.Close()
		}
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "todos.db")

	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)

	id, err := domain.NewID()
	require.NoError(t, err)
	title, err := domain.NewTitle("survives restart")
	require.NoError(t, err)

	_, err = store.Insert(ctx, domain.NewTodo(id, title, time.Now()))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening reruns migrations, which must be a no-op.
	reopened, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "survives restart", got.Title)
}

func TestSQLiteStore_RejectsInconsistentCompletion(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	id, err := domain.NewID()
	require.NoError(t, err)

	_, err = store.DB().ExecContext(ctx,
		`INSERT INTO todos (id, title, completed, completed_at, created_at) VALUES (?, 'x', 1, NULL, 0)`, id)
	assert.Error(t, err, "completed without completed_at must violate the table check")
}
