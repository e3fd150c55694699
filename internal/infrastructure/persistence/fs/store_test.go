package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/infrastructure/persistence/compliance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_Compliance(t *testing.T) {
	compliance.RunRepositoryComplianceTest(t, func() (todo.Repository, func()) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		return store, func() {}
	})
}

func TestFSStore_WritesCompatibleDocument(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	id, err := domain.NewID()
	require.NoError(t, err)
	title, err := domain.NewTitle("write me")
	require.NoError(t, err)

	_, err = store.Insert(context.Background(), domain.NewTodo(id, title, time.UnixMilli(1700000000000)))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, id+".json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"`+id+`","title":"write me","completed":false,"completedAt":null,"createdAt":1700000000000}`, string(data))
}

func TestFSStore_FindAllSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	id, err := domain.NewID()
	require.NoError(t, err)
	title, err := domain.NewTitle("only one")
	require.NoError(t, err)
	_, err = store.Insert(context.Background(), domain.NewTodo(id, title, time.Now()))
	require.NoError(t, err)

	todos, err := store.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, id, todos[0].ID)
}

func TestFSStore_InsertDuplicate(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	id, err := domain.NewID()
	require.NoError(t, err)
	title, err := domain.NewTitle("dup")
	require.NoError(t, err)
	td := domain.NewTodo(id, title, time.Now())

	_, err = store.Insert(context.Background(), td)
	require.NoError(t, err)
	_, err = store.Insert(context.Background(), td)
	assert.Error(t, err)
}
