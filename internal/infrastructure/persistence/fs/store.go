// Package fs stores each todo as a JSON document in a local directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/infrastructure/persistence/document"
)

// maxConcurrency bounds parallel file reads in FindAll to avoid "too many open files".
const maxConcurrency = 20

// Store is a filesystem-based implementation of todo.Repository.
//
// Writes hold the store lock for the whole read-modify-write, so
// find-and-modify is atomic within one process.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

var _ todo.Repository = (*Store)(nil)

// NewStore creates a new filesystem store.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Close is a no-op; files are written synchronously.
func (s *Store) Close() error {
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Insert writes a new todo document. An existing document with the same ID is an error.
func (s *Store) Insert(ctx context.Context, t *domain.Todo) (*domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(t.ID)); err == nil {
		return nil, fmt.Errorf("todo with ID %s already exists", t.ID)
	}
	if err := s.write(t); err != nil {
		return nil, err
	}
	return t, nil
}

// FindAll loads every document in parallel and returns them in creation order.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		todos = []*domain.Todo{}
	)
	semaphore := make(chan struct{}, maxConcurrency)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		wg.Add(1)
		semaphore <- struct{}{}

		go func(filename string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			data, err := os.ReadFile(filepath.Join(s.baseDir, filename))
			if err != nil {
				slog.WarnContext(ctx, "skipping unreadable todo document", "file", filename, "error", err)
				return
			}
			t, err := document.Unmarshal(data)
			if err != nil {
				slog.WarnContext(ctx, "skipping malformed todo document", "file", filename, "error", err)
				return
			}

			mu.Lock()
			todos = append(todos, t)
			mu.Unlock()
		}(entry.Name())
	}

	wg.Wait()
	document.Sort(todos)
	return todos, nil
}

// FindByID reads a single todo document.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(id)
}

// FindByIDAndRemove deletes a todo document and returns what it held.
func (s *Store) FindByIDAndRemove(ctx context.Context, id string) (*domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.read(id)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(s.path(id)); err != nil {
		return nil, fmt.Errorf("failed to remove file: %w", err)
	}
	return t, nil
}

// FindByIDAndUpdate rewrites a todo document with update applied.
func (s *Store) FindByIDAndUpdate(ctx context.Context, id string, update domain.TodoUpdate) (*domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.read(id)
	if err != nil {
		return nil, err
	}
	t.Apply(update)
	if err := s.write(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) read(id string) (*domain.Todo, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return document.Unmarshal(data)
}

// write replaces the document atomically via a temp file and rename.
func (s *Store) write(t *domain.Todo) error {
	data, err := document.Marshal(t)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.baseDir, ".todo-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(t.ID)); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
