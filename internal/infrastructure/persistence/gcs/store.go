// Package gcs stores each todo as a JSON object in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/infrastructure/persistence/document"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

const (
	// ObjectPrefix namespaces todo objects inside the bucket.
	ObjectPrefix = "todos/"

	// maxConcurrency bounds parallel object reads in FindAll.
	maxConcurrency = 20

	// maxAttempts bounds optimistic-concurrency retries on generation conflicts.
	maxAttempts = 5
)

// errConflict marks a lost generation race; the operation is retried.
var errConflict = errors.New("generation conflict")

// Store is a GCS-based implementation of todo.Repository.
//
// Find-and-modify uses object generation preconditions, so concurrent
// writers never overwrite each other's changes.
type Store struct {
	client *storage.Client
	bucket string
}

var _ todo.Repository = (*Store)(nil)

// NewStore creates a new GCS store.
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS)
// or STORAGE_EMULATOR_HOST points at an emulator.
func NewStore(ctx context.Context, bucketName string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return NewStoreWithClient(client, bucketName), nil
}

// NewStoreWithClient wraps an existing client. Close closes the client.
func NewStoreWithClient(client *storage.Client, bucketName string) *Store {
	return &Store{client: client, bucket: bucketName}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func objectName(id string) string {
	return ObjectPrefix + id + ".json"
}

func (s *Store) object(id string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(objectName(id))
}

// Insert creates the todo object, failing if one already exists.
func (s *Store) Insert(ctx context.Context, t *domain.Todo) (*domain.Todo, error) {
	data, err := document.Marshal(t)
	if err != nil {
		return nil, err
	}

	obj := s.object(t.ID).If(storage.Conditions{DoesNotExist: true})
	if err := writeObject(ctx, obj, data); err != nil {
		if isPreconditionFailed(err) {
			return nil, fmt.Errorf("todo with ID %s already exists", t.ID)
		}
		return nil, err
	}
	return t, nil
}

// FindAll lists objects under ObjectPrefix and loads them in parallel.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: ObjectPrefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			names = append(names, attrs.Name)
		}
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		todos = []*domain.Todo{}
	)
	semaphore := make(chan struct{}, maxConcurrency)

	for _, name := range names {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(name string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			t, _, err := readObject(ctx, s.client.Bucket(s.bucket).Object(name))
			if err != nil {
				// Deleted between list and read, or not a todo document.
				if !errors.Is(err, storage.ErrObjectNotExist) {
					slog.WarnContext(ctx, "skipping unreadable todo object", "object", name, "error", err)
				}
				return
			}

			mu.Lock()
			todos = append(todos, t)
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	document.Sort(todos)
	return todos, nil
}

// FindByID reads a single todo object.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	t, _, err := readObject(ctx, s.object(id))
	if err != nil {
		return nil, notFound(err, id)
	}
	return t, nil
}

// FindByIDAndRemove deletes the object at the generation that was read.
func (s *Store) FindByIDAndRemove(ctx context.Context, id string) (*domain.Todo, error) {
	return s.retry(ctx, id, func(obj *storage.ObjectHandle, current *domain.Todo, generation int64) (*domain.Todo, error) {
		err := obj.If(storage.Conditions{GenerationMatch: generation}).Delete(ctx)
		if err != nil {
			return nil, err
		}
		return current, nil
	})
}

// FindByIDAndUpdate rewrites the object at the generation that was read.
func (s *Store) FindByIDAndUpdate(ctx context.Context, id string, update domain.TodoUpdate) (*domain.Todo, error) {
	return s.retry(ctx, id, func(obj *storage.ObjectHandle, current *domain.Todo, generation int64) (*domain.Todo, error) {
		current.Apply(update)
		data, err := document.Marshal(current)
		if err != nil {
			return nil, err
		}
		if err := writeObject(ctx, obj.If(storage.Conditions{GenerationMatch: generation}), data); err != nil {
			return nil, err
		}
		return current, nil
	})
}

// retry runs a read-modify-write against the todo object, retrying when
// another writer changed the object between the read and the write.
func (s *Store) retry(
	ctx context.Context,
	id string,
	fn func(obj *storage.ObjectHandle, current *domain.Todo, generation int64) (*domain.Todo, error),
) (*domain.Todo, error) {
	obj := s.object(id)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		current, generation, err := readObject(ctx, obj)
		if err != nil {
			return nil, notFound(err, id)
		}

		result, err := fn(obj, current, generation)
		switch {
		case err == nil:
			return result, nil
		case isPreconditionFailed(err), errors.Is(err, storage.ErrObjectNotExist):
			slog.DebugContext(ctx, "todo object changed concurrently, retrying",
				"id", id, "attempt", attempt)
			continue
		default:
			return nil, fmt.Errorf("failed to modify todo: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", errConflict, id, maxAttempts)
}

func readObject(ctx context.Context, obj *storage.ObjectHandle) (*domain.Todo, int64, error) {
	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read object: %w", err)
	}
	t, err := document.Unmarshal(data)
	if err != nil {
		return nil, 0, err
	}
	return t, r.Attrs.Generation, nil
}

func writeObject(ctx context.Context, obj *storage.ObjectHandle, data []byte) error {
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	return w.Close()
}

func notFound(err error, id string) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}
	return fmt.Errorf("failed to read todo: %w", err)
}

func isPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed
}
