package todo

import (
	"context"

	"github.com/rezkam/todos/internal/domain"
)

// Repository defines the document-store capability the service depends on.
// Every method is a single-document operation; "no such document" is reported
// as domain.ErrTodoNotFound rather than a nil result.
type Repository interface {
	// Insert stores a new todo and returns it as persisted.
	Insert(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)

	// FindAll returns every stored todo in creation order.
	// Returns an empty (non-nil) slice when the store is empty.
	FindAll(ctx context.Context) ([]*domain.Todo, error)

	// FindByID retrieves a todo by ID.
	// Returns domain.ErrTodoNotFound if it doesn't exist.
	FindByID(ctx context.Context, id string) (*domain.Todo, error)

	// FindByIDAndRemove atomically deletes a todo and returns the removed document.
	// Returns domain.ErrTodoNotFound if it doesn't exist.
	FindByIDAndRemove(ctx context.Context, id string) (*domain.Todo, error)

	// FindByIDAndUpdate atomically applies update and returns the updated document.
	// Returns domain.ErrTodoNotFound if it doesn't exist.
	FindByIDAndUpdate(ctx context.Context, id string, update domain.TodoUpdate) (*domain.Todo, error)
}
