package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/rezkam/todos/internal/domain"
)

// Config holds configuration for the Service.
type Config struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Patch is the allow-listed subset of a todo a client may change.
type Patch struct {
	// Text replaces the title when non-nil.
	Text *string
	// Complete marks the todo done; false reopens it.
	Complete bool
}

// Service provides the todo use cases on top of a Repository.
type Service struct {
	repo   Repository
	config Config
}

// NewService creates a new todo service.
// Applies defaults for zero config values.
func NewService(repo Repository, config Config) *Service {
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Service{
		repo:   repo,
		config: config,
	}
}

// CreateTodo creates an open todo titled text.
func (s *Service) CreateTodo(ctx context.Context, text string) (*domain.Todo, error) {
	title, err := domain.NewTitle(text)
	if err != nil {
		return nil, err // ErrTitleRequired or ErrTitleTooLong
	}

	id, err := domain.NewID()
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, domain.NewTodo(id, title, s.config.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}

	return created, nil
}

// ListTodos returns every todo.
func (s *Service) ListTodos(ctx context.Context) ([]*domain.Todo, error) {
	todos, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	if todos == nil {
		todos = []*domain.Todo{}
	}
	return todos, nil
}

// GetTodo retrieves a todo by ID.
// Returns domain.ErrInvalidID for malformed IDs without touching the store.
func (s *Service) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	id, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// DeleteTodo removes a todo and returns the removed document.
func (s *Service) DeleteTodo(ctx context.Context, id string) (*domain.Todo, error) {
	id, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	return s.repo.FindByIDAndRemove(ctx, id)
}

// UpdateTodo applies patch to the todo and returns the updated document.
//
// Completion is derived, not copied: a patch with Complete set stamps the
// current time as CompletedAt, any other patch reopens the todo.
func (s *Service) UpdateTodo(ctx context.Context, id string, patch Patch) (*domain.Todo, error) {
	id, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	var title *domain.Title
	if patch.Text != nil {
		t, err := domain.NewTitle(*patch.Text)
		if err != nil {
			return nil, err
		}
		title = &t
	}

	return s.repo.FindByIDAndUpdate(ctx, id, domain.NewTodoUpdate(title, patch.Complete, s.config.Now()))
}
