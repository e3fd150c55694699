package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rezkam/todos/internal/domain"
)

const todoColumns = "id, title, completed, completed_at, created_at"

const (
	insertTodoSQL = `INSERT INTO todos (` + todoColumns + `)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + todoColumns

	listTodosSQL = `SELECT ` + todoColumns + ` FROM todos ORDER BY created_at, id`

	getTodoSQL = `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	deleteTodoSQL = `DELETE FROM todos WHERE id = $1 RETURNING ` + todoColumns

	// Title is only replaced when $2 is non-NULL; completion is always written.
	updateTodoSQL = `UPDATE todos
SET title = COALESCE($2::text, title),
    completed = $3,
    completed_at = $4
WHERE id = $1
RETURNING ` + todoColumns
)

func scanTodo(row pgx.Row) (*domain.Todo, error) {
	var r todoRow
	if err := row.Scan(&r.ID, &r.Title, &r.Completed, &r.CompletedAt, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

// notFound maps pgx.ErrNoRows to domain.ErrTodoNotFound and wraps anything else.
func notFound(err error, op, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}
	return fmt.Errorf("failed to %s todo: %w", op, err)
}

// Insert stores a new todo.
func (s *Store) Insert(ctx context.Context, t *domain.Todo) (*domain.Todo, error) {
	id, err := stringToPgtypeUUID(t.ID)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, insertTodoSQL,
		id,
		t.Title,
		t.Completed,
		timePtrToPgtype(t.CompletedAt),
		timeToPgtype(t.CreatedAt),
	)
	created, err := scanTodo(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}
	return created, nil
}

// FindAll returns every todo ordered by creation time.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	rows, err := s.pool.Query(ctx, listTodosSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Todo, error) {
		return scanTodo(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan todos: %w", err)
	}
	if todos == nil {
		todos = []*domain.Todo{}
	}
	return todos, nil
}

// FindByID retrieves a todo by ID.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	pgID, err := stringToPgtypeUUID(id)
	if err != nil {
		return nil, err
	}

	t, err := scanTodo(s.pool.QueryRow(ctx, getTodoSQL, pgID))
	if err != nil {
		return nil, notFound(err, "get", id)
	}
	return t, nil
}

// FindByIDAndRemove deletes a todo and returns the deleted row.
func (s *Store) FindByIDAndRemove(ctx context.Context, id string) (*domain.Todo, error) {
	pgID, err := stringToPgtypeUUID(id)
	if err != nil {
		return nil, err
	}

	t, err := scanTodo(s.pool.QueryRow(ctx, deleteTodoSQL, pgID))
	if err != nil {
		return nil, notFound(err, "delete", id)
	}
	return t, nil
}

// FindByIDAndUpdate applies update in a single statement and returns the updated row.
func (s *Store) FindByIDAndUpdate(ctx context.Context, id string, update domain.TodoUpdate) (*domain.Todo, error) {
	pgID, err := stringToPgtypeUUID(id)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, updateTodoSQL,
		pgID,
		stringPtrToPgtype(update.Title),
		update.Completed,
		timePtrToPgtype(update.CompletedAt),
	)
	t, err := scanTodo(row)
	if err != nil {
		return nil, notFound(err, "update", id)
	}
	return t, nil
}
