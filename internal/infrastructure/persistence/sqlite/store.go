package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
)

// Store implements todo.Repository on SQLite. Times are stored as epoch milliseconds.
type Store struct {
	db *sql.DB
}

var _ todo.Repository = (*Store)(nil)

const todoColumns = "id, title, completed, completed_at, created_at"

const (
	insertTodoSQL = `INSERT INTO todos (` + todoColumns + `) VALUES (?, ?, ?, ?, ?)
RETURNING ` + todoColumns

	listTodosSQL = `SELECT ` + todoColumns + ` FROM todos ORDER BY created_at, id`

	getTodoSQL = `SELECT ` + todoColumns + ` FROM todos WHERE id = ?`

	deleteTodoSQL = `DELETE FROM todos WHERE id = ? RETURNING ` + todoColumns

	updateTodoSQL = `UPDATE todos
SET title = COALESCE(?, title),
    completed = ?,
    completed_at = ?
WHERE id = ?
RETURNING ` + todoColumns
)

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (*domain.Todo, error) {
	var (
		t           domain.Todo
		completedAt sql.NullInt64
		createdAt   int64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &completedAt, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt = time.UnixMilli(createdAt).UTC()
	if completedAt.Valid {
		at := time.UnixMilli(completedAt.Int64).UTC()
		t.CompletedAt = &at
	}
	return &t, nil
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func notFound(err error, op, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}
	return fmt.Errorf("failed to %s todo: %w", op, err)
}

// Insert stores a new todo.
func (s *Store) Insert(ctx context.Context, t *domain.Todo) (*domain.Todo, error) {
	row := s.db.QueryRowContext(ctx, insertTodoSQL,
		t.ID, t.Title, t.Completed, nullMillis(t.CompletedAt), t.CreatedAt.UnixMilli())
	created, err := scanTodo(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}
	return created, nil
}

// FindAll returns every todo ordered by creation time.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	rows, err := s.db.QueryContext(ctx, listTodosSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*domain.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

// FindByID retrieves a todo by ID.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	t, err := scanTodo(s.db.QueryRowContext(ctx, getTodoSQL, id))
	if err != nil {
		return nil, notFound(err, "get", id)
	}
	return t, nil
}

// FindByIDAndRemove deletes a todo and returns the deleted row.
func (s *Store) FindByIDAndRemove(ctx context.Context, id string) (*domain.Todo, error) {
	t, err := scanTodo(s.db.QueryRowContext(ctx, deleteTodoSQL, id))
	if err != nil {
		return nil, notFound(err, "delete", id)
	}
	return t, nil
}

// FindByIDAndUpdate applies update in a single statement and returns the updated row.
func (s *Store) FindByIDAndUpdate(ctx context.Context, id string, update domain.TodoUpdate) (*domain.Todo, error) {
	var title sql.NullString
	if update.Title != nil {
		title = sql.NullString{String: *update.Title, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, updateTodoSQL,
		title, update.Completed, nullMillis(update.CompletedAt), id)
	t, err := scanTodo(row)
	if err != nil {
		return nil, notFound(err, "update", id)
	}
	return t, nil
}
