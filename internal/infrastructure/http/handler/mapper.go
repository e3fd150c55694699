package handler

import (
	"time"

	"github.com/rezkam/todos/internal/domain"
)

// TodoDTO is the wire form of a todo. Times are epoch milliseconds.
type TodoDTO struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatedAt   int64  `json:"createdAt"`
}

// TodoResponse wraps a single todo as {"todo": ...}.
type TodoResponse struct {
	Todo TodoDTO `json:"todo"`
}

// TodoListResponse wraps todos as {"todos": [...]}.
type TodoListResponse struct {
	Todos []TodoDTO `json:"todos"`
}

func ptrMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// MapTodoToDTO converts domain.Todo to TodoDTO.
func MapTodoToDTO(t *domain.Todo) TodoDTO {
	return TodoDTO{
		ID:          t.ID,
		Title:       t.Title,
		Completed:   t.Completed,
		CompletedAt: ptrMillis(t.CompletedAt),
		CreatedAt:   t.CreatedAt.UnixMilli(),
	}
}

// MapTodosToDTO converts a slice of todos; the result is never nil.
func MapTodosToDTO(todos []*domain.Todo) []TodoDTO {
	dtos := make([]TodoDTO, 0, len(todos))
	for _, t := range todos {
		dtos = append(dtos, MapTodoToDTO(t))
	}
	return dtos
}
