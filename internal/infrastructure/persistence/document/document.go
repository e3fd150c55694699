// Package document defines the JSON representation of a todo used by the
// file and object-store backends.
package document

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/rezkam/todos/internal/domain"
)

// Todo is the stored JSON form of a domain.Todo. Times are epoch milliseconds.
type Todo struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatedAt   int64  `json:"createdAt"`
}

// FromDomain converts a domain todo to its stored form.
func FromDomain(t *domain.Todo) Todo {
	doc := Todo{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.UnixMilli(),
	}
	if t.CompletedAt != nil {
		ms := t.CompletedAt.UnixMilli()
		doc.CompletedAt = &ms
	}
	return doc
}

// ToDomain converts a stored document back to a domain todo (times in UTC).
func (d Todo) ToDomain() *domain.Todo {
	t := &domain.Todo{
		ID:        d.ID,
		Title:     d.Title,
		Completed: d.Completed,
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
	}
	if d.CompletedAt != nil {
		at := time.UnixMilli(*d.CompletedAt).UTC()
		t.CompletedAt = &at
	}
	return t
}

// Marshal encodes a todo as an indented JSON document.
func Marshal(t *domain.Todo) ([]byte, error) {
	data, err := json.MarshalIndent(FromDomain(t), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal todo: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON document into a domain todo.
func Unmarshal(data []byte) (*domain.Todo, error) {
	var doc Todo
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal todo: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("failed to unmarshal todo: missing _id")
	}
	return doc.ToDomain(), nil
}

// Sort orders todos by creation time, then ID.
func Sort(todos []*domain.Todo) {
	slices.SortFunc(todos, func(a, b *domain.Todo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
