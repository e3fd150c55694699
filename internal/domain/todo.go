package domain

import "time"

// Todo is the single entity managed by the service.
//
// CompletedAt is non-nil if and only if Completed is true. Use Complete and
// Reopen to change completion state so the pair never drifts apart.
type Todo struct {
	ID          string
	Title       string
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// NewTodo builds an open todo with the given title.
func NewTodo(id string, title Title, now time.Time) *Todo {
	return &Todo{
		ID:        id,
		Title:     title.String(),
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
}

// Complete marks the todo done at the given time.
// Completing an already completed todo refreshes CompletedAt.
func (t *Todo) Complete(at time.Time) {
	at = at.UTC().Truncate(time.Millisecond)
	t.Completed = true
	t.CompletedAt = &at
}

// Reopen marks the todo as not done and clears CompletedAt.
func (t *Todo) Reopen() {
	t.Completed = false
	t.CompletedAt = nil
}

// Apply applies a field-level update to the todo in place.
func (t *Todo) Apply(u TodoUpdate) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	t.Completed = u.Completed
	t.CompletedAt = u.CompletedAt
}

// TodoUpdate is a partial update for a todo.
//
// Completed and CompletedAt are always written; Title only when non-nil.
// Build it with NewTodoUpdate so the completion invariant holds.
type TodoUpdate struct {
	Title       *string
	Completed   bool
	CompletedAt *time.Time
}

// NewTodoUpdate derives the stored completion fields from a patch.
// A patch that completes the todo stamps now as CompletedAt; anything else
// reopens it.
func NewTodoUpdate(title *Title, complete bool, now time.Time) TodoUpdate {
	var u TodoUpdate
	if title != nil {
		s := title.String()
		u.Title = &s
	}
	if complete {
		at := now.UTC().Truncate(time.Millisecond)
		u.Completed = true
		u.CompletedAt = &at
	}
	return u
}
