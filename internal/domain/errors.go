package domain

import "errors"

// Domain errors returned by the service and repository implementations.

var (
	// ErrTodoNotFound indicates no todo exists for the given ID.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrInvalidID indicates the provided ID is not a syntactically valid todo ID.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrTitleRequired indicates the title is missing or blank.
	ErrTitleRequired = errors.New("title is required")

	// ErrTitleTooLong indicates the title exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title too long")

	// ErrInvalidRequest indicates a request body that does not match its schema.
	ErrInvalidRequest = errors.New("invalid request")
)

// FieldError describes a validation failure on a single request field.
type FieldError struct {
	Field string
	Issue string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Issue
	}
	return "invalid request: " + e.Field + ": " + e.Issue
}

// Unwrap lets errors.Is match ErrInvalidRequest.
func (e *FieldError) Unwrap() error {
	return ErrInvalidRequest
}
