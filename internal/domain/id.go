package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID generates a new time-ordered todo ID (UUIDv7).
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// IsValidID reports whether s is a syntactically valid todo ID.
// Only the canonical 36-character form is accepted.
func IsValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	return uuid.Validate(s) == nil
}

// ParseID validates s and returns it in canonical lower-case form.
func ParseID(s string) (string, error) {
	if !IsValidID(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	return id.String(), nil
}
