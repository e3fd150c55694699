package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters in a todo title.
const MaxTitleLength = 255

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if utf8.RuneCountInString(s) > MaxTitleLength {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}
