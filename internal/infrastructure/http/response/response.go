// Package response writes the JSON and compatibility responses of the todo API.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/todos/internal/domain"
)

// Error codes used in ErrorResponse bodies.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeStore      = "STORE_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// InvalidIDText is the plain-text body of GET /todos/{id} for a malformed id.
const InvalidIDText = "ID is not valid"

// encodeFailedJSON is written when a response cannot be marshaled.
const encodeFailedJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response","details":[]}}`

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// writeJSON marshals before writing the header so an encoding failure can still become a 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailedJSON))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// OK sends a 200 OK response with JSON data.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: []ErrorField{},
		},
	})
}

// ValidationError sends a 400 validation error for a single field.
func ValidationError(w http.ResponseWriter, field, issue string) {
	ValidationErrors(w, []ErrorField{{Field: field, Issue: issue}})
}

// ValidationErrors sends a 400 validation error with field details.
func ValidationErrors(w http.ResponseWriter, details []ErrorField) {
	if details == nil {
		details = []ErrorField{}
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    CodeValidation,
			Message: "validation failed",
			Details: details,
		},
	})
}

// Empty sends a status code with no body.
func Empty(w http.ResponseWriter, statusCode int) {
	w.WriteHeader(statusCode)
}

// PlainText sends a text/plain body.
func PlainText(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(text))
}

// validationDetail reports the field and issue of a validation error, if err is one.
func validationDetail(err error) (ErrorField, bool) {
	var fieldErr *domain.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return ErrorField{Field: fieldErr.Field, Issue: fieldErr.Issue}, true
	case errors.Is(err, domain.ErrTitleRequired):
		return ErrorField{Field: "text", Issue: "required field missing"}, true
	case errors.Is(err, domain.ErrTitleTooLong):
		return ErrorField{Field: "text", Issue: "must be 255 characters or less"}, true
	case errors.Is(err, domain.ErrInvalidRequest):
		return ErrorField{Field: "body", Issue: err.Error()}, true
	}
	return ErrorField{}, false
}

// FromDomainError maps errors on the collection routes (POST and GET /todos).
// Validation failures become VALIDATION_ERROR; anything else is a store error
// reported as 400 with an error object.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if detail, ok := validationDetail(err); ok {
		ValidationErrors(w, []ErrorField{detail})
		return
	}

	slog.ErrorContext(r.Context(), "store operation failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	Error(w, CodeStore, err.Error(), http.StatusBadRequest)
}

// FromItemError maps errors on the /todos/{id} routes.
// Malformed and unknown ids are 404 with no body; store errors are 400 with no body.
func FromItemError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID), errors.Is(err, domain.ErrTodoNotFound):
		Empty(w, http.StatusNotFound)
		return
	}

	if detail, ok := validationDetail(err); ok {
		ValidationErrors(w, []ErrorField{detail})
		return
	}

	slog.ErrorContext(r.Context(), "store operation failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	Empty(w, http.StatusBadRequest)
}
