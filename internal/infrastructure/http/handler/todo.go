package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/infrastructure/http/response"
)

// createTodoRequest is the POST /todos body. Unknown fields are ignored.
type createTodoRequest struct {
	Text string `json:"text"`
}

// patchTodoRequest is the PATCH /todos/{id} body, limited to the allow-listed fields.
type patchTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

func (p patchTodoRequest) toPatch() todo.Patch {
	return todo.Patch{
		Text:     p.Text,
		Complete: p.Completed != nil && *p.Completed,
	}
}

// decodeBody decodes a body that already passed schema validation.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.FieldError{Field: "body", Issue: "malformed JSON"}
	}
	return nil
}

// CreateTodo handles POST /todos and returns the saved document unwrapped.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeBody(r, &req); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	created, err := h.todoService.CreateTodo(r.Context(), req.Text)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapTodoToDTO(created))
}

// ListTodos handles GET /todos.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todoService.ListTodos(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, TodoListResponse{Todos: MapTodosToDTO(todos)})
}

// GetTodo handles GET /todos/{id}. A malformed id answers 404 with a plain-text reason.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	found, err := h.todoService.GetTodo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidID) {
			response.PlainText(w, http.StatusNotFound, response.InvalidIDText)
			return
		}
		response.FromItemError(w, r, err)
		return
	}

	response.OK(w, TodoResponse{Todo: MapTodoToDTO(found)})
}

// DeleteTodo handles DELETE /todos/{id} and returns the removed document.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	removed, err := h.todoService.DeleteTodo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromItemError(w, r, err)
		return
	}

	response.OK(w, TodoResponse{Todo: MapTodoToDTO(removed)})
}

// UpdateTodo handles PATCH /todos/{id} and returns the updated document.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	var req patchTodoRequest
	if err := decodeBody(r, &req); err != nil {
		response.FromItemError(w, r, err)
		return
	}

	updated, err := h.todoService.UpdateTodo(r.Context(), chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		response.FromItemError(w, r, err)
		return
	}

	response.OK(w, TodoResponse{Todo: MapTodoToDTO(updated)})
}
