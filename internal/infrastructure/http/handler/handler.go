package handler

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	mw "github.com/rezkam/todos/internal/infrastructure/http/middleware"
	"github.com/rezkam/todos/internal/infrastructure/http/response"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// TodoHandler adapts HTTP requests to todo.Service calls.
type TodoHandler struct {
	todoService  *todo.Service
	createSchema *jsonschema.Schema
	patchSchema  *jsonschema.Schema
}

// NewTodoHandler creates a handler and compiles its request schemas.
func NewTodoHandler(todoService *todo.Service) (*TodoHandler, error) {
	createSchema, err := loadSchema("create_todo.json")
	if err != nil {
		return nil, err
	}
	patchSchema, err := loadSchema("patch_todo.json")
	if err != nil {
		return nil, err
	}

	return &TodoHandler{
		todoService:  todoService,
		createSchema: createSchema,
		patchSchema:  patchSchema,
	}, nil
}

func loadSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return mw.CompileSchema(name, data)
}

// Routes returns the todo routes, to be mounted at /todos.
//
//	POST   /       create
//	GET    /       list
//	GET    /{id}   get
//	DELETE /{id}   delete
//	PATCH  /{id}   partial update
func (h *TodoHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(mw.ValidateJSON(h.createSchema)).Post("/", h.CreateTodo)
	r.Get("/", h.ListTodos)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetTodo)
		r.Delete("/", h.DeleteTodo)
		// The id is checked before the body so a malformed id is always 404.
		r.With(requireValidID, mw.ValidateJSON(h.patchSchema)).Patch("/", h.UpdateTodo)
	})

	return r
}

// requireValidID answers 404 with no body when the {id} parameter is malformed.
func requireValidID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !domain.IsValidID(chi.URLParam(r, "id")) {
			response.Empty(w, http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
