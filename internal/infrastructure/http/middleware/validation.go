package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rezkam/todos/internal/infrastructure/http/response"
)

// CompileSchema compiles a JSON schema document registered under name.
func CompileSchema(name string, data []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return schema, nil
}

// ValidateJSON rejects request bodies that are not JSON or do not match schema
// with 400 VALIDATION_ERROR. Valid bodies are passed on unchanged.
func ValidateJSON(schema *jsonschema.Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				response.ValidationError(w, "body", "unreadable request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			details := validateBody(schema, body)
			if len(details) > 0 {
				slog.WarnContext(r.Context(), "request validation failed",
					"path", r.URL.Path,
					"method", r.Method,
					"invalid_field_count", len(details))
				response.ValidationErrors(w, details)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validateBody returns one detail per failed schema leaf, or nil when body is valid.
func validateBody(schema *jsonschema.Schema, body []byte) []response.ErrorField {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return []response.ErrorField{{Field: "body", Issue: "malformed JSON"}}
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []response.ErrorField{{Field: "body", Issue: err.Error()}}
	}

	var details []response.ErrorField
	collectSchemaErrors(ve, &details)
	if len(details) == 0 {
		details = append(details, response.ErrorField{Field: "body", Issue: ve.Message})
	}
	return details
}

func collectSchemaErrors(err *jsonschema.ValidationError, details *[]response.ErrorField) {
	if len(err.Causes) == 0 {
		*details = append(*details, response.ErrorField{
			Field: fieldName(err),
			Issue: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, details)
	}
}

// fieldName turns the instance location into a field name. Missing required
// properties are reported at the parent, so their names come from the message.
func fieldName(err *jsonschema.ValidationError) string {
	field := strings.TrimPrefix(strings.TrimPrefix(err.InstanceLocation, "#"), "/")
	if field != "" {
		return strings.ReplaceAll(field, "/", ".")
	}

	if strings.HasPrefix(err.Message, "missing properties") {
		if _, rest, ok := strings.Cut(err.Message, "'"); ok {
			if name, _, ok := strings.Cut(rest, "'"); ok {
				return name
			}
		}
	}
	return "body"
}
