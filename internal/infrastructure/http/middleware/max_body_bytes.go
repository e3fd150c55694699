package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/rezkam/todos/internal/infrastructure/http/response"
)

// CodePayloadTooLarge is the error code of a 413 response.
const CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"

func payloadTooLarge(w http.ResponseWriter) {
	response.Error(w, CodePayloadTooLarge, "request body exceeds size limit", http.StatusRequestEntityTooLarge)
}

// MaxBodyBytes limits request body size and buffers the body for later readers.
//
// A declared Content-Length over the limit is rejected before reading. Otherwise
// the body is read through http.MaxBytesReader, which also catches chunked or
// misdeclared bodies. Oversized requests get 413 in the standard error format.
func MaxBodyBytes(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				payloadTooLarge(w)
				return
			}

			buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			if err != nil {
				slog.WarnContext(r.Context(), "Request body size limit exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"content_length", r.ContentLength,
					"limit", maxBytes,
					"error", err)
				payloadTooLarge(w)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(buf))
			next.ServeHTTP(w, r)
		})
	}
}
