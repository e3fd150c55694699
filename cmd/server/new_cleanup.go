package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner abstracts the HTTP server so tests can verify cleanup ordering
// without binding a port.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup constructs the shutdown hook: drain in-flight requests first,
// then close the store they may still be using.
func newCleanup(ctx context.Context, server shutdowner, store io.Closer) func() {
	return func() {
		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				slog.Error("failed to shut down HTTP server", slog.String("error", err.Error()))
			}
		}

		if store != nil {
			if err := store.Close(); err != nil {
				slog.Error("failed to close store", slog.String("error", err.Error()))
			}
		}
	}
}
