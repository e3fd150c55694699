package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todos/internal/config"
)

func TestNewCleanup_ShutsDownServerBeforeClosingStore(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey("test"), "marker")
	var callOrder []string

	server := &fakeServer{calls: &callOrder}
	store := &fakeStore{calls: &callOrder}

	cleanup := newCleanup(ctx, server, store)

	cleanup()

	require.Equal(t, []string{"serverShutdown", "storeClose"}, callOrder)
	require.Equal(t, "marker", server.receivedCtx.Value(ctxKey("test")))
}

func TestNewCleanup_ClosesStoreWhenShutdownFails(t *testing.T) {
	var callOrder []string

	server := &fakeServer{calls: &callOrder, err: errors.New("deadline exceeded")}
	store := &fakeStore{calls: &callOrder}

	newCleanup(context.Background(), server, store)()

	require.Equal(t, []string{"serverShutdown", "storeClose"}, callOrder)
}

func TestNewCleanup_NilDependencies(t *testing.T) {
	assert.NotPanics(t, func() {
		newCleanup(context.Background(), nil, nil)()
	})
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "with password", in: "postgres://todos:secret@db:5432/todos", want: "postgres://todos:xxxxxx@db:5432/todos"},
		{name: "without password", in: "postgres://todos@db:5432/todos", want: "postgres://todos@db:5432/todos"},
		{name: "no user info", in: "file:todos.db", want: "file:todos.db"},
		{name: "unparseable", in: "postgres://%zz", want: "[REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskPassword(tt.in))
		})
	}
}

func TestStorageLocation(t *testing.T) {
	assert.Equal(t, "postgres://u:xxxxxx@h/db",
		storageLocation(config.StorageConfig{Driver: config.DriverPostgres, DSN: "postgres://u:p@h/db"}))
	assert.Equal(t, "/var/todos", storageLocation(config.StorageConfig{Driver: config.DriverFS, FSDir: "/var/todos"}))
	assert.Equal(t, "gs://bucket", storageLocation(config.StorageConfig{Driver: config.DriverGCS, GCSBucket: "bucket"}))
}

type ctxKey string

type fakeServer struct {
	calls       *[]string
	receivedCtx context.Context
	err         error
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.receivedCtx = ctx
	*f.calls = append(*f.calls, "serverShutdown")
	return f.err
}

type fakeStore struct {
	calls *[]string
}

func (s *fakeStore) Close() error {
	*s.calls = append(*s.calls, "storeClose")
	return nil
}
