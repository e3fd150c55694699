package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rezkam/todos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringToPgtypeUUID(t *testing.T) {
	t.Run("valid id round trips", func(t *testing.T) {
		id, err := domain.NewID()
		require.NoError(t, err)

		pgID, err := stringToPgtypeUUID(id)
		require.NoError(t, err)
		assert.True(t, pgID.Valid)
		assert.Equal(t, id, pgtypeToUUIDString(pgID))
	})

	t.Run("invalid id wraps ErrInvalidID", func(t *testing.T) {
		_, err := stringToPgtypeUUID("not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("invalid pgtype renders empty", func(t *testing.T) {
		assert.Empty(t, pgtypeToUUIDString(pgtype.UUID{}))
	})
}

func TestTimestampConversions(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)

	t.Run("times come back in UTC", func(t *testing.T) {
		got := pgtypeToTime(timeToPgtype(local))
		assert.Equal(t, time.UTC, got.Location())
		assert.True(t, got.Equal(local))
	})

	t.Run("NULL maps to zero and nil", func(t *testing.T) {
		assert.True(t, pgtypeToTime(pgtype.Timestamptz{}).IsZero())
		assert.Nil(t, pgtypeToTimePtr(pgtype.Timestamptz{}))
		assert.False(t, timePtrToPgtype(nil).Valid)
	})

	t.Run("pointer round trip", func(t *testing.T) {
		got := pgtypeToTimePtr(timePtrToPgtype(&local))
		require.NotNil(t, got)
		assert.True(t, got.Equal(local))
	})
}

func TestStringPtrToPgtype(t *testing.T) {
	assert.False(t, stringPtrToPgtype(nil).Valid)

	s := "title"
	got := stringPtrToPgtype(&s)
	assert.True(t, got.Valid)
	assert.Equal(t, "title", got.String)
}

func TestTodoRowToDomain(t *testing.T) {
	id, err := domain.NewID()
	require.NoError(t, err)
	pgID, err := stringToPgtypeUUID(id)
	require.NoError(t, err)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	row := todoRow{
		ID:        pgID,
		Title:     "buy milk",
		CreatedAt: timeToPgtype(created),
	}

	got := row.toDomain()
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "buy milk", got.Title)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
	assert.True(t, got.CreatedAt.Equal(created))
}
