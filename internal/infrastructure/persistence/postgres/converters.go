package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rezkam/todos/internal/domain"
)

// === pgtype Conversion Helpers ===

// stringToPgtypeUUID parses a canonical ID into pgtype.UUID.
// Wraps domain.ErrInvalidID so callers can still classify the failure.
func stringToPgtypeUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

// pgtypeToUUIDString converts pgtype.UUID to string (empty if invalid).
func pgtypeToUUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

// timeToPgtype converts time.Time to pgtype.Timestamptz.
func timeToPgtype(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// pgtypeToTime converts pgtype.Timestamptz to time.Time (zero if invalid).
// Always returns time in UTC location for consistent timezone handling.
func pgtypeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// pgtypeToTimePtr converts pgtype.Timestamptz to *time.Time (nil if invalid).
func pgtypeToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	utcTime := t.Time.UTC()
	return &utcTime
}

// timePtrToPgtype converts *time.Time to pgtype.Timestamptz.
// For nil pointers, returns NULL (Valid: false) to store NULL in the database.
func timePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// stringPtrToPgtype converts *string to pgtype.Text (NULL when nil).
func stringPtrToPgtype(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// === Todo Conversions ===

// todoRow is a scanned row of the todos table.
type todoRow struct {
	ID          pgtype.UUID
	Title       string
	Completed   bool
	CompletedAt pgtype.Timestamptz
	CreatedAt   pgtype.Timestamptz
}

func (r todoRow) toDomain() *domain.Todo {
	return &domain.Todo{
		ID:          pgtypeToUUIDString(r.ID),
		Title:       r.Title,
		Completed:   r.Completed,
		CompletedAt: pgtypeToTimePtr(r.CompletedAt),
		CreatedAt:   pgtypeToTime(r.CreatedAt),
	}
}
