package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// parseUUID scans s into a pgtype.UUID. ok is false for empty or malformed ids.
func parseUUID(s string) (pgtype.UUID, bool) {
	var id pgtype.UUID
	if s == "" {
		return id, false
	}
	if err := id.Scan(s); err != nil || !id.Valid {
		return pgtype.UUID{}, false
	}
	return id, true
}

// mustUUID parses an id that came from the database.
func mustUUID(s string) pgtype.UUID {
	id, _ := parseUUID(s)
	return id
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func textValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func toText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func timeValue(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
