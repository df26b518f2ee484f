package jsonfile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kvist-dev/guestpass/internal/domain"
)

// fileSchema is the persisted layout: one JSON object keyed by session id.
type fileSchema map[string]sessionSchema

type sessionSchema struct {
	UserID        flexibleID `json:"userId"`
	WorkspaceSlug string     `json:"workspaceSlug"`
	CreatedAt     string     `json:"createdAt"`
}

// flexibleID accepts both string and numeric JSON forms. Older files persisted
// the platform's numeric user ids verbatim.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*f = flexibleID(asString)
		return nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return fmt.Errorf("user id is neither string nor number: %w", err)
	}

	*f = flexibleID(asNumber.String())
	return nil
}

func toSchema(session domain.Session) sessionSchema {
	return sessionSchema{
		UserID:        flexibleID(session.UserID),
		WorkspaceSlug: string(session.WorkspaceSlug),
		CreatedAt:     formatTime(session.CreatedAt),
	}
}

func fromSchema(id string, entry sessionSchema) domain.Session {
	return domain.Session{
		ID:            domain.SessionID(id),
		UserID:        domain.UserID(entry.UserID),
		WorkspaceSlug: domain.WorkspaceSlug(entry.WorkspaceSlug),
		CreatedAt:     parseTime(entry.CreatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
