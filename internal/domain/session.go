package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type SessionID string

type UserID string

type WorkspaceSlug string

// Session tracks one visitor's provisioned (user, workspace) pair. The durable
// store is the only authoritative record of these; a session present in the
// store means both remote resources still need to be deleted.
type Session struct {
	ID            SessionID
	UserID        UserID
	WorkspaceSlug WorkspaceSlug
	CreatedAt     time.Time
}

// NewSessionID returns a fresh identifier combining a UTC timestamp with a
// random hex suffix. IDs are never reused.
func NewSessionID(now time.Time) (SessionID, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate session id suffix: %w", err)
	}

	return SessionID(fmt.Sprintf("%s-%s", now.UTC().Format("20060102T150405"), hex.EncodeToString(suffix))), nil
}
