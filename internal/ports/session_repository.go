package ports

import (
	"context"

	"github.com/kvist-dev/guestpass/internal/domain"
)

// SessionRepository is the durable source of truth for outstanding remote
// resources. Implementations must survive process restart; in-memory caches
// are advisory only and must never answer cleanup-correctness questions.
type SessionRepository interface {
	GetByID(ctx context.Context, id domain.SessionID) (domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	Add(ctx context.Context, id domain.SessionID, userID domain.UserID, slug domain.WorkspaceSlug) error
	Remove(ctx context.Context, id domain.SessionID) error
}
