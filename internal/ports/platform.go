package ports

import (
	"context"

	"github.com/kvist-dev/guestpass/internal/domain"
)

// AuthToken is a one-time SSO token plus the login path fragment the platform
// wants the visitor redirected through.
type AuthToken struct {
	Token     string
	LoginPath string
}

// Platform is the single point of contact with the remote chat platform.
// Create/read calls return errors (retried internally by the adapter);
// deletions are best-effort and report two-valued outcomes instead.
type Platform interface {
	MultiUserMode(ctx context.Context) bool
	CreateUser(ctx context.Context, username string) (domain.UserID, error)
	CreateWorkspace(ctx context.Context, name string, settings domain.WorkspaceSettings) (domain.WorkspaceSlug, error)
	AttachDocuments(ctx context.Context, slug domain.WorkspaceSlug) (domain.StepOutcome, error)
	AssociateUser(ctx context.Context, userID domain.UserID, slug domain.WorkspaceSlug) (domain.StepOutcome, error)
	IssueAuthToken(ctx context.Context, userID domain.UserID) (AuthToken, error)
	DeleteUser(ctx context.Context, userID domain.UserID) domain.DeleteOutcome
	DeleteWorkspace(ctx context.Context, slug domain.WorkspaceSlug) domain.DeleteOutcome
}
