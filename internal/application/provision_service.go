package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvist-dev/guestpass/internal/domain"
	"github.com/kvist-dev/guestpass/internal/ports"
)

const defaultSettleDelay = 2 * time.Second

// ProvisionService drives the per-visitor provisioning sequence. Steps run
// strictly in order; a failure at any step triggers best-effort compensation
// of whatever was already created, and the session record is only committed
// after the auth token was issued.
type ProvisionService struct {
	platform    ports.Platform
	sessions    ports.SessionRepository
	clock       ports.Clock
	logger      *log.Logger
	settleDelay time.Duration
}

func NewProvisionService(platform ports.Platform, sessions ports.SessionRepository, clock ports.Clock, logger *log.Logger, settleDelay time.Duration) *ProvisionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if settleDelay <= 0 {
		settleDelay = defaultSettleDelay
	}

	return &ProvisionService{
		platform:    platform,
		sessions:    sessions,
		clock:       clock,
		logger:      logger,
		settleDelay: settleDelay,
	}
}

type ProvisionRequest struct {
	// VisitorName is an optional label; the generated username falls back to
	// the session id when empty.
	VisitorName string
	Settings    domain.WorkspaceSettings
}

func (s *ProvisionService) Provision(ctx context.Context, req ProvisionRequest) (domain.ProvisionResult, error) {
	sessionID, err := domain.NewSessionID(s.clock.Now())
	if err != nil {
		return domain.ProvisionResult{}, err
	}

	username := guestName(req.VisitorName, sessionID)

	userID, err := s.platform.CreateUser(ctx, username)
	if err != nil {
		return domain.ProvisionResult{}, s.fail(ctx, domain.StepCreatingUser, "", "", err)
	}

	slug, err := s.platform.CreateWorkspace(ctx, username, req.Settings)
	if err != nil {
		return domain.ProvisionResult{}, s.fail(ctx, domain.StepCreatingWorkspace, userID, "", err)
	}

	documents, err := s.platform.AttachDocuments(ctx, slug)
	if err != nil {
		return domain.ProvisionResult{}, s.fail(ctx, domain.StepAttachingDocuments, userID, slug, err)
	}

	association, err := s.platform.AssociateUser(ctx, userID, slug)
	if err != nil {
		return domain.ProvisionResult{}, s.fail(ctx, domain.StepAssociatingUser, userID, slug, err)
	}

	// Fixed settling delay, twice, to let the remote system catch up between
	// user association and token issuance. Not a readiness poll.
	for range 2 {
		if err := s.clock.Sleep(ctx, s.settleDelay); err != nil {
			return domain.ProvisionResult{}, s.fail(ctx, domain.StepSettling, userID, slug, err)
		}
	}

	token, err := s.platform.IssueAuthToken(ctx, userID)
	if err != nil {
		return domain.ProvisionResult{}, s.fail(ctx, domain.StepIssuingToken, userID, slug, err)
	}

	// Commit point. An Add failure leaves the pair untracked (and therefore
	// never cleaned up), but the visitor already has a working session, so we
	// log instead of unwinding.
	if err := s.sessions.Add(ctx, sessionID, userID, slug); err != nil {
		s.logger.Error("session committed but not persisted; resources will not be reconciled",
			"session", sessionID, "user", userID, "workspace", slug, "err", err)
	}

	return domain.ProvisionResult{
		SessionID:     sessionID,
		UserID:        userID,
		WorkspaceSlug: slug,
		RedirectURL:   buildRedirectURL(token.LoginPath, slug),
		Documents:     documents,
		Association:   association,
	}, nil
}

// fail is the Failed(step) transition: compensate in reverse order, workspace
// before user, each independently best-effort. Compensation failures are
// logged but never mask the original error.
func (s *ProvisionService) fail(ctx context.Context, step domain.Step, userID domain.UserID, slug domain.WorkspaceSlug, cause error) error {
	if slug != "" {
		if outcome := s.platform.DeleteWorkspace(ctx, slug); !outcome.Succeeded {
			s.logger.Warn("compensating workspace deletion failed", "workspace", slug, "detail", outcome.Detail)
		}
	}
	if userID != "" {
		if outcome := s.platform.DeleteUser(ctx, userID); !outcome.Succeeded {
			s.logger.Warn("compensating user deletion failed", "user", userID, "detail", outcome.Detail)
		}
	}

	return &domain.ProvisionFailure{Step: step, UserID: userID, WorkspaceSlug: slug, Err: cause}
}

func guestName(visitorName string, sessionID domain.SessionID) string {
	trimmed := strings.TrimSpace(visitorName)
	if trimmed == "" {
		return fmt.Sprintf("guest-%s", sessionID)
	}

	return fmt.Sprintf("%s-%s", sanitizeName(trimmed), sessionID)
}

func sanitizeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '_', r == '.':
			return '-'
		default:
			return -1
		}
	}, name)

	return strings.Trim(mapped, "-")
}

// buildRedirectURL combines the platform's login path with the destination
// workspace, tolerating login paths that already carry a query string.
func buildRedirectURL(loginPath string, slug domain.WorkspaceSlug) string {
	destination := "redirectTo=" + url.QueryEscape("/workspace/"+string(slug))
	if strings.Contains(loginPath, "?") {
		return loginPath + "&" + destination
	}

	return loginPath + "?" + destination
}
