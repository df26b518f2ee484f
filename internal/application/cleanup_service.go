package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/kvist-dev/guestpass/internal/domain"
	"github.com/kvist-dev/guestpass/internal/ports"
)

// CleanupService reconciles the store against the desired end state: every
// tracked session's remote resources deleted. A record leaves the store only
// after both deletions were confirmed, so re-running a pass is always safe;
// the worst case is a harmless double-delete attempt.
type CleanupService struct {
	platform ports.Platform
	sessions ports.SessionRepository
	logger   *log.Logger
}

func NewCleanupService(platform ports.Platform, sessions ports.SessionRepository, logger *log.Logger) *CleanupService {
	if logger == nil {
		logger = log.Default()
	}

	return &CleanupService{platform: platform, sessions: sessions, logger: logger}
}

func (s *CleanupService) Reconcile(ctx context.Context) (domain.CleanupSummary, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return domain.CleanupSummary{}, fmt.Errorf("list sessions: %w", err)
	}

	summary := domain.CleanupSummary{Considered: len(sessions)}
	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		// Workspace first: the user-workspace association depends on the
		// user still existing. Both are attempted regardless of the other's
		// outcome so a pass makes as much progress as it can.
		workspace := s.platform.DeleteWorkspace(ctx, session.WorkspaceSlug)
		user := s.platform.DeleteUser(ctx, session.UserID)

		if !workspace.Succeeded || !user.Succeeded {
			summary.Failed++
			summary.Failures = append(summary.Failures, domain.CleanupFailure{
				SessionID: session.ID,
				Workspace: workspace,
				User:      user,
			})
			continue
		}

		if err := s.sessions.Remove(ctx, session.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Warn("session resources deleted but record not removed; next pass will re-delete",
				"session", session.ID, "err", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, domain.CleanupFailure{
				SessionID: session.ID,
				Workspace: workspace,
				User:      user,
			})
			continue
		}

		summary.Deleted++
	}

	return summary, nil
}
