// Package sessions renders the tracked-session introspection view.
package sessions

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kvist-dev/guestpass/internal/application"
	"github.com/kvist-dev/guestpass/internal/domain"
)

type RenderOptions struct {
	Now time.Time

	// StaleAfter marks sessions older than this as overdue for cleanup.
	StaleAfter time.Duration
}

func Render(status application.SessionsStatus, opts RenderOptions) string {
	return renderView(status, opts, newStyles())
}

func renderView(status application.SessionsStatus, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Tracked guest sessions"),
		s.header.Render(fmt.Sprintf("outstanding: %d", status.Count)),
	}

	if status.Count == 0 {
		lines = append(lines, s.empty.Render("Nothing to clean up."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, session := range status.Sessions {
		lines = append(lines, s.section.Render(renderSession(session, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSession(session domain.Session, opts RenderOptions, s styles) string {
	parts := []string{
		s.session.Render(string(session.ID)),
		s.detail.Render(fmt.Sprintf("user %s · workspace %s", session.UserID, session.WorkspaceSlug)),
	}

	age := ageLine(session.CreatedAt, opts)
	if age != "" {
		style := s.detail
		if opts.StaleAfter > 0 && !session.CreatedAt.IsZero() && opts.Now.Sub(session.CreatedAt) > opts.StaleAfter {
			style = s.stale
		}
		parts = append(parts, style.Render(age))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func ageLine(createdAt time.Time, opts RenderOptions) string {
	if createdAt.IsZero() || opts.Now.IsZero() {
		return ""
	}

	age := opts.Now.Sub(createdAt)
	if age < 0 {
		age = 0
	}

	return fmt.Sprintf("created %s ago", age.Round(time.Second))
}

// RenderSummary formats the result of one reconciliation pass.
func RenderSummary(summary domain.CleanupSummary) string {
	s := newStyles()
	lines := []string{
		s.title.Render("Cleanup summary"),
		s.detail.Render(fmt.Sprintf("considered %d · deleted %d · failed %d", summary.Considered, summary.Deleted, summary.Failed)),
	}

	for _, failure := range summary.Failures {
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.stale.Render(string(failure.SessionID)),
			s.detail.Render(fmt.Sprintf("workspace deleted: %t %s", failure.Workspace.Succeeded, failure.Workspace.Detail)),
			s.detail.Render(fmt.Sprintf("user deleted:      %t %s", failure.User.Succeeded, failure.User.Detail)),
		)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
