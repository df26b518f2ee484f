package application

import (
	"context"
	"fmt"

	"github.com/kvist-dev/guestpass/internal/domain"
	"github.com/kvist-dev/guestpass/internal/ports"
)

// StatusService answers read-only introspection queries over the store,
// backing the sessions command.
type StatusService struct {
	sessions ports.SessionRepository
}

func NewStatusService(sessions ports.SessionRepository) *StatusService {
	return &StatusService{sessions: sessions}
}

type SessionsStatus struct {
	Count    int
	Sessions []domain.Session
}

func (s *StatusService) Sessions(ctx context.Context) (SessionsStatus, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return SessionsStatus{}, fmt.Errorf("list sessions: %w", err)
	}

	return SessionsStatus{Count: len(sessions), Sessions: sessions}, nil
}
