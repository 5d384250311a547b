package orchestrators

import (
	"context"
	"log/slog"

	"studio/internal/domain/session"
)

// CancelStore defines the session store interface needed to cancel a session.
type CancelStore interface {
	GetByID(ctx context.Context, id string) (session.Session, error)
	Delete(ctx context.Context, id string) error
}

// CancelSessionInput carries input for the cancel orchestrator.
type CancelSessionInput struct {
	SessionID string
}

// CancelSessionDeps holds dependencies for CancelSession.
type CancelSessionDeps struct {
	SessionStore CancelStore
}

// ExecuteCancelSession deletes a booking and frees its slot and buffer.
// PRE: session exists and has not been attended
// POST: Session removed; the member balance is unchanged
func ExecuteCancelSession(ctx context.Context, input CancelSessionInput, deps CancelSessionDeps) error {
	s, err := deps.SessionStore.GetByID(ctx, input.SessionID)
	if err != nil {
		return lookup(err, ErrSessionNotFound)
	}
	if err := s.CanCancel(); err != nil {
		return err
	}
	if err := deps.SessionStore.Delete(ctx, s.ID); err != nil {
		return err
	}
	slog.Info("session_event", "event", "session_cancelled", "session_id", s.ID, "trainer_id", s.TrainerID, "date", s.Date, "time", s.Time)
	return nil
}
