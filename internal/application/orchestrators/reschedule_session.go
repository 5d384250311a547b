package orchestrators

import (
	"context"
	"log/slog"

	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
)

// RescheduleStore defines the session store interface needed to move a session.
type RescheduleStore interface {
	GetByID(ctx context.Context, id string) (session.Session, error)
	ListByTrainerAndDate(ctx context.Context, trainerID, date string) ([]session.Session, error)
	Update(ctx context.Context, s session.Session) error
}

// RescheduleSessionInput carries input for the reschedule orchestrator.
// Empty Date or Time keeps the current value; a nil Notes keeps the current notes.
type RescheduleSessionInput struct {
	SessionID string
	Date      string
	Time      string
	Notes     *string
}

// RescheduleSessionDeps holds dependencies for RescheduleSession.
type RescheduleSessionDeps struct {
	SessionStore RescheduleStore
	MemberStore  MemberLookupStore
}

// ExecuteRescheduleSession moves a session to a new date and/or time.
// The target slot is checked against the trainer's other sessions on the
// target date; the session's own buffer never blocks it.
// PRE: session exists, is not attended, and its member has a positive balance
// POST: Session persisted at the new slot, or an error and no change
func ExecuteRescheduleSession(ctx context.Context, input RescheduleSessionInput, deps RescheduleSessionDeps) (session.Session, error) {
	s, err := deps.SessionStore.GetByID(ctx, input.SessionID)
	if err != nil {
		return session.Session{}, lookup(err, ErrSessionNotFound)
	}
	m, err := deps.MemberStore.GetByID(ctx, s.MemberID)
	if err != nil {
		return session.Session{}, lookup(err, ErrMemberNotFound)
	}
	if err := s.CanReschedule(m.RemainingSessions); err != nil {
		return session.Session{}, err
	}

	moved := s
	if input.Date != "" {
		moved.Date = input.Date
	}
	if input.Time != "" {
		moved.Time = input.Time
	}
	if input.Notes != nil {
		moved.Notes = *input.Notes
	}
	if err := moved.Validate(); err != nil {
		return session.Session{}, invalid(err)
	}

	sameDay, err := deps.SessionStore.ListByTrainerAndDate(ctx, moved.TrainerID, moved.Date)
	if err != nil {
		return session.Session{}, err
	}
	if !schedule.IsAvailable(session.BookedList(sameDay), moved.ID, moved.Time, schedule.BookingWindow) {
		return session.Session{}, session.ErrSlotUnavailable
	}

	if err := deps.SessionStore.Update(ctx, moved); err != nil {
		return session.Session{}, lookup(err, ErrSessionNotFound)
	}

	slog.Info("session_event", "event", "session_rescheduled", "session_id", s.ID,
		"from_date", s.Date, "from_time", s.Time, "to_date", moved.Date, "to_time", moved.Time)
	return moved, nil
}
