package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"studio/internal/domain/attendance"
	"studio/internal/domain/session"

	"github.com/google/uuid"
)

// AttendStore defines the session store interface needed to mark attendance.
type AttendStore interface {
	GetByID(ctx context.Context, id string) (session.Session, error)
	MarkAttended(ctx context.Context, a attendance.Attendance) error
}

// AttendSessionInput carries input for the attend orchestrator.
type AttendSessionInput struct {
	SessionID string
}

// AttendSessionDeps holds dependencies for AttendSession.
type AttendSessionDeps struct {
	SessionStore AttendStore
	MemberStore  MemberLookupStore
	Now          func() time.Time
}

// AttendSessionResult carries the completed session and the member's new balance.
type AttendSessionResult struct {
	Session          session.Session
	RemainingBalance int
}

// ExecuteAttendSession marks a session completed and consumes one unit of the
// member's balance. The store re-checks balance and attended state inside one
// transaction, so two concurrent calls cannot both succeed.
// PRE: session exists, is not attended, is dated today or earlier; member balance > 0
// POST: Session completed, balance decremented by one, attendance row written
func ExecuteAttendSession(ctx context.Context, input AttendSessionInput, deps AttendSessionDeps) (AttendSessionResult, error) {
	s, err := deps.SessionStore.GetByID(ctx, input.SessionID)
	if err != nil {
		return AttendSessionResult{}, lookup(err, ErrSessionNotFound)
	}
	m, err := deps.MemberStore.GetByID(ctx, s.MemberID)
	if err != nil {
		return AttendSessionResult{}, lookup(err, ErrMemberNotFound)
	}

	now := deps.Now()
	if err := s.CanAttend(m.RemainingSessions, now); err != nil {
		return AttendSessionResult{}, err
	}

	a := attendance.Attendance{
		ID:          uuid.New().String(),
		MemberID:    s.MemberID,
		SessionID:   s.ID,
		TrainerID:   s.TrainerID,
		CheckInTime: now,
		ClassDate:   s.Date,
	}
	if err := a.Validate(); err != nil {
		return AttendSessionResult{}, err
	}
	if err := deps.SessionStore.MarkAttended(ctx, a); err != nil {
		return AttendSessionResult{}, err
	}

	s.AttendedAt = now
	slog.Info("session_event", "event", "session_attended", "session_id", s.ID, "member_id", m.ID, "balance", m.RemainingSessions-1)
	return AttendSessionResult{Session: s, RemainingBalance: m.RemainingSessions - 1}, nil
}
