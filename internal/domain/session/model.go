package session

import (
	"errors"
	"strings"
	"time"

	"studio/internal/domain/schedule"
)

// Max length constants for user-editable fields.
const (
	MaxNotesLength = 2000
)

// Status is the derived display status of a session.
type Status string

// Status values. None of them is stored; see DeriveStatus.
const (
	StatusScheduled           Status = "scheduled"
	StatusCompleted           Status = "completed"
	StatusAbsent              Status = "absent"
	StatusNoRemainingSessions Status = "no-remaining-sessions"
)

// Domain errors
var (
	ErrEmptyTrainerID      = errors.New("trainer is required")
	ErrEmptyMemberID       = errors.New("member is required")
	ErrNotesTooLong        = errors.New("notes cannot exceed 2000 characters")
	ErrAlreadyCompleted    = errors.New("session has already been attended")
	ErrNoRemainingSessions = errors.New("member has no remaining sessions")
	ErrFutureAttendance    = errors.New("cannot mark attendance for a future session")
	ErrSlotUnavailable     = errors.New("time slot is unavailable")
)

// Session is a single booking of a member with a trainer.
type Session struct {
	ID         string
	TrainerID  string
	MemberID   string
	Date       string // YYYY-MM-DD
	Time       string // HH:MM, on :00 or :30
	Notes      string // markdown, optional
	AttendedAt time.Time
	CreatedAt  time.Time
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: Time lies inside schedule.BookingWindow on a half hour
func (s *Session) Validate() error {
	if strings.TrimSpace(s.TrainerID) == "" {
		return ErrEmptyTrainerID
	}
	if strings.TrimSpace(s.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if _, err := schedule.ParseDate(s.Date); err != nil {
		return err
	}
	if _, err := schedule.BookingWindow.ValidateSlot(s.Time); err != nil {
		return err
	}
	if len(s.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// IsAttended returns true once attendance has been recorded.
func (s *Session) IsAttended() bool {
	return !s.AttendedAt.IsZero()
}

// Booked returns the conflict-detector view of the session.
func (s *Session) Booked() schedule.Booked {
	return schedule.Booked{ID: s.ID, Time: s.Time}
}

// DeriveStatus computes the display status of a session.
// A member balance of zero or less overrides everything else. Otherwise an
// attended session is completed, an unattended one dated before today is
// absent, and anything else is scheduled.
// PRE: now is in the studio's local time zone
// POST: Returns one of the Status constants; s is not mutated
func DeriveStatus(s Session, balance int, now time.Time) Status {
	if balance <= 0 {
		return StatusNoRemainingSessions
	}
	if s.IsAttended() {
		return StatusCompleted
	}
	if s.Date < schedule.Today(now) {
		return StatusAbsent
	}
	return StatusScheduled
}

// CanAttend checks whether attendance may be recorded.
// PRE: balance is the member's current remaining-session count
// POST: Returns nil or a precondition error
func (s *Session) CanAttend(balance int, now time.Time) error {
	if s.IsAttended() {
		return ErrAlreadyCompleted
	}
	if balance <= 0 {
		return ErrNoRemainingSessions
	}
	if s.Date > schedule.Today(now) {
		return ErrFutureAttendance
	}
	return nil
}

// CanReschedule checks whether the session may be moved.
// PRE: balance is the member's current remaining-session count
// POST: Returns nil or a precondition error
func (s *Session) CanReschedule(balance int) error {
	if s.IsAttended() {
		return ErrAlreadyCompleted
	}
	if balance <= 0 {
		return ErrNoRemainingSessions
	}
	return nil
}

// CanCancel checks whether the session may be deleted.
// Attended sessions consumed a balance unit and stay on record.
func (s *Session) CanCancel() error {
	if s.IsAttended() {
		return ErrAlreadyCompleted
	}
	return nil
}

// BookedList converts sessions for the conflict detector.
func BookedList(sessions []Session) []schedule.Booked {
	out := make([]schedule.Booked, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessions[i].Booked())
	}
	return out
}

// GroupByDate indexes sessions by their date for repeat expansion.
func GroupByDate(sessions []Session) map[string][]schedule.Booked {
	out := make(map[string][]schedule.Booked)
	for i := range sessions {
		out[sessions[i].Date] = append(out[sessions[i].Date], sessions[i].Booked())
	}
	return out
}
