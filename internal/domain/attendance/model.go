package attendance

import (
	"errors"
	"time"
)

// Attendance records that a member turned up to a booked session.
// One row is written per attended session and never updated.
type Attendance struct {
	ID          string
	MemberID    string
	SessionID   string
	TrainerID   string
	CheckInTime time.Time
	ClassDate   string // YYYY-MM-DD of the session
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID and SessionID must not be empty, CheckInTime must be set
func (a *Attendance) Validate() error {
	if a.MemberID == "" {
		return errors.New("attendance must be associated with a member")
	}
	if a.SessionID == "" {
		return errors.New("attendance must be associated with a session")
	}
	if a.CheckInTime.IsZero() {
		return errors.New("check-in time must be set")
	}
	return nil
}
