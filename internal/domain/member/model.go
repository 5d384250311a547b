package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxTopUpAmount = 200
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Domain errors
var (
	ErrAlreadyArchived   = errors.New("member is already archived")
	ErrNotArchived       = errors.New("member is not archived")
	ErrInvalidTopUp      = errors.New("top-up must be between 1 and 200 sessions")
	ErrNegativeBalance   = errors.New("remaining sessions cannot be negative")
	ErrArchivedNoBooking = errors.New("archived members cannot be booked")
)

// Member is a studio client with a prepaid session balance.
type Member struct {
	ID                string
	Name              string
	Email             string
	Phone             string
	RemainingSessions int
	Status            string
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("member name cannot be empty")
	}
	if len(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if !strings.Contains(m.Email, "@") {
		return errors.New("member email must be valid")
	}
	if m.RemainingSessions < 0 {
		return ErrNegativeBalance
	}
	if m.Status != StatusActive && m.Status != StatusArchived {
		return errors.New("status must be 'active' or 'archived'")
	}
	return nil
}

// HasRemainingSessions reports whether the member can be booked or attended.
func (m *Member) HasRemainingSessions() bool {
	return m.RemainingSessions > 0
}

// IsArchived returns true if the member is archived.
// INVARIANT: Status field is not mutated
func (m *Member) IsArchived() bool {
	return m.Status == StatusArchived
}

// TopUp adds prepaid sessions to the balance.
// PRE: 1 <= n <= MaxTopUpAmount
// POST: RemainingSessions increased by n
func (m *Member) TopUp(n int) error {
	if n < 1 || n > MaxTopUpAmount {
		return ErrInvalidTopUp
	}
	m.RemainingSessions += n
	return nil
}

// Archive sets the member status to archived.
// PRE: Member is not already archived
// POST: Status is set to archived
func (m *Member) Archive() error {
	if m.Status == StatusArchived {
		return ErrAlreadyArchived
	}
	m.Status = StatusArchived
	return nil
}

// Restore sets the member status back to active.
// PRE: Member is currently archived
// POST: Status is set to active
func (m *Member) Restore() error {
	if m.Status != StatusArchived {
		return ErrNotArchived
	}
	m.Status = StatusActive
	return nil
}
