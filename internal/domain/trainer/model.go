package trainer

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName = errors.New("trainer name cannot be empty")
	ErrInactive  = errors.New("trainer is not taking bookings")
)

// Trainer is a coach whose day is split into bookable slots.
type Trainer struct {
	ID     string
	Name   string
	Email  string
	Active bool
}

// Validate checks if the Trainer has valid data.
// PRE: Trainer struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Trainer) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Email != "" && !strings.Contains(t.Email, "@") {
		return errors.New("trainer email must be valid")
	}
	return nil
}
