package orchestrators

import (
	"database/sql"
	"errors"
	"fmt"
)

// Error classes used by the HTTP layer to pick a status code. Domain errors
// are wrapped so errors.Is matches both the class and the original cause.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrEmailTaken   = errors.New("email is already registered")
)

// Lookup failures.
var (
	ErrTrainerNotFound = fmt.Errorf("trainer %w", ErrNotFound)
	ErrMemberNotFound  = fmt.Errorf("member %w", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
)

// invalid marks err as a validation failure.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// lookup converts a store's no-rows error into the given not-found sentinel.
func lookup(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}
