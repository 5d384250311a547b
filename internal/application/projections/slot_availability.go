package projections

import (
	"context"

	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
)

// SlotAvailabilityQuery carries query parameters.
// ExcludeID names a session being edited so its own buffer does not block it.
type SlotAvailabilityQuery struct {
	TrainerID string
	Date      string
	ExcludeID string
}

// SlotAvailabilityDeps holds dependencies for QuerySlotAvailability.
type SlotAvailabilityDeps struct {
	SessionStore SessionStore
}

// SlotAvailabilityResult carries one state per bookable slot.
type SlotAvailabilityResult struct {
	Date  string               `json:"date"`
	Slots []schedule.SlotState `json:"slots"`
}

// Free returns the slot times that can still be booked.
func (r SlotAvailabilityResult) Free() []string {
	var out []string
	for _, s := range r.Slots {
		if s.State == schedule.SlotFree {
			out = append(out, s.Time)
		}
	}
	return out
}

// QuerySlotAvailability reports free, buffered and booked states over the booking window.
// PRE: Date is YYYY-MM-DD
// POST: len(Slots) == schedule.BookingWindow.Len()
func QuerySlotAvailability(ctx context.Context, query SlotAvailabilityQuery, deps SlotAvailabilityDeps) (SlotAvailabilityResult, error) {
	if _, err := schedule.ParseDate(query.Date); err != nil {
		return SlotAvailabilityResult{}, err
	}
	sessions, err := deps.SessionStore.ListByTrainerAndDate(ctx, query.TrainerID, query.Date)
	if err != nil {
		return SlotAvailabilityResult{}, err
	}
	return SlotAvailabilityResult{
		Date:  query.Date,
		Slots: schedule.SlotStates(session.BookedList(sessions), query.ExcludeID, schedule.BookingWindow),
	}, nil
}
