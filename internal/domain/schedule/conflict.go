package schedule

// Slot states projected by SlotStates.
const (
	SlotFree     = "free"
	SlotBuffered = "buffered"
	SlotBooked   = "booked"
)

// Booked is the minimal view of an existing booking the detector needs.
type Booked struct {
	ID   string
	Time string // HH:MM
}

// SlotState is one slot of a day with its availability.
type SlotState struct {
	Time  string `json:"time"`
	State string `json:"state"`
}

// BlockedSlots returns the slot starts unavailable for a new booking.
// Every booking at T blocks T-30, T and T+30 (clipped to w), so two bookings
// can never sit in adjacent slots. The booking with excludeID is ignored, which
// lets a session be re-saved at its own time.
// PRE: existing holds bookings for a single trainer and date
// POST: Returns the blocked set; bookings with unparseable times are skipped
func BlockedSlots(existing []Booked, excludeID string, w Window) map[string]bool {
	blocked := make(map[string]bool, len(existing)*3)
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		c, err := ParseClock(b.Time)
		if err != nil {
			continue
		}
		for _, n := range [...]Clock{c - slotMinutes, c, c + slotMinutes} {
			if w.Contains(n) {
				blocked[n.String()] = true
			}
		}
	}
	return blocked
}

// IsAvailable reports whether a new booking at t would not collide.
func IsAvailable(existing []Booked, excludeID, t string, w Window) bool {
	return !BlockedSlots(existing, excludeID, w)[t]
}

// SlotStates projects the window onto free, buffered and booked states.
// PRE: existing holds bookings for a single trainer and date
// POST: Returns one entry per slot in w, in order
func SlotStates(existing []Booked, excludeID string, w Window) []SlotState {
	blocked := BlockedSlots(existing, excludeID, w)
	booked := make(map[string]bool, len(existing))
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if c, err := ParseClock(b.Time); err == nil {
			booked[c.String()] = true
		}
	}

	states := make([]SlotState, 0, w.Len())
	for t := range w.Slots() {
		state := SlotFree
		switch {
		case booked[t]:
			state = SlotBooked
		case blocked[t]:
			state = SlotBuffered
		}
		states = append(states, SlotState{Time: t, State: state})
	}
	return states
}
