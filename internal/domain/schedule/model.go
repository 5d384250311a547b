package schedule

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values, Monday first.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// SlotStep is the slot granularity.
const SlotStep = 30 * time.Minute

const slotMinutes = Clock(30)

// Domain errors
var (
	ErrInvalidTime        = errors.New("time must be in HH:MM format")
	ErrNotHalfHour        = errors.New("time must start on the hour or half hour")
	ErrOutsideWindow      = errors.New("time is outside the operating window")
	ErrInvalidDate        = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidRepeatCount = errors.New("repeat count must be between 1 and 10")
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses a zero-padded HH:MM string.
// PRE: s is non-empty
// POST: Returns the clock value or ErrInvalidTime
// INVARIANT: c.String() == s for every accepted s, so stored times compare as strings
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrInvalidTime
	}
	c := Clock(t.Hour()*60 + t.Minute())
	if c.String() != s {
		return 0, ErrInvalidTime
	}
	return c, nil
}

// MustClock parses s and panics on error. Only for package-level constants and tests.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(fmt.Sprintf("schedule: invalid clock %q", s))
	}
	return c
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// IsHalfHour reports whether c falls on :00 or :30.
func (c Clock) IsHalfHour() bool {
	return c%slotMinutes == 0
}

// Hour returns the hour-of-day component.
func (c Clock) Hour() int {
	return int(c) / 60
}

// Window is an inclusive range of slot start times.
type Window struct {
	Start Clock
	End   Clock
}

var (
	// BookingWindow is the fixed operating window for new bookings.
	BookingWindow = Window{Start: MustClock("06:00"), End: MustClock("22:00")}

	// DefaultDisplayWindow is the minimum window shown by the day view.
	DefaultDisplayWindow = Window{Start: MustClock("09:00"), End: MustClock("17:00")}
)

// Slots returns the slot start times of the window at 30-minute steps.
// The sequence is finite and can be ranged over any number of times.
func (w Window) Slots() iter.Seq[string] {
	return func(yield func(string) bool) {
		for c := w.Start; c <= w.End; c += slotMinutes {
			if !yield(c.String()) {
				return
			}
		}
	}
}

// Len returns the number of slots in the window.
func (w Window) Len() int {
	if w.End < w.Start {
		return 0
	}
	return int((w.End-w.Start)/slotMinutes) + 1
}

// Contains reports whether c is a slot start inside the window.
func (w Window) Contains(c Clock) bool {
	return c >= w.Start && c <= w.End
}

// ValidateSlot checks that a HH:MM string is a bookable slot start in w.
// PRE: none
// POST: Returns nil if the time parses, is on a half hour and lies inside w
func (w Window) ValidateSlot(s string) (Clock, error) {
	c, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	if !c.IsHalfHour() {
		return 0, ErrNotHalfHour
	}
	if !w.Contains(c) {
		return 0, ErrOutsideWindow
	}
	return c, nil
}

// DisplayWindow returns the day-view window for the given session start times.
// It starts from DefaultDisplayWindow, extends down to the earliest session and
// up to 30 minutes past the latest one. Unparseable times are ignored.
func DisplayWindow(times []string) Window {
	w := DefaultDisplayWindow
	for _, s := range times {
		c, err := ParseClock(s)
		if err != nil {
			continue
		}
		c -= c % slotMinutes
		if c < w.Start {
			w.Start = c
		}
		if c+slotMinutes > w.End {
			w.End = c + slotMinutes
		}
	}
	return w
}

// ParseDate parses a YYYY-MM-DD date. Surrounding whitespace is rejected.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// WeekStart returns the Monday of the week containing t, truncated to midnight.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// DayName returns the lowercase day name for t, as used by ValidDays.
func DayName(t time.Time) string {
	return ValidDays[(int(t.Weekday())+6)%7]
}
