package projections

import (
	"net/url"
	"time"

	"studio/internal/domain/schedule"
)

// CalendarMode selects the day or week grid.
type CalendarMode string

// Calendar modes.
const (
	ModeDay  CalendarMode = "day"
	ModeWeek CalendarMode = "week"
)

// CalendarState is the navigation position of a calendar page.
// It travels in the query string, so each request carries its own position.
type CalendarState struct {
	TrainerID string
	Date      string
	Mode      CalendarMode
}

// NewCalendarState builds a normalised state from request values.
// An empty or invalid date means today; week mode snaps to the Monday.
// PRE: now is in the studio's time zone
func NewCalendarState(trainerID, date string, mode CalendarMode, now time.Time) CalendarState {
	if mode != ModeWeek {
		mode = ModeDay
	}
	d, err := schedule.ParseDate(date)
	if err != nil {
		d, _ = schedule.ParseDate(schedule.Today(now))
	}
	if mode == ModeWeek {
		d = schedule.WeekStart(d)
	}
	return CalendarState{TrainerID: trainerID, Date: d.Format(schedule.DateLayout), Mode: mode}
}

func (c CalendarState) step() int {
	if c.Mode == ModeWeek {
		return 7
	}
	return 1
}

func (c CalendarState) shift(days int) CalendarState {
	next, err := schedule.AddDays(c.Date, days)
	if err != nil {
		return c
	}
	c.Date = next
	return c
}

// Prev returns the previous day or week.
func (c CalendarState) Prev() CalendarState {
	return c.shift(-c.step())
}

// Next returns the following day or week.
func (c CalendarState) Next() CalendarState {
	return c.shift(c.step())
}

// Toggle switches between day and week mode on the same date.
func (c CalendarState) Toggle() CalendarState {
	if c.Mode == ModeWeek {
		c.Mode = ModeDay
		return c
	}
	d, err := schedule.ParseDate(c.Date)
	if err != nil {
		return c
	}
	c.Mode = ModeWeek
	c.Date = schedule.WeekStart(d).Format(schedule.DateLayout)
	return c
}

// Query encodes the state as URL query parameters.
func (c CalendarState) Query() string {
	v := url.Values{}
	v.Set("trainer", c.TrainerID)
	if c.Mode == ModeWeek {
		v.Set("week", c.Date)
	} else {
		v.Set("date", c.Date)
	}
	return v.Encode()
}

// Path returns the calendar page URL for the state.
func (c CalendarState) Path() string {
	return "/calendar/" + string(c.Mode) + "?" + c.Query()
}
