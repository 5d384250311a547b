package schedule_test

import (
	"slices"
	"testing"
	"time"

	"studio/internal/domain/schedule"
)

// TestBookingWindow_Slots verifies the operating window yields 06:00 through 22:00.
func TestBookingWindow_Slots(t *testing.T) {
	slots := slices.Collect(schedule.BookingWindow.Slots())
	if len(slots) != 33 {
		t.Fatalf("got %d slots, want 33", len(slots))
	}
	if slots[0] != "06:00" || slots[len(slots)-1] != "22:00" {
		t.Errorf("bounds = %s..%s, want 06:00..22:00", slots[0], slots[len(slots)-1])
	}
	if schedule.BookingWindow.Len() != 33 {
		t.Errorf("Len() = %d, want 33", schedule.BookingWindow.Len())
	}
}

// TestWindow_SlotsRestartable verifies the sequence can be ranged twice.
func TestWindow_SlotsRestartable(t *testing.T) {
	w := schedule.Window{Start: schedule.MustClock("09:00"), End: schedule.MustClock("10:00")}
	first := slices.Collect(w.Slots())
	second := slices.Collect(w.Slots())
	if !slices.Equal(first, second) {
		t.Errorf("second pass = %v, want %v", second, first)
	}
	if !slices.Equal(first, []string{"09:00", "09:30", "10:00"}) {
		t.Errorf("slots = %v", first)
	}
}

// TestWindow_SlotsEarlyBreak verifies the iterator stops when the consumer breaks.
func TestWindow_SlotsEarlyBreak(t *testing.T) {
	n := 0
	for range schedule.BookingWindow.Slots() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("consumed %d, want 3", n)
	}
}

// TestWindow_ValidateSlot tests slot validation against the booking window.
func TestWindow_ValidateSlot(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"first slot", "06:00", nil},
		{"last slot", "22:00", nil},
		{"half hour", "13:30", nil},
		{"before window", "05:30", schedule.ErrOutsideWindow},
		{"after window", "22:30", schedule.ErrOutsideWindow},
		{"quarter hour", "10:15", schedule.ErrNotHalfHour},
		{"garbage", "ten", schedule.ErrInvalidTime},
		{"empty", "", schedule.ErrInvalidTime},
		{"unpadded hour", "9:00", schedule.ErrInvalidTime},
		{"unpadded half hour", "9:30", schedule.ErrInvalidTime},
		{"leading space", " 09:00", schedule.ErrInvalidTime},
		{"trailing space", "09:00 ", schedule.ErrInvalidTime},
		{"seconds", "09:00:00", schedule.ErrInvalidTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schedule.BookingWindow.ValidateSlot(tt.in)
			if err != tt.wantErr {
				t.Errorf("ValidateSlot(%q) = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

// TestDisplayWindow tests the dynamic day-view window.
func TestDisplayWindow(t *testing.T) {
	tests := []struct {
		name      string
		times     []string
		wantStart string
		wantEnd   string
	}{
		{"no sessions", nil, "09:00", "17:00"},
		{"inside default", []string{"10:00", "14:30"}, "09:00", "17:00"},
		{"early session", []string{"07:00"}, "07:00", "17:00"},
		{"last at 17:00", []string{"17:00"}, "09:00", "17:30"},
		{"late session", []string{"20:30"}, "09:00", "21:00"},
		{"both ends", []string{"06:30", "21:00"}, "06:30", "21:30"},
		{"bad time ignored", []string{"xx"}, "09:00", "17:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := schedule.DisplayWindow(tt.times)
			if w.Start.String() != tt.wantStart || w.End.String() != tt.wantEnd {
				t.Errorf("DisplayWindow(%v) = %s-%s, want %s-%s", tt.times, w.Start, w.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

// TestParseClock_Canonical verifies accepted times format back to the same string.
func TestParseClock_Canonical(t *testing.T) {
	for _, in := range []string{"00:00", "06:00", "09:30", "21:59", "23:30"} {
		c, err := schedule.ParseClock(in)
		if err != nil {
			t.Errorf("ParseClock(%q): %v", in, err)
			continue
		}
		if c.String() != in {
			t.Errorf("ParseClock(%q).String() = %q", in, c.String())
		}
	}
}

// TestParseDate rejects anything but YYYY-MM-DD.
func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2026-10-20", false},
		{"2026-1-20", true},
		{"2026-10-2", true},
		{" 2026-10-20", true},
		{"2026-10-20 ", true},
		{"2026-02-30", true},
	}
	for _, tt := range tests {
		_, err := schedule.ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

// TestWeekStart verifies Monday-based week boundaries.
func TestWeekStart(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	got := schedule.WeekStart(sunday).Format(schedule.DateLayout)
	if got != "2026-10-12" {
		t.Errorf("WeekStart(sunday) = %s, want 2026-10-12", got)
	}
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if got := schedule.WeekStart(monday).Format(schedule.DateLayout); got != "2026-10-19" {
		t.Errorf("WeekStart(monday) = %s, want 2026-10-19", got)
	}
	if schedule.DayName(monday) != schedule.Monday {
		t.Errorf("DayName = %s, want monday", schedule.DayName(monday))
	}
}
