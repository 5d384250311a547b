package projections

import (
	"context"
	"testing"

	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
)

// TestQuerySessionsForDay_DerivesStatus joins members and derives status per session.
func TestQuerySessionsForDay_DerivesStatus(t *testing.T) {
	done := at("done", "2026-10-21", "07:00", "m1")
	done.AttendedAt = testNow
	deps := sessionsDeps(stubSessions{
		at("b", "2026-10-21", "10:00", "m1"),
		done,
		at("c", "2026-10-21", "12:00", "m2"),
		at("d", "2026-10-21", "14:00", "gone"),
		at("other-day", "2026-10-22", "10:00", "m1"),
	})

	res, err := QuerySessionsForDay(context.Background(), SessionsForDayQuery{TrainerID: "t1", Date: "2026-10-21"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sessions) != 4 {
		t.Fatalf("got %d sessions, want 4", len(res.Sessions))
	}
	want := []struct {
		id     string
		name   string
		status session.Status
		attend bool
	}{
		{"done", "Sam", session.StatusCompleted, false},
		{"b", "Sam", session.StatusScheduled, true},
		{"c", "Mere", session.StatusNoRemainingSessions, false},
		{"d", "Unknown member", session.StatusNoRemainingSessions, false},
	}
	for i, w := range want {
		got := res.Sessions[i]
		if got.ID != w.id || got.MemberName != w.name || got.Status != w.status || got.CanAttend != w.attend {
			t.Errorf("session %d = %+v, want %+v", i, got, w)
		}
	}
	if res.Sessions[2].CanReschedule {
		t.Error("zero balance must disable reschedule")
	}
}

// TestQuerySessionsForWeek_MondayToSunday covers the week range and absent status.
func TestQuerySessionsForWeek_MondayToSunday(t *testing.T) {
	deps := sessionsDeps(stubSessions{
		at("sun-before", "2026-10-18", "09:00", "m1"),
		at("mon", "2026-10-19", "09:00", "m1"),
		at("sun", "2026-10-25", "09:00", "m1"),
		at("mon-after", "2026-10-26", "09:00", "m1"),
	})
	res, err := QuerySessionsForWeek(context.Background(), SessionsForWeekQuery{TrainerID: "t1", Week: "2026-10-23"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if res.From != "2026-10-19" || res.To != "2026-10-25" {
		t.Errorf("range = %s..%s", res.From, res.To)
	}
	if len(res.Sessions) != 2 || res.Sessions[0].ID != "mon" || res.Sessions[1].ID != "sun" {
		t.Fatalf("sessions = %+v", res.Sessions)
	}
	if res.Sessions[0].Status != session.StatusAbsent {
		t.Errorf("unattended Monday session should be absent on Wednesday, got %s", res.Sessions[0].Status)
	}
}

// TestQuerySessionsForDay_InvalidDate rejects malformed dates.
func TestQuerySessionsForDay_InvalidDate(t *testing.T) {
	_, err := QuerySessionsForDay(context.Background(), SessionsForDayQuery{TrainerID: "t1", Date: "21/10/2026"}, sessionsDeps(nil))
	if err != schedule.ErrInvalidDate {
		t.Errorf("err = %v", err)
	}
}

// TestQuerySlotAvailability covers buffer states and the edit exclusion.
func TestQuerySlotAvailability(t *testing.T) {
	store := stubSessions{at("s1", "2026-10-21", "10:00", "m1")}
	deps := SlotAvailabilityDeps{SessionStore: store}

	res, err := QuerySlotAvailability(context.Background(), SlotAvailabilityQuery{TrainerID: "t1", Date: "2026-10-21"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Slots) != schedule.BookingWindow.Len() {
		t.Errorf("got %d slots, want %d", len(res.Slots), schedule.BookingWindow.Len())
	}
	free := res.Free()
	if len(free) != schedule.BookingWindow.Len()-3 {
		t.Errorf("free = %d", len(free))
	}

	res, err = QuerySlotAvailability(context.Background(), SlotAvailabilityQuery{TrainerID: "t1", Date: "2026-10-21", ExcludeID: "s1"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Free()) != schedule.BookingWindow.Len() {
		t.Error("excluded session must not block any slot")
	}
}
