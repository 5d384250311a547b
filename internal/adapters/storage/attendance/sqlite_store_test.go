package attendance_test

import (
	"context"
	"testing"
	"time"

	"studio/internal/adapters/storage"
	attendanceStore "studio/internal/adapters/storage/attendance"
)

// TestSQLiteStore_Lists verifies attendance lookups by member and trainer.
func TestSQLiteStore_Lists(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	if err := storage.MigrateDB(ctx, db); err != nil {
		t.Fatal(err)
	}
	seed := []string{
		"INSERT INTO trainer (id, name) VALUES ('t1', 'Aroha')",
		"INSERT INTO member (id, name, email, remaining_sessions, status) VALUES ('m1', 'Sam', 'sam@example.com', 3, 'active')",
		"INSERT INTO attendance (id, member_id, session_id, trainer_id, check_in_time, class_date) VALUES ('a1', 'm1', 's1', 't1', '2026-10-12T10:05:00Z', '2026-10-12')",
		"INSERT INTO attendance (id, member_id, session_id, trainer_id, check_in_time, class_date) VALUES ('a2', 'm1', 's2', 't1', '2026-10-19 10:02:00', '2026-10-19')",
	}
	for _, q := range seed {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	store := attendanceStore.NewSQLiteStore(db)

	byMember, err := store.ListByMemberID(ctx, "m1", attendanceStore.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(byMember) != 2 || byMember[0].ID != "a2" {
		t.Errorf("ListByMemberID = %+v", byMember)
	}
	want := time.Date(2026, 10, 19, 10, 2, 0, 0, time.UTC)
	if !byMember[0].CheckInTime.Equal(want) {
		t.Errorf("CheckInTime = %v, want %v", byMember[0].CheckInTime, want)
	}

	week, err := store.ListByTrainerAndDateRange(ctx, "t1", "2026-10-13", "2026-10-19")
	if err != nil {
		t.Fatal(err)
	}
	if len(week) != 1 || week[0].SessionID != "s2" {
		t.Errorf("ListByTrainerAndDateRange = %+v", week)
	}

	got, err := store.GetBySessionID(ctx, "s1")
	if err != nil || got.ID != "a1" {
		t.Errorf("GetBySessionID = %+v, %v", got, err)
	}
}
