package member_test

import (
	"context"
	"errors"
	"testing"

	"studio/internal/adapters/storage"
	memberStore "studio/internal/adapters/storage/member"
	domain "studio/internal/domain/member"
)

func setup(t *testing.T) *memberStore.SQLiteStore {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return memberStore.NewSQLiteStore(db)
}

// TestSave_UpsertKeepsBalance verifies Save never overwrites the balance of an existing member.
func TestSave_UpsertKeepsBalance(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	m := domain.Member{ID: "m1", Name: "Sam", Email: "sam@example.com", RemainingSessions: 4, Status: domain.StatusActive}
	if err := store.Save(ctx, m); err != nil {
		t.Fatal(err)
	}

	m.Name = "Samantha"
	m.RemainingSessions = 99
	if err := store.Save(ctx, m); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetByEmail(ctx, "sam@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Samantha" || got.RemainingSessions != 4 {
		t.Errorf("got %+v", got)
	}
}

// TestAddSessions tests atomic balance changes.
func TestAddSessions(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	store.Save(ctx, domain.Member{ID: "m1", Name: "Sam", Email: "sam@example.com", RemainingSessions: 1, Status: domain.StatusActive})

	balance, err := store.AddSessions(ctx, "m1", 10)
	if err != nil || balance != 11 {
		t.Fatalf("AddSessions(+10) = %d, %v", balance, err)
	}
	if _, err := store.AddSessions(ctx, "m1", -12); !errors.Is(err, domain.ErrNegativeBalance) {
		t.Errorf("AddSessions(-12) err = %v", err)
	}
	if _, err := store.AddSessions(ctx, "nobody", 1); err == nil {
		t.Error("unknown member should fail")
	}
}

// TestList_FilterAndCount tests search and status filtering.
func TestList_FilterAndCount(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	store.Save(ctx, domain.Member{ID: "1", Name: "Ana", Email: "ana@example.com", Status: domain.StatusActive})
	store.Save(ctx, domain.Member{ID: "2", Name: "Ben", Email: "ben@example.com", Status: domain.StatusArchived})
	store.Save(ctx, domain.Member{ID: "3", Name: "Bea", Email: "bea@example.com", Status: domain.StatusActive})

	got, err := store.List(ctx, memberStore.ListFilter{Status: domain.StatusActive})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Ana" || got[1].Name != "Bea" {
		t.Errorf("active = %+v", got)
	}
	n, err := store.Count(ctx, memberStore.ListFilter{Search: "be"})
	if err != nil || n != 2 {
		t.Errorf("Count(be) = %d, %v", n, err)
	}
}
