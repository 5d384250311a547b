package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	memberStore "studio/internal/adapters/storage/member"
	"studio/internal/config"
)

// Wednesday of the seeded week.
var testNow = time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *App {
	t.Helper()
	DisableColor()
	cfg := config.Default()
	cfg.Storage.DBPath = ":memory:"
	a := NewApp(cfg)
	a.now = func() time.Time { return testNow }
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func runApp(t *testing.T, a *App, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := a.run(&out, args...); err != nil {
		t.Fatalf("studioctl %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func seededTrainer(t *testing.T, a *App, name string) string {
	t.Helper()
	list, err := a.trainers.List(context.Background())
	if err != nil {
		t.Fatalf("list trainers: %v", err)
	}
	for _, tr := range list {
		if tr.Name == name {
			return tr.ID
		}
	}
	t.Fatalf("trainer %q not seeded", name)
	return ""
}

func TestSeedThenWeek(t *testing.T) {
	a := newTestApp(t)
	if out := runApp(t, a, "seed"); !strings.Contains(out, "Seeded 8 sessions") {
		t.Fatalf("seed output = %q", out)
	}
	if out := runApp(t, a, "seed"); !strings.Contains(out, "nothing seeded") {
		t.Errorf("second seed output = %q", out)
	}

	out := runApp(t, a, "week", "--trainer", seededTrainer(t, a, "Aroha Ngata"), "--week", "2026-10-21")
	for _, want := range []string{"WEEK 2026-10-19 - 2026-10-25", "Mon 2026-10-19", "07:00", "Sam Taylor", "absent", "no-remaining-sessions"} {
		if !strings.Contains(out, want) {
			t.Errorf("week output missing %q:\n%s", want, out)
		}
	}
}

func TestSlots(t *testing.T) {
	a := newTestApp(t)
	runApp(t, a, "seed")

	out := runApp(t, a, "slots", "--trainer", seededTrainer(t, a, "Aroha Ngata"), "--date", "2026-10-19")
	if !strings.Contains(out, "SLOTS 2026-10-19") {
		t.Errorf("missing header:\n%s", out)
	}
	// 07:00 and 08:00 each block three slots, 07:30 is shared
	if !strings.Contains(out, "28 free of 33") {
		t.Errorf("free count wrong:\n%s", out)
	}
}

func TestSlots_RequiresTrainer(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer
	if err := a.run(&out, "slots"); err == nil {
		t.Error("expected an error without --trainer")
	}
}

func TestImportMembers(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "members.csv")
	csv := "NAME,EMAIL,SESSIONS,GOAL\nAroha,aroha@example.com,5,strength\nBad,not-an-email,1,\nSam,sam@example.com,,\n"
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}

	out := runApp(t, a, "import-members", "--dry-run", path)
	if !strings.Contains(out, "(dry run)") || !strings.Contains(out, "created 2") {
		t.Errorf("dry run output:\n%s", out)
	}
	if n, _ := a.members.Count(context.Background(), memberStore.ListFilter{}); n != 0 {
		t.Errorf("dry run wrote %d members", n)
	}

	b := newTestApp(t)
	out = runApp(t, b, "import-members", path)
	for _, want := range []string{"rows 3, created 2", "errors 1", "row 3:", "ignored columns: GOAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("import output missing %q:\n%s", want, out)
		}
	}
	m, err := b.members.GetByEmail(context.Background(), "aroha@example.com")
	if err != nil {
		t.Fatalf("imported member: %v", err)
	}
	if m.RemainingSessions != 5 {
		t.Errorf("opening balance = %d, want 5", m.RemainingSessions)
	}
}

func TestMigrateAndVersion(t *testing.T) {
	a := newTestApp(t)
	if out := runApp(t, a, "migrate"); !strings.Contains(out, "schema version 3") {
		t.Errorf("migrate output = %q", out)
	}
	if out := runApp(t, a, "version"); !strings.HasPrefix(out, "studioctl dev") {
		t.Errorf("version output = %q", out)
	}
}
