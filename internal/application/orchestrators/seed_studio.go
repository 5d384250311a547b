package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studio/internal/domain/member"
	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
	"studio/internal/domain/trainer"

	"github.com/google/uuid"
)

// SeedStudioDeps holds stores needed for development seeding.
type SeedStudioDeps struct {
	TrainerStore seedTrainerStore
	MemberStore  seedMemberStore
	SessionStore seedSessionStore
	Now          func() time.Time
}

type seedTrainerStore interface {
	Save(ctx context.Context, t trainer.Trainer) error
	List(ctx context.Context) ([]trainer.Trainer, error)
}

type seedMemberStore interface {
	Save(ctx context.Context, m member.Member) error
}

type seedSessionStore interface {
	CreateBatch(ctx context.Context, sessions []session.Session) ([]session.Session, error)
}

// ExecuteSeedStudio loads two trainers, three members and a week of bookings.
// It does nothing when any trainer already exists.
// PRE: Database is migrated
// POST: Returns the number of sessions created (0 when skipped)
func ExecuteSeedStudio(ctx context.Context, deps SeedStudioDeps) (int, error) {
	existing, err := deps.TrainerStore.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	trainers := []trainer.Trainer{
		{ID: uuid.New().String(), Name: "Aroha Ngata", Email: "aroha@example.com", Active: true},
		{ID: uuid.New().String(), Name: "Liam Chen", Active: true},
	}
	for _, t := range trainers {
		if err := deps.TrainerStore.Save(ctx, t); err != nil {
			return 0, fmt.Errorf("seeding trainer %s: %w", t.Name, err)
		}
	}

	members := []member.Member{
		{ID: uuid.New().String(), Name: "Sam Taylor", Email: "sam@example.com", RemainingSessions: 10, Status: member.StatusActive},
		{ID: uuid.New().String(), Name: "Mere Walker", Email: "mere@example.com", RemainingSessions: 3, Status: member.StatusActive},
		{ID: uuid.New().String(), Name: "Jo Patel", Email: "jo@example.com", RemainingSessions: 0, Status: member.StatusActive},
	}
	for _, m := range members {
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			return 0, fmt.Errorf("seeding member %s: %w", m.Name, err)
		}
	}

	now := deps.Now()
	monday := schedule.WeekStart(now)
	plan := []struct {
		trainer, member int
		day             int
		clock           string
	}{
		{0, 0, 0, "07:00"}, {0, 1, 0, "08:00"}, {0, 2, 1, "18:30"},
		{0, 0, 2, "07:00"}, {1, 1, 2, "07:00"}, {1, 0, 4, "12:00"},
		{0, 1, 4, "17:30"}, {1, 2, 5, "09:00"},
	}
	var batch []session.Session
	for _, p := range plan {
		batch = append(batch, session.Session{
			ID:        uuid.New().String(),
			TrainerID: trainers[p.trainer].ID,
			MemberID:  members[p.member].ID,
			Date:      monday.AddDate(0, 0, p.day).Format(schedule.DateLayout),
			Time:      p.clock,
			CreatedAt: now,
		})
	}
	inserted, err := deps.SessionStore.CreateBatch(ctx, batch)
	if err != nil {
		return 0, err
	}
	slog.Info("seed_event", "event", "studio_seeded", "trainers", len(trainers), "members", len(members), "sessions", len(inserted))
	return len(inserted), nil
}
