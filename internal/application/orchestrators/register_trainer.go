package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"studio/internal/domain/trainer"

	"github.com/google/uuid"
)

// TrainerStore defines the interface for trainer persistence.
type TrainerStore interface {
	Save(ctx context.Context, t trainer.Trainer) error
}

// RegisterTrainerInput carries input for the orchestrator.
type RegisterTrainerInput struct {
	Name  string
	Email string
}

// RegisterTrainerDeps holds dependencies for RegisterTrainer.
type RegisterTrainerDeps struct {
	TrainerStore TrainerStore
}

// ExecuteRegisterTrainer adds a trainer who takes bookings immediately.
// PRE: non-empty name
// POST: Trainer created with ID, Active=true
func ExecuteRegisterTrainer(ctx context.Context, input RegisterTrainerInput, deps RegisterTrainerDeps) (trainer.Trainer, error) {
	t := trainer.Trainer{
		ID:     uuid.New().String(),
		Name:   strings.TrimSpace(input.Name),
		Email:  strings.TrimSpace(input.Email),
		Active: true,
	}
	if err := t.Validate(); err != nil {
		return trainer.Trainer{}, invalid(err)
	}
	if err := deps.TrainerStore.Save(ctx, t); err != nil {
		return trainer.Trainer{}, err
	}
	slog.Info("trainer_event", "event", "trainer_registered", "trainer_id", t.ID)
	return t, nil
}
