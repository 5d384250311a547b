package trainer

import (
	"context"

	domain "studio/internal/domain/trainer"
)

// Store persists Trainer state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Trainer, error)
	Save(ctx context.Context, value domain.Trainer) error
	List(ctx context.Context) ([]domain.Trainer, error)
}
