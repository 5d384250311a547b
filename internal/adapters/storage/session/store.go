package session

import (
	"context"

	domainAttendance "studio/internal/domain/attendance"
	domain "studio/internal/domain/session"
)

// Store persists Session state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Create(ctx context.Context, value domain.Session) error
	CreateBatch(ctx context.Context, values []domain.Session) ([]domain.Session, error)
	Update(ctx context.Context, value domain.Session) error
	Delete(ctx context.Context, id string) error
	ListByTrainerAndDate(ctx context.Context, trainerID, date string) ([]domain.Session, error)
	ListByTrainerAndDateRange(ctx context.Context, trainerID, startDate, endDate string) ([]domain.Session, error)
	ListByMemberID(ctx context.Context, memberID string) ([]domain.Session, error)
	MarkAttended(ctx context.Context, a domainAttendance.Attendance) error
}
