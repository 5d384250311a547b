package attendance

import (
	"context"

	domain "studio/internal/domain/attendance"
)

// Store reads Attendance records. Rows are written by the session store
// together with the balance decrement.
type Store interface {
	GetBySessionID(ctx context.Context, sessionID string) (domain.Attendance, error)
	ListByMemberID(ctx context.Context, memberID string, filter ListFilter) ([]domain.Attendance, error)
	ListByTrainerAndDateRange(ctx context.Context, trainerID, startDate, endDate string) ([]domain.Attendance, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
}
