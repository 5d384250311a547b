package projections

import (
	"context"

	"studio/internal/adapters/storage/attendance"
	"studio/internal/adapters/storage/member"
	domainAttendance "studio/internal/domain/attendance"
	domainMember "studio/internal/domain/member"
	domainSession "studio/internal/domain/session"
	domainTrainer "studio/internal/domain/trainer"
)

// SessionStore interface for session queries.
type SessionStore interface {
	ListByTrainerAndDate(ctx context.Context, trainerID, date string) ([]domainSession.Session, error)
	ListByTrainerAndDateRange(ctx context.Context, trainerID, startDate, endDate string) ([]domainSession.Session, error)
}

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
}

// MemberListStore interface for paged member queries.
type MemberListStore interface {
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
	Count(ctx context.Context, filter member.ListFilter) (int, error)
}

// TrainerStore interface for trainer queries.
type TrainerStore interface {
	GetByID(ctx context.Context, id string) (domainTrainer.Trainer, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByMemberID(ctx context.Context, memberID string, filter attendance.ListFilter) ([]domainAttendance.Attendance, error)
}
