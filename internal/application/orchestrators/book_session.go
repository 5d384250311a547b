package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"studio/internal/domain/member"
	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
	"studio/internal/domain/trainer"

	"github.com/google/uuid"
)

// TrainerLookupStore defines the trainer store interface needed for booking.
type TrainerLookupStore interface {
	GetByID(ctx context.Context, id string) (trainer.Trainer, error)
}

// MemberLookupStore defines the member store interface needed for booking.
type MemberLookupStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// BookingStore defines the session store interface needed for booking.
type BookingStore interface {
	ListByTrainerAndDateRange(ctx context.Context, trainerID, startDate, endDate string) ([]session.Session, error)
	Create(ctx context.Context, s session.Session) error
	CreateBatch(ctx context.Context, sessions []session.Session) ([]session.Session, error)
}

// BookSessionInput carries input for the booking orchestrator.
// Repeat (or RepeatCount > 1) books the same weekday and time for RepeatCount
// successive weeks; collisions are then skipped rather than failing the request.
type BookSessionInput struct {
	TrainerID   string
	MemberID    string
	Date        string
	Time        string
	Notes       string
	Repeat      bool
	RepeatCount int
}

// BookSessionResult reports what was persisted.
type BookSessionResult struct {
	Sessions []session.Session
	Skipped  []schedule.Candidate
	Summary  schedule.Summary
}

// BookSessionDeps holds dependencies for BookSession.
type BookSessionDeps struct {
	TrainerStore TrainerLookupStore
	MemberStore  MemberLookupStore
	SessionStore BookingStore
	Notify       *NotifyBookingDeps // optional: nil skips the confirmation email
	Now          func() time.Time
}

// ExecuteBookSession books one session, or a weekly series when Repeat is set.
// A single booking that conflicts fails with session.ErrSlotUnavailable. A series
// is checked against one snapshot of the trainer's sessions; colliding weeks are
// skipped and reported, which is not an error.
// PRE: trainer is active; member is active with a positive balance
// POST: Accepted sessions persisted; Summary.Total == Added + Skipped
func ExecuteBookSession(ctx context.Context, input BookSessionInput, deps BookSessionDeps) (BookSessionResult, error) {
	count := input.RepeatCount
	if count == 0 {
		count = 1
	}
	series := input.Repeat || count > 1
	req := schedule.RepeatRequest{Date: input.Date, Time: input.Time, Count: count}
	if err := req.Validate(); err != nil {
		return BookSessionResult{}, invalid(err)
	}

	now := deps.Now()
	proto := session.Session{
		TrainerID: input.TrainerID,
		MemberID:  input.MemberID,
		Date:      input.Date,
		Time:      input.Time,
		Notes:     input.Notes,
		CreatedAt: now,
	}
	if err := proto.Validate(); err != nil {
		return BookSessionResult{}, invalid(err)
	}

	t, err := deps.TrainerStore.GetByID(ctx, input.TrainerID)
	if err != nil {
		return BookSessionResult{}, lookup(err, ErrTrainerNotFound)
	}
	if !t.Active {
		return BookSessionResult{}, trainer.ErrInactive
	}
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return BookSessionResult{}, lookup(err, ErrMemberNotFound)
	}
	if m.IsArchived() {
		return BookSessionResult{}, member.ErrArchivedNoBooking
	}
	if !m.HasRemainingSessions() {
		return BookSessionResult{}, session.ErrNoRemainingSessions
	}

	from, to := req.DateRange()
	existing, err := deps.SessionStore.ListByTrainerAndDateRange(ctx, input.TrainerID, from, to)
	if err != nil {
		return BookSessionResult{}, err
	}
	plan := schedule.ExpandRepeat(req, session.GroupByDate(existing))

	var result BookSessionResult
	if !series {
		if len(plan.Accepted) == 0 {
			return BookSessionResult{}, session.ErrSlotUnavailable
		}
		s := proto
		s.ID = uuid.New().String()
		if err := deps.SessionStore.Create(ctx, s); err != nil {
			return BookSessionResult{}, err
		}
		result = BookSessionResult{Sessions: []session.Session{s}, Summary: plan.Summary()}
	} else {
		candidates := make([]session.Session, 0, len(plan.Accepted))
		for _, c := range plan.Accepted {
			s := proto
			s.ID = uuid.New().String()
			s.Date = c.Date
			candidates = append(candidates, s)
		}
		inserted, err := deps.SessionStore.CreateBatch(ctx, candidates)
		if err != nil {
			return BookSessionResult{}, err
		}
		result = BookSessionResult{Sessions: inserted, Skipped: plan.Skipped}
		// rows lost to a concurrent booking between snapshot and insert
		if len(inserted) < len(candidates) {
			kept := make(map[string]bool, len(inserted))
			for _, s := range inserted {
				kept[s.Date] = true
			}
			for _, c := range plan.Accepted {
				if !kept[c.Date] {
					result.Skipped = append(result.Skipped, c)
				}
			}
		}
		result.Summary = schedule.Summary{Total: count, Added: len(inserted), Skipped: count - len(inserted)}
	}

	slog.Info("session_event", "event", "session_booked",
		"trainer_id", input.TrainerID, "member_id", input.MemberID,
		"date", input.Date, "time", input.Time,
		"total", result.Summary.Total, "added", result.Summary.Added, "skipped", result.Summary.Skipped)

	if deps.Notify != nil && len(result.Sessions) > 0 {
		// best effort: the booking stands even if the email fails
		if err := ExecuteNotifyBooking(ctx, NotifyBookingInput{Trainer: t, Member: m, Sessions: result.Sessions, Skipped: len(result.Skipped)}, *deps.Notify); err != nil {
			slog.Warn("session_event", "event", "booking_notification_failed", "member_id", m.ID, "error", err)
		}
	}
	return result, nil
}
