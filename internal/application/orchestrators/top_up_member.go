package orchestrators

import (
	"context"
	"log/slog"

	"studio/internal/domain/member"
)

// BalanceStore defines the member store interface needed for top-ups.
type BalanceStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	AddSessions(ctx context.Context, id string, n int) (int, error)
}

// TopUpMemberInput carries input for the top-up orchestrator.
type TopUpMemberInput struct {
	MemberID string
	Sessions int
}

// TopUpMemberDeps holds dependencies for TopUpMember.
type TopUpMemberDeps struct {
	MemberStore BalanceStore
}

// ExecuteTopUpMember adds prepaid sessions to a member's balance. Restoring a
// positive balance re-enables attend and reschedule on the member's bookings.
// PRE: 1 <= Sessions <= member.MaxTopUpAmount; member is not archived
// POST: Returns the member with the new balance
func ExecuteTopUpMember(ctx context.Context, input TopUpMemberInput, deps TopUpMemberDeps) (member.Member, error) {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return member.Member{}, lookup(err, ErrMemberNotFound)
	}
	if m.IsArchived() {
		return member.Member{}, member.ErrArchivedNoBooking
	}
	probe := m
	if err := probe.TopUp(input.Sessions); err != nil {
		return member.Member{}, invalid(err)
	}

	balance, err := deps.MemberStore.AddSessions(ctx, m.ID, input.Sessions)
	if err != nil {
		return member.Member{}, err
	}
	m.RemainingSessions = balance

	slog.Info("member_event", "event", "member_topped_up", "member_id", m.ID, "added", input.Sessions, "balance", balance)
	return m, nil
}
