package orchestrators

import (
	"context"
	"log/slog"

	"studio/internal/domain/member"
)

// ArchiveMemberInput carries input for the archive and restore orchestrators.
type ArchiveMemberInput struct {
	MemberID string
}

// ArchiveMemberDeps holds dependencies for ArchiveMember and RestoreMember.
type ArchiveMemberDeps struct {
	MemberStore MemberStore
}

// ExecuteArchiveMember archives a member. Existing bookings stay; new bookings are refused.
// PRE: member exists and is not archived
// POST: Member status set to archived
func ExecuteArchiveMember(ctx context.Context, input ArchiveMemberInput, deps ArchiveMemberDeps) (member.Member, error) {
	return changeMemberStatus(ctx, input.MemberID, deps, (*member.Member).Archive, "member_archived")
}

// ExecuteRestoreMember restores an archived member to active status.
// PRE: member exists and is archived
// POST: Member status set to active
func ExecuteRestoreMember(ctx context.Context, input ArchiveMemberInput, deps ArchiveMemberDeps) (member.Member, error) {
	return changeMemberStatus(ctx, input.MemberID, deps, (*member.Member).Restore, "member_restored")
}

func changeMemberStatus(ctx context.Context, id string, deps ArchiveMemberDeps, transition func(*member.Member) error, event string) (member.Member, error) {
	m, err := deps.MemberStore.GetByID(ctx, id)
	if err != nil {
		return member.Member{}, lookup(err, ErrMemberNotFound)
	}
	if err := transition(&m); err != nil {
		return member.Member{}, err
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	slog.Info("member_event", "event", event, "member_id", id)
	return m, nil
}
