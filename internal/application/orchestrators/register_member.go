package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"studio/internal/domain/member"

	"github.com/google/uuid"
)

// MemberStore defines the interface for member persistence.
type MemberStore interface {
	Save(ctx context.Context, m member.Member) error
	GetByID(ctx context.Context, id string) (member.Member, error)
	GetByEmail(ctx context.Context, email string) (member.Member, error)
}

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	Name              string
	Email             string
	Phone             string
	RemainingSessions int
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore MemberStore
}

// ExecuteRegisterMember coordinates member registration.
// PRE: Valid email, non-empty name, non-negative opening balance
// POST: Member created with ID, Status=active
// INVARIANT: Email must be unique
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (member.Member, error) {
	m := member.Member{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:             strings.TrimSpace(input.Phone),
		RemainingSessions: input.RemainingSessions,
		Status:            member.StatusActive,
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, invalid(err)
	}

	if _, err := deps.MemberStore.GetByEmail(ctx, m.Email); err == nil {
		return member.Member{}, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return member.Member{}, err
	}

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}

	slog.Info("member_event", "event", "member_registered", "member_id", m.ID, "balance", m.RemainingSessions)
	return m, nil
}
