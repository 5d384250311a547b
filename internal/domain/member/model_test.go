package member_test

import (
	"testing"

	"studio/internal/domain/member"
)

// TestMemberValidation tests validation of Member.
func TestMemberValidation(t *testing.T) {
	tests := []struct {
		name    string
		member  member.Member
		wantErr bool
	}{
		{
			name:    "valid member",
			member:  member.Member{ID: "1", Name: "Aroha Ngata", Email: "aroha@example.com", RemainingSessions: 10, Status: member.StatusActive},
			wantErr: false,
		},
		{
			name:    "valid with zero balance",
			member:  member.Member{ID: "1", Name: "Aroha Ngata", Email: "aroha@example.com", Status: member.StatusActive},
			wantErr: false,
		},
		{
			name:    "empty name",
			member:  member.Member{ID: "1", Email: "aroha@example.com", Status: member.StatusActive},
			wantErr: true,
		},
		{
			name:    "invalid email",
			member:  member.Member{ID: "1", Name: "Aroha", Email: "nope", Status: member.StatusActive},
			wantErr: true,
		},
		{
			name:    "negative balance",
			member:  member.Member{ID: "1", Name: "Aroha", Email: "a@b.c", RemainingSessions: -1, Status: member.StatusActive},
			wantErr: true,
		},
		{
			name:    "unknown status",
			member:  member.Member{ID: "1", Name: "Aroha", Email: "a@b.c", Status: "paused"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.member.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestMember_TopUp tests balance restoration bounds.
func TestMember_TopUp(t *testing.T) {
	m := member.Member{RemainingSessions: 0}
	if m.HasRemainingSessions() {
		t.Fatal("zero balance should report no remaining sessions")
	}
	if err := m.TopUp(10); err != nil {
		t.Fatalf("TopUp(10): %v", err)
	}
	if m.RemainingSessions != 10 || !m.HasRemainingSessions() {
		t.Errorf("RemainingSessions = %d, want 10", m.RemainingSessions)
	}
	if err := m.TopUp(0); err != member.ErrInvalidTopUp {
		t.Errorf("TopUp(0) = %v, want ErrInvalidTopUp", err)
	}
	if err := m.TopUp(201); err != member.ErrInvalidTopUp {
		t.Errorf("TopUp(201) = %v, want ErrInvalidTopUp", err)
	}
}

// TestMember_ArchiveRestore tests the archive lifecycle.
func TestMember_ArchiveRestore(t *testing.T) {
	m := member.Member{Status: member.StatusActive}
	if err := m.Restore(); err != member.ErrNotArchived {
		t.Errorf("Restore(active) = %v", err)
	}
	if err := m.Archive(); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !m.IsArchived() {
		t.Error("expected archived")
	}
	if err := m.Archive(); err != member.ErrAlreadyArchived {
		t.Errorf("Archive twice = %v", err)
	}
	if err := m.Restore(); err != nil || m.Status != member.StatusActive {
		t.Errorf("Restore = %v, status %s", err, m.Status)
	}
}
