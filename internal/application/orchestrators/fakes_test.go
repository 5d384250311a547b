package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	emailAdapter "studio/internal/adapters/email"
	"studio/internal/domain/attendance"
	"studio/internal/domain/member"
	"studio/internal/domain/outbox"
	"studio/internal/domain/session"
	"studio/internal/domain/trainer"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) // a Monday

func fixedNow() time.Time { return testNow }

// fakeTrainerStore is an in-memory trainer store.
type fakeTrainerStore struct {
	byID map[string]trainer.Trainer
}

func newFakeTrainerStore(ts ...trainer.Trainer) *fakeTrainerStore {
	s := &fakeTrainerStore{byID: map[string]trainer.Trainer{}}
	for _, t := range ts {
		s.byID[t.ID] = t
	}
	return s
}

func (s *fakeTrainerStore) GetByID(_ context.Context, id string) (trainer.Trainer, error) {
	t, ok := s.byID[id]
	if !ok {
		return trainer.Trainer{}, fmt.Errorf("trainer not found: %w", sql.ErrNoRows)
	}
	return t, nil
}

func (s *fakeTrainerStore) Save(_ context.Context, t trainer.Trainer) error {
	s.byID[t.ID] = t
	return nil
}

func (s *fakeTrainerStore) List(_ context.Context) ([]trainer.Trainer, error) {
	var out []trainer.Trainer
	for _, t := range s.byID {
		out = append(out, t)
	}
	return out, nil
}

// fakeMemberStore is an in-memory member store.
type fakeMemberStore struct {
	byID    map[string]member.Member
	saveErr error
}

func newFakeMemberStore(ms ...member.Member) *fakeMemberStore {
	s := &fakeMemberStore{byID: map[string]member.Member{}}
	for _, m := range ms {
		s.byID[m.ID] = m
	}
	return s
}

func (s *fakeMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := s.byID[id]
	if !ok {
		return member.Member{}, fmt.Errorf("member not found: %w", sql.ErrNoRows)
	}
	return m, nil
}

func (s *fakeMemberStore) GetByEmail(_ context.Context, email string) (member.Member, error) {
	for _, m := range s.byID {
		if m.Email == email {
			return m, nil
		}
	}
	return member.Member{}, fmt.Errorf("member not found: %w", sql.ErrNoRows)
}

func (s *fakeMemberStore) Save(_ context.Context, m member.Member) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if old, ok := s.byID[m.ID]; ok {
		m.RemainingSessions = old.RemainingSessions
	}
	s.byID[m.ID] = m
	return nil
}

func (s *fakeMemberStore) AddSessions(_ context.Context, id string, n int) (int, error) {
	m, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("member not found: %w", sql.ErrNoRows)
	}
	if m.RemainingSessions+n < 0 {
		return 0, member.ErrNegativeBalance
	}
	m.RemainingSessions += n
	s.byID[id] = m
	return m.RemainingSessions, nil
}

// fakeSessionStore is an in-memory session store that enforces the
// (trainer, date, time) uniqueness of the real schema.
type fakeSessionStore struct {
	mu         sync.Mutex
	byID       map[string]session.Session
	members    *fakeMemberStore
	attendance []attendance.Attendance
	// inject simulates a concurrent booking landing between snapshot and insert
	inject []session.Session
}

func newFakeSessionStore(members *fakeMemberStore, ss ...session.Session) *fakeSessionStore {
	s := &fakeSessionStore{byID: map[string]session.Session{}, members: members}
	for _, x := range ss {
		s.byID[x.ID] = x
	}
	return s
}

func (s *fakeSessionStore) taken(x session.Session) bool {
	for _, o := range s.byID {
		if o.ID != x.ID && o.TrainerID == x.TrainerID && o.Date == x.Date && o.Time == x.Time {
			return true
		}
	}
	return false
}

func (s *fakeSessionStore) GetByID(_ context.Context, id string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, ok := s.byID[id]
	if !ok {
		return session.Session{}, fmt.Errorf("session not found: %w", sql.ErrNoRows)
	}
	return x, nil
}

func (s *fakeSessionStore) Create(_ context.Context, x session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken(x) {
		return session.ErrSlotUnavailable
	}
	s.byID[x.ID] = x
	return nil
}

func (s *fakeSessionStore) CreateBatch(_ context.Context, xs []session.Session) ([]session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.inject {
		s.byID[x.ID] = x
	}
	var out []session.Session
	for _, x := range xs {
		if s.taken(x) {
			continue
		}
		s.byID[x.ID] = x
		out = append(out, x)
	}
	return out, nil
}

func (s *fakeSessionStore) Update(_ context.Context, x session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[x.ID]
	if !ok {
		return fmt.Errorf("session %s: %w", x.ID, sql.ErrNoRows)
	}
	if old.IsAttended() {
		return session.ErrAlreadyCompleted
	}
	if s.taken(x) {
		return session.ErrSlotUnavailable
	}
	s.byID[x.ID] = x
	return nil
}

func (s *fakeSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *fakeSessionStore) list(match func(session.Session) bool) []session.Session {
	var out []session.Session
	for _, x := range s.byID {
		if match(x) {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

func (s *fakeSessionStore) ListByTrainerAndDate(_ context.Context, trainerID, date string) ([]session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(x session.Session) bool { return x.TrainerID == trainerID && x.Date == date }), nil
}

func (s *fakeSessionStore) ListByTrainerAndDateRange(_ context.Context, trainerID, from, to string) ([]session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(x session.Session) bool { return x.TrainerID == trainerID && x.Date >= from && x.Date <= to }), nil
}

func (s *fakeSessionStore) MarkAttended(_ context.Context, a attendance.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	x := s.byID[a.SessionID]
	if x.IsAttended() {
		return session.ErrAlreadyCompleted
	}
	m := s.members.byID[a.MemberID]
	if m.RemainingSessions <= 0 {
		return session.ErrNoRemainingSessions
	}
	m.RemainingSessions--
	s.members.byID[a.MemberID] = m
	x.AttendedAt = a.CheckInTime
	s.byID[x.ID] = x
	s.attendance = append(s.attendance, a)
	return nil
}

// fixture builds the stores shared by most tests: one active trainer and a
// member with the given balance.
func fixture(balance int, existing ...session.Session) (*fakeTrainerStore, *fakeMemberStore, *fakeSessionStore) {
	trainers := newFakeTrainerStore(trainer.Trainer{ID: "t1", Name: "Aroha", Email: "aroha@example.com", Active: true})
	members := newFakeMemberStore(member.Member{ID: "m1", Name: "Sam", Email: "sam@example.com", RemainingSessions: balance, Status: member.StatusActive})
	return trainers, members, newFakeSessionStore(members, existing...)
}

func booked(id, date, clock string) session.Session {
	return session.Session{ID: id, TrainerID: "t1", MemberID: "m1", Date: date, Time: clock, CreatedAt: testNow}
}

// fakeOutboxStore is an in-memory outbox.
type fakeOutboxStore struct {
	byID map[string]outbox.Entry
}

func newFakeOutboxStore(es ...outbox.Entry) *fakeOutboxStore {
	s := &fakeOutboxStore{byID: map[string]outbox.Entry{}}
	for _, e := range es {
		s.byID[e.ID] = e
	}
	return s
}

func (s *fakeOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := s.byID[id]
	if !ok {
		return outbox.Entry{}, sql.ErrNoRows
	}
	return e, nil
}

func (s *fakeOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	s.byID[e.ID] = e
	return nil
}

func (s *fakeOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range s.byID {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// flakySender fails its first failures batches, then delegates to a NoopSender.
type flakySender struct {
	failures int
	calls    int
	*emailAdapter.NoopSender
}

func newFlakySender(failures int) *flakySender {
	return &flakySender{failures: failures, NoopSender: emailAdapter.NewNoopSender()}
}

func (s *flakySender) SendBatch(ctx context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("provider unavailable")
	}
	return s.NoopSender.SendBatch(ctx, reqs)
}
