package projections

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"studio/internal/adapters/storage/attendance"
	"studio/internal/adapters/storage/member"
	domainAttendance "studio/internal/domain/attendance"
	domainMember "studio/internal/domain/member"
	"studio/internal/domain/session"
)

var testNow = time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC) // a Wednesday

func fixedNow() time.Time { return testNow }

type stubSessions []session.Session

func (s stubSessions) sorted(match func(session.Session) bool) []session.Session {
	var out []session.Session
	for _, x := range s {
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

func (s stubSessions) ListByTrainerAndDate(_ context.Context, trainerID, date string) ([]session.Session, error) {
	return s.sorted(func(x session.Session) bool { return x.TrainerID == trainerID && x.Date == date }), nil
}

func (s stubSessions) ListByTrainerAndDateRange(_ context.Context, trainerID, from, to string) ([]session.Session, error) {
	return s.sorted(func(x session.Session) bool { return x.TrainerID == trainerID && x.Date >= from && x.Date <= to }), nil
}

type stubMembers map[string]domainMember.Member

func (s stubMembers) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	m, ok := s[id]
	if !ok {
		return domainMember.Member{}, fmt.Errorf("member not found: %w", sql.ErrNoRows)
	}
	return m, nil
}

func (s stubMembers) List(_ context.Context, f member.ListFilter) ([]domainMember.Member, error) {
	var all []domainMember.Member
	for _, m := range s {
		if f.Status == "" || m.Status == f.Status {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if f.Offset >= len(all) {
		return nil, nil
	}
	return all[f.Offset:min(f.Offset+f.Limit, len(all))], nil
}

func (s stubMembers) Count(ctx context.Context, f member.ListFilter) (int, error) {
	f.Limit, f.Offset = len(s), 0
	all, _ := s.List(ctx, f)
	return len(all), nil
}

type stubAttendance []domainAttendance.Attendance

func (s stubAttendance) ListByMemberID(_ context.Context, memberID string, f attendance.ListFilter) ([]domainAttendance.Attendance, error) {
	var out []domainAttendance.Attendance
	for _, a := range s {
		if a.MemberID == memberID {
			out = append(out, a)
		}
	}
	if f.Offset >= len(out) {
		return nil, nil
	}
	return out[f.Offset:min(f.Offset+f.Limit, len(out))], nil
}

func at(id, date, clock, memberID string) session.Session {
	return session.Session{ID: id, TrainerID: "t1", MemberID: memberID, Date: date, Time: clock}
}

func sessionsDeps(sessions stubSessions) SessionsDeps {
	return SessionsDeps{
		SessionStore: sessions,
		MemberStore: stubMembers{
			"m1": {ID: "m1", Name: "Sam", RemainingSessions: 4, Status: domainMember.StatusActive},
			"m2": {ID: "m2", Name: "Mere", RemainingSessions: 0, Status: domainMember.StatusActive},
		},
		Now: fixedNow,
	}
}
