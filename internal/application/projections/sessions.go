package projections

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainMember "studio/internal/domain/member"
	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
)

// SessionView is a session joined with its member and the derived status.
type SessionView struct {
	ID            string         `json:"id"`
	TrainerID     string         `json:"trainerId"`
	MemberID      string         `json:"memberId"`
	MemberName    string         `json:"memberName"`
	Date          string         `json:"date"`
	Time          string         `json:"time"`
	Notes         string         `json:"notes,omitempty"`
	Status        session.Status `json:"status"`
	Balance       int            `json:"remainingSessions"`
	CanAttend     bool           `json:"canAttend"`
	CanReschedule bool           `json:"canReschedule"`
	CanCancel     bool           `json:"canCancel"`
}

// SessionsDeps holds dependencies for the session list projections.
type SessionsDeps struct {
	SessionStore SessionStore
	MemberStore  MemberStore
	Now          func() time.Time
}

// SessionsForDayQuery carries query parameters.
type SessionsForDayQuery struct {
	TrainerID string
	Date      string
}

// SessionsForWeekQuery carries query parameters. Week may be any date in the week.
type SessionsForWeekQuery struct {
	TrainerID string
	Week      string
}

// SessionsResult carries the query result.
type SessionsResult struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Sessions []SessionView `json:"sessions"`
}

// QuerySessionsForDay lists a trainer's sessions on one date in time order.
// PRE: Date is YYYY-MM-DD
// POST: Every session carries its member's name and derived status
func QuerySessionsForDay(ctx context.Context, query SessionsForDayQuery, deps SessionsDeps) (SessionsResult, error) {
	if _, err := schedule.ParseDate(query.Date); err != nil {
		return SessionsResult{}, err
	}
	sessions, err := deps.SessionStore.ListByTrainerAndDate(ctx, query.TrainerID, query.Date)
	if err != nil {
		return SessionsResult{}, err
	}
	views, err := viewSessions(ctx, sessions, deps)
	if err != nil {
		return SessionsResult{}, err
	}
	return SessionsResult{From: query.Date, To: query.Date, Sessions: views}, nil
}

// QuerySessionsForWeek lists a trainer's sessions from Monday to Sunday of the given week.
// PRE: Week is YYYY-MM-DD
// POST: Sessions ordered by date then time
func QuerySessionsForWeek(ctx context.Context, query SessionsForWeekQuery, deps SessionsDeps) (SessionsResult, error) {
	from, to, err := weekRange(query.Week)
	if err != nil {
		return SessionsResult{}, err
	}
	sessions, err := deps.SessionStore.ListByTrainerAndDateRange(ctx, query.TrainerID, from, to)
	if err != nil {
		return SessionsResult{}, err
	}
	views, err := viewSessions(ctx, sessions, deps)
	if err != nil {
		return SessionsResult{}, err
	}
	return SessionsResult{From: from, To: to, Sessions: views}, nil
}

// weekRange returns the Monday and Sunday of the week containing date.
func weekRange(date string) (string, string, error) {
	d, err := schedule.ParseDate(date)
	if err != nil {
		return "", "", err
	}
	monday := schedule.WeekStart(d)
	return monday.Format(schedule.DateLayout), monday.AddDate(0, 0, 6).Format(schedule.DateLayout), nil
}

// viewSessions joins members once per distinct member ID.
// A member row that has gone missing renders as "Unknown member" with no balance.
func viewSessions(ctx context.Context, sessions []session.Session, deps SessionsDeps) ([]SessionView, error) {
	now := deps.Now()
	members := make(map[string]domainMember.Member)
	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		m, ok := members[s.MemberID]
		if !ok {
			var err error
			m, err = deps.MemberStore.GetByID(ctx, s.MemberID)
			if errors.Is(err, sql.ErrNoRows) {
				m = domainMember.Member{ID: s.MemberID, Name: "Unknown member"}
			} else if err != nil {
				return nil, err
			}
			members[s.MemberID] = m
		}
		views = append(views, SessionView{
			ID:            s.ID,
			TrainerID:     s.TrainerID,
			MemberID:      s.MemberID,
			MemberName:    m.Name,
			Date:          s.Date,
			Time:          s.Time,
			Notes:         s.Notes,
			Status:        session.DeriveStatus(s, m.RemainingSessions, now),
			Balance:       m.RemainingSessions,
			CanAttend:     s.CanAttend(m.RemainingSessions, now) == nil,
			CanReschedule: s.CanReschedule(m.RemainingSessions) == nil,
			CanCancel:     s.CanCancel() == nil,
		})
	}
	return views, nil
}
