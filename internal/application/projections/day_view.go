package projections

import (
	"context"

	"studio/internal/domain/schedule"
)

// DayRow is one half-hour row of the day view.
// A session row spans two rows so every booking draws at 60 minutes; the row
// beneath it is Suppressed. A row holding its own session is never suppressed,
// in which case the session above shrinks to a single row instead.
type DayRow struct {
	Time       string
	Session    *SessionView
	RowSpan    int
	Suppressed bool
}

// DayView is the read-only single-day grid for one trainer.
type DayView struct {
	Date   string
	Window schedule.Window
	Rows   []DayRow
}

// Sessions returns the sessions placed in the view, in time order.
func (v DayView) Sessions() []SessionView {
	var out []SessionView
	for _, r := range v.Rows {
		if r.Session != nil {
			out = append(out, *r.Session)
		}
	}
	return out
}

// QueryDayView lays a trainer's day out over the display window.
// PRE: Date is YYYY-MM-DD
// POST: Window covers 09:00-17:00 and every session plus 30 minutes; no session is dropped
func QueryDayView(ctx context.Context, query SessionsForDayQuery, deps SessionsDeps) (DayView, error) {
	res, err := QuerySessionsForDay(ctx, query, deps)
	if err != nil {
		return DayView{}, err
	}
	return BuildDayView(query.Date, res.Sessions), nil
}

// BuildDayView computes rows, spans and suppression for the given sessions.
// Sessions with a time that does not fall on a display row are placed at
// the row of their half hour.
func BuildDayView(date string, sessions []SessionView) DayView {
	times := make([]string, 0, len(sessions))
	for _, s := range sessions {
		times = append(times, s.Time)
	}
	w := schedule.DisplayWindow(times)

	at := make(map[string]*SessionView, len(sessions))
	for i := range sessions {
		c, err := schedule.ParseClock(sessions[i].Time)
		if err != nil {
			continue
		}
		key := (c - c%30).String()
		// one session per trainer and slot is enforced by the schema
		if _, taken := at[key]; taken {
			continue
		}
		at[key] = &sessions[i]
	}

	rows := make([]DayRow, 0, w.Len())
	for t := range w.Slots() {
		rows = append(rows, DayRow{Time: t, Session: at[t]})
	}
	for i := range rows {
		if rows[i].Session == nil {
			continue
		}
		rows[i].RowSpan = 1
		if i+1 < len(rows) && rows[i+1].Session == nil {
			rows[i].RowSpan = 2
			rows[i+1].Suppressed = true
		}
	}
	return DayView{Date: date, Window: w, Rows: rows}
}
