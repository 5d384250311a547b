package projections

import (
	"context"
	"sort"
	"time"

	"studio/internal/domain/schedule"
)

// Half positions a session inside its hour cell.
const (
	HalfTop    = "top"
	HalfBottom = "bottom"
)

// WeekDay is one column header of the week view.
type WeekDay struct {
	Date    string
	Name    string
	IsToday bool
}

// Placement positions one session on the week grid.
// Row and Column are 1-based grid lines: Column 1 is Monday, Row 1 is Hours[0].
// Sessions sharing a (Column, Row) cell split its width into Lanes equal lanes.
type Placement struct {
	Session SessionView
	Row     int
	Column  int
	Half    string
	Lane    int
	Lanes   int
}

// WidthPct is the share of the cell width the placement occupies.
func (p Placement) WidthPct() float64 {
	if p.Lanes < 1 {
		return 100
	}
	return 100 / float64(p.Lanes)
}

// LeftPct is the offset of the placement from the cell's left edge.
func (p Placement) LeftPct() float64 {
	return float64(p.Lane) * p.WidthPct()
}

// WeekView is the seven-day grid for one trainer.
type WeekView struct {
	WeekStart  string
	Days       [7]WeekDay
	Hours      []int
	Placements []Placement
}

// Cell returns the placements in one grid cell, ordered by lane.
func (v WeekView) Cell(column, row int) []Placement {
	var out []Placement
	for _, p := range v.Placements {
		if p.Column == column && p.Row == row {
			out = append(out, p)
		}
	}
	return out
}

// QueryWeekView lays a trainer's week out as an hour-by-day grid.
// PRE: Week is any YYYY-MM-DD date inside the wanted week
// POST: Every session in the week has exactly one Placement
func QueryWeekView(ctx context.Context, query SessionsForWeekQuery, deps SessionsDeps) (WeekView, error) {
	res, err := QuerySessionsForWeek(ctx, query, deps)
	if err != nil {
		return WeekView{}, err
	}
	return BuildWeekView(res.From, res.Sessions, deps.Now()), nil
}

// BuildWeekView places sessions by day column and hour row.
// The hour range follows the day view's display window over the whole week.
// PRE: weekStart is a Monday in YYYY-MM-DD; sessions fall within its week
func BuildWeekView(weekStart string, sessions []SessionView, now time.Time) WeekView {
	v := WeekView{WeekStart: weekStart}
	monday, err := schedule.ParseDate(weekStart)
	if err != nil {
		return v
	}
	today := schedule.Today(now)
	column := make(map[string]int, 7)
	for i := range v.Days {
		d := monday.AddDate(0, 0, i)
		date := d.Format(schedule.DateLayout)
		v.Days[i] = WeekDay{Date: date, Name: d.Weekday().String()[:3], IsToday: date == today}
		column[date] = i + 1
	}

	times := make([]string, 0, len(sessions))
	for _, s := range sessions {
		times = append(times, s.Time)
	}
	w := schedule.DisplayWindow(times)
	first, last := w.Start.Hour(), w.End.Hour()
	for h := first; h <= last; h++ {
		v.Hours = append(v.Hours, h)
	}

	for _, s := range sessions {
		c, err := schedule.ParseClock(s.Time)
		col, ok := column[s.Date]
		if err != nil || !ok {
			continue
		}
		half := HalfTop
		if int(c)%60 >= 30 {
			half = HalfBottom
		}
		v.Placements = append(v.Placements, Placement{
			Session: s,
			Row:     c.Hour() - first + 1,
			Column:  col,
			Half:    half,
		})
	}
	assignLanes(v.Placements)
	return v
}

// assignLanes numbers placements within each cell by start time.
func assignLanes(ps []Placement) {
	type cell struct{ col, row int }
	groups := make(map[cell][]int)
	for i, p := range ps {
		k := cell{p.Column, p.Row}
		groups[k] = append(groups[k], i)
	}
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return ps[idx[a]].Session.Time < ps[idx[b]].Session.Time
		})
		for lane, i := range idx {
			ps[i].Lane = lane
			ps[i].Lanes = len(idx)
		}
	}
}
