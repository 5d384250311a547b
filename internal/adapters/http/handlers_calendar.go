package web

import (
	"bytes"
	"database/sql"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	"studio/internal/domain/schedule"
	"studio/internal/domain/trainer"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates static
var assets embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var funcMap = template.FuncMap{
	"renderMarkdown": func(md string) template.HTML {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(md))
		}
		return template.HTML(buf.String())
	},
	"add": func(a, b int) int { return a + b },
	"pct": func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) },
	"hourLabel": func(h int) string {
		return schedule.Clock(h * 60).String()
	},
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(funcMap).ParseFS(assets, "templates/layout.html", "templates/"+name))
}

var pages = map[string]*template.Template{
	"day.html":  parsePage("day.html"),
	"week.html": parsePage("week.html"),
}

// renderTemplate executes a page into a buffer so a template failure never sends a half page.
func renderTemplate(w http.ResponseWriter, name string, data any) {
	tpl, ok := pages[name]
	if !ok {
		internalError(w, errors.New("unknown template "+name))
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

type calendarPage struct {
	Studio  string
	Trainer trainer.Trainer
	State   projections.CalendarState
	Day     projections.DayView
	Week    projections.WeekView
}

// calendarState resolves the trainer and position shared by both calendar pages.
func calendarState(w http.ResponseWriter, r *http.Request, mode projections.CalendarMode, dateParam string) (calendarPage, bool) {
	trainerID := r.URL.Query().Get("trainer")
	date := r.URL.Query().Get(dateParam)
	if trainerID == "" {
		badRequest(w, "trainer is required")
		return calendarPage{}, false
	}
	if date != "" {
		if _, err := schedule.ParseDate(date); err != nil {
			writeError(w, err)
			return calendarPage{}, false
		}
	}
	t, err := stores.TrainerStore.GetByID(r.Context(), trainerID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, orchestrators.ErrTrainerNotFound)
		return calendarPage{}, false
	} else if err != nil {
		internalError(w, err)
		return calendarPage{}, false
	}
	return calendarPage{
		Studio:  studioName,
		Trainer: t,
		State:   projections.NewCalendarState(t.ID, date, mode, timeNow()),
	}, true
}

// handleCalendarDay handles GET /calendar/day?trainer=&date=
func handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	page, ok := calendarState(w, r, projections.ModeDay, "date")
	if !ok {
		return
	}
	view, err := projections.QueryDayView(r.Context(),
		projections.SessionsForDayQuery{TrainerID: page.Trainer.ID, Date: page.State.Date},
		projections.SessionsDeps{SessionStore: stores.SessionStore, MemberStore: stores.MemberStore, Now: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}
	page.Day = view
	renderTemplate(w, "day.html", page)
}

// handleCalendarWeek handles GET /calendar/week?trainer=&week=
func handleCalendarWeek(w http.ResponseWriter, r *http.Request) {
	page, ok := calendarState(w, r, projections.ModeWeek, "week")
	if !ok {
		return
	}
	view, err := projections.QueryWeekView(r.Context(),
		projections.SessionsForWeekQuery{TrainerID: page.Trainer.ID, Week: page.State.Date},
		projections.SessionsDeps{SessionStore: stores.SessionStore, MemberStore: stores.MemberStore, Now: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}
	page.Week = view
	renderTemplate(w, "week.html", page)
}

// handleCalendarHome handles GET / by opening today's day view for the first trainer.
func handleCalendarHome(w http.ResponseWriter, r *http.Request) {
	list, err := stores.TrainerStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	for _, t := range list {
		if t.Active {
			state := projections.NewCalendarState(t.ID, "", projections.ModeDay, timeNow())
			http.Redirect(w, r, state.Path(), http.StatusSeeOther)
			return
		}
	}
	http.Error(w, "No active trainers yet. Add one with POST /api/trainers.", http.StatusNotFound)
}
