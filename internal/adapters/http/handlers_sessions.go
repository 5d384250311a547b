package web

import (
	"fmt"
	"net/http"
	"time"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
)

// sessionJSON is the API form of a stored session.
type sessionJSON struct {
	ID         string     `json:"id"`
	Trainer    string     `json:"trainer"`
	Member     string     `json:"member"`
	Date       string     `json:"date"`
	Time       string     `json:"time"`
	Notes      string     `json:"notes,omitempty"`
	AttendedAt *time.Time `json:"attendedAt,omitempty"`
}

func toSessionJSON(s session.Session) sessionJSON {
	out := sessionJSON{ID: s.ID, Trainer: s.TrainerID, Member: s.MemberID, Date: s.Date, Time: s.Time, Notes: s.Notes}
	if s.IsAttended() {
		at := s.AttendedAt
		out.AttendedAt = &at
	}
	return out
}

type listSessionsQuery struct {
	Trainer string `json:"trainer" validate:"required"`
	Date    string `json:"date" validate:"omitempty,date"`
	Week    string `json:"week" validate:"omitempty,date"`
}

// handleListSessions handles GET /api/sessions?trainer=&date= or ?trainer=&week=
func handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := listSessionsQuery{
		Trainer: r.URL.Query().Get("trainer"),
		Date:    r.URL.Query().Get("date"),
		Week:    r.URL.Query().Get("week"),
	}
	if !queryRequest(w, &q) {
		return
	}
	if (q.Date == "") == (q.Week == "") {
		badRequest(w, "exactly one of date or week is required")
		return
	}
	deps := projections.SessionsDeps{SessionStore: stores.SessionStore, MemberStore: stores.MemberStore, Now: timeNow}

	var (
		result projections.SessionsResult
		err    error
	)
	if q.Week != "" {
		result, err = projections.QuerySessionsForWeek(r.Context(), projections.SessionsForWeekQuery{TrainerID: q.Trainer, Week: q.Week}, deps)
	} else {
		result, err = projections.QuerySessionsForDay(r.Context(), projections.SessionsForDayQuery{TrainerID: q.Trainer, Date: q.Date}, deps)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type bookSessionRequest struct {
	Trainer     string `json:"trainer" validate:"required"`
	Member      string `json:"member" validate:"required"`
	Date        string `json:"date" validate:"required,date"`
	Time        string `json:"time" validate:"required,halfhour"`
	Notes       string `json:"notes" validate:"max=2000"`
	Repeat      bool   `json:"repeat"`
	RepeatCount int    `json:"repeatCount" validate:"required_if=Repeat true,gte=0,max=10"`
}

type bookSessionResponse struct {
	Message  string               `json:"message"`
	Session  *sessionJSON         `json:"session,omitempty"`
	Total    *int                 `json:"total,omitempty"`
	Added    *int                 `json:"added,omitempty"`
	Skipped  *int                 `json:"skipped,omitempty"`
	Sessions []sessionJSON        `json:"sessions,omitempty"`
	Skips    []schedule.Candidate `json:"skippedSlots,omitempty"`
}

// handleBookSession handles POST /api/sessions
func handleBookSession(w http.ResponseWriter, r *http.Request) {
	var req bookSessionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	count := 1
	if req.Repeat {
		count = req.RepeatCount
	}

	res, err := orchestrators.ExecuteBookSession(r.Context(), orchestrators.BookSessionInput{
		TrainerID:   req.Trainer,
		MemberID:    req.Member,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
		Repeat:      req.Repeat,
		RepeatCount: count,
	}, orchestrators.BookSessionDeps{
		TrainerStore: stores.TrainerStore,
		MemberStore:  stores.MemberStore,
		SessionStore: stores.SessionStore,
		Notify:       bookingNotify,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if !req.Repeat {
		s := toSessionJSON(res.Sessions[0])
		writeJSON(w, http.StatusCreated, bookSessionResponse{Message: "Session booked", Session: &s})
		return
	}

	sum := res.Summary
	resp := bookSessionResponse{
		Message: fmt.Sprintf("Booked %d of %d weekly sessions", sum.Added, sum.Total),
		Total:   &sum.Total,
		Added:   &sum.Added,
		Skipped: &sum.Skipped,
		Skips:   res.Skipped,
	}
	if sum.Skipped > 0 {
		resp.Message += fmt.Sprintf("; %d skipped due to conflicts", sum.Skipped)
	}
	for _, s := range res.Sessions {
		resp.Sessions = append(resp.Sessions, toSessionJSON(s))
	}
	status := http.StatusCreated
	if sum.Added == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

type rescheduleSessionRequest struct {
	Date  string  `json:"date" validate:"omitempty,date"`
	Time  string  `json:"time" validate:"omitempty,halfhour"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

// handleRescheduleSession handles PATCH /api/sessions/{id}
func handleRescheduleSession(w http.ResponseWriter, r *http.Request) {
	var req rescheduleSessionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Date == "" && req.Time == "" && req.Notes == nil {
		badRequest(w, "nothing to change")
		return
	}
	s, err := orchestrators.ExecuteRescheduleSession(r.Context(), orchestrators.RescheduleSessionInput{
		SessionID: r.PathValue("id"),
		Date:      req.Date,
		Time:      req.Time,
		Notes:     req.Notes,
	}, orchestrators.RescheduleSessionDeps{SessionStore: stores.SessionStore, MemberStore: stores.MemberStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(s))
}

// handleAttendSession handles PATCH /api/sessions/{id}/attend
func handleAttendSession(w http.ResponseWriter, r *http.Request) {
	res, err := orchestrators.ExecuteAttendSession(r.Context(),
		orchestrators.AttendSessionInput{SessionID: r.PathValue("id")},
		orchestrators.AttendSessionDeps{SessionStore: stores.SessionStore, MemberStore: stores.MemberStore, Now: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":           toSessionJSON(res.Session),
		"remainingSessions": res.RemainingBalance,
	})
}

// handleCancelSession handles DELETE /api/sessions/{id}
func handleCancelSession(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteCancelSession(r.Context(),
		orchestrators.CancelSessionInput{SessionID: r.PathValue("id")},
		orchestrators.CancelSessionDeps{SessionStore: stores.SessionStore})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type slotsQuery struct {
	Trainer string `json:"trainer" validate:"required"`
	Date    string `json:"date" validate:"required,date"`
	Exclude string `json:"exclude"`
}

// handleSlotAvailability handles GET /api/slots?trainer=&date=[&exclude=]
func handleSlotAvailability(w http.ResponseWriter, r *http.Request) {
	q := slotsQuery{
		Trainer: r.URL.Query().Get("trainer"),
		Date:    r.URL.Query().Get("date"),
		Exclude: r.URL.Query().Get("exclude"),
	}
	if !queryRequest(w, &q) {
		return
	}
	res, err := projections.QuerySlotAvailability(r.Context(),
		projections.SlotAvailabilityQuery{TrainerID: q.Trainer, Date: q.Date, ExcludeID: q.Exclude},
		projections.SlotAvailabilityDeps{SessionStore: stores.SessionStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
