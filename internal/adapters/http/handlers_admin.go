package web

import (
	"net/http"
	"strconv"
	"time"

	"studio/internal/application/orchestrators"
	domainOutbox "studio/internal/domain/outbox"
)

// handlePerfSnapshot handles GET /api/admin/perf?minutes=&top=
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "timing is disabled"})
		return
	}
	minutes, err := strconv.Atoi(r.URL.Query().Get("minutes"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	top, err := strconv.Atoi(r.URL.Query().Get("top"))
	if err != nil || top <= 0 || top > 50 {
		top = 10
	}
	since := time.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}

// outboxEntryJSON is the admin view of a queued confirmation. The payload stays server-side.
type outboxEntryJSON struct {
	ID              string     `json:"id"`
	ActionType      string     `json:"actionType"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"maxAttempts"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastAttemptedAt *time.Time `json:"lastAttemptedAt,omitempty"`
	Error           string     `json:"error,omitempty"`
}

func toOutboxJSON(e domainOutbox.Entry) outboxEntryJSON {
	out := outboxEntryJSON{
		ID: e.ID, ActionType: e.ActionType, Status: e.Status, Attempts: e.Attempts,
		MaxAttempts: e.MaxAttempts, CreatedAt: e.CreatedAt, Error: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		at := e.LastAttemptedAt
		out.LastAttemptedAt = &at
	}
	return out
}

func outboxDeps() orchestrators.OutboxRetryDeps {
	return orchestrators.OutboxRetryDeps{OutboxStore: stores.OutboxStore, EmailSender: emailSender, Now: timeNow}
}

// handleListOutbox handles GET /api/admin/outbox
func handleListOutbox(w http.ResponseWriter, r *http.Request) {
	if stores.OutboxStore == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "outbox is disabled"})
		return
	}
	pending, err := stores.OutboxStore.ListPending(r.Context(), 100)
	if err != nil {
		internalError(w, err)
		return
	}
	failed, err := stores.OutboxStore.ListFailed(r.Context(), 100)
	if err != nil {
		internalError(w, err)
		return
	}
	resp := map[string][]outboxEntryJSON{"pending": {}, "failed": {}}
	for _, e := range pending {
		resp["pending"] = append(resp["pending"], toOutboxJSON(e))
	}
	for _, e := range failed {
		resp["failed"] = append(resp["failed"], toOutboxJSON(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRetryOutboxEntry handles POST /api/admin/outbox/{id}/retry
func handleRetryOutboxEntry(w http.ResponseWriter, r *http.Request) {
	if stores.OutboxStore == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "outbox is disabled"})
		return
	}
	e, err := orchestrators.ExecuteRetryOutboxEntry(r.Context(), r.PathValue("id"), outboxDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutboxJSON(e))
}

// handleAbandonOutboxEntry handles POST /api/admin/outbox/{id}/abandon
func handleAbandonOutboxEntry(w http.ResponseWriter, r *http.Request) {
	if stores.OutboxStore == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "outbox is disabled"})
		return
	}
	e, err := orchestrators.ExecuteAbandonOutboxEntry(r.Context(), r.PathValue("id"), outboxDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutboxJSON(e))
}

// handleHealth handles GET /healthz
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
