package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	"studio/internal/domain/member"
	"studio/internal/domain/outbox"
	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
	"studio/internal/domain/trainer"

	"github.com/go-playground/validator/v10"
)

// errorBody is the JSON shape of every non-2xx API response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// strictDecode decodes a single JSON object from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// preconditions are business-rule refusals on a well-formed request.
var preconditions = []error{
	session.ErrNoRemainingSessions,
	session.ErrAlreadyCompleted,
	session.ErrFutureAttendance,
	member.ErrArchivedNoBooking,
	member.ErrAlreadyArchived,
	member.ErrNotArchived,
	member.ErrNegativeBalance,
	trainer.ErrInactive,
	outbox.ErrTerminal,
}

// writeError maps domain and orchestrator errors to HTTP status codes:
// validation 400, not found 404, conflict 409, precondition 422, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: validationDetails(ve)})
	case errors.Is(err, orchestrators.ErrInvalidInput), errors.Is(err, schedule.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrNotFound), errors.Is(err, projections.ErrMemberNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, session.ErrSlotUnavailable), errors.Is(err, orchestrators.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		for _, p := range preconditions {
			if errors.Is(err, p) {
				writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
				return
			}
		}
		internalError(w, err)
	}
}
