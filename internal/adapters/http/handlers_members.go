package web

import (
	"database/sql"
	"errors"
	"net/http"

	"studio/internal/application/listutil"
	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	"studio/internal/domain/member"
)

// memberJSON is the API form of a member.
type memberJSON struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
	RemainingSessions int    `json:"remainingSessions"`
	Status            string `json:"status"`
}

func toMemberJSON(m member.Member) memberJSON {
	return memberJSON{ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone, RemainingSessions: m.RemainingSessions, Status: m.Status}
}

// handleListMembers handles GET /api/members?q=&status=&sort=&dir=&page=&per_page=
func handleListMembers(w http.ResponseWriter, r *http.Request) {
	lp := listutil.ParseListParams(r.URL.Query(), projections.MemberListSortColumns, []string{"status"})
	res, err := projections.QueryMemberList(r.Context(),
		projections.MemberListQuery{ListParams: lp},
		projections.MemberListDeps{MemberStore: stores.MemberStore})
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]memberJSON, 0, len(res.Members))
	for _, m := range res.Members {
		out = append(out, toMemberJSON(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": out, "page": res.Page})
}

type registerMemberRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"max=30"`
	RemainingSessions int    `json:"remainingSessions" validate:"gte=0,lte=200"`
}

// handleRegisterMember handles POST /api/members
func handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerMemberRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	m, err := orchestrators.ExecuteRegisterMember(r.Context(), orchestrators.RegisterMemberInput{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		RemainingSessions: req.RemainingSessions,
	}, orchestrators.RegisterMemberDeps{MemberStore: stores.MemberStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberJSON(m))
}

// handleGetMember handles GET /api/members/{id}
func handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := stores.MemberStore.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, orchestrators.ErrMemberNotFound)
		return
	} else if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

type topUpRequest struct {
	Sessions int `json:"sessions" validate:"required,min=1,max=200"`
}

// handleTopUpMember handles POST /api/members/{id}/topup
func handleTopUpMember(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	m, err := orchestrators.ExecuteTopUpMember(r.Context(),
		orchestrators.TopUpMemberInput{MemberID: r.PathValue("id"), Sessions: req.Sessions},
		orchestrators.TopUpMemberDeps{MemberStore: stores.MemberStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

// handleArchiveMember handles POST /api/members/{id}/archive
func handleArchiveMember(w http.ResponseWriter, r *http.Request) {
	m, err := orchestrators.ExecuteArchiveMember(r.Context(),
		orchestrators.ArchiveMemberInput{MemberID: r.PathValue("id")},
		orchestrators.ArchiveMemberDeps{MemberStore: stores.MemberStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

// handleRestoreMember handles POST /api/members/{id}/restore
func handleRestoreMember(w http.ResponseWriter, r *http.Request) {
	m, err := orchestrators.ExecuteRestoreMember(r.Context(),
		orchestrators.ArchiveMemberInput{MemberID: r.PathValue("id")},
		orchestrators.ArchiveMemberDeps{MemberStore: stores.MemberStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

// handleMemberAttendance handles GET /api/members/{id}/attendance?page=&per_page=
func handleMemberAttendance(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryMemberAttendance(r.Context(),
		projections.MemberAttendanceQuery{MemberID: r.PathValue("id"), PageParams: listutil.ParsePageParams(r.URL.Query())},
		projections.MemberAttendanceDeps{MemberStore: stores.MemberStore, AttendanceStore: stores.AttendanceStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
