package web

import (
	"io/fs"
	"net/http"
)

func registerRoutes(mux *http.ServeMux) {
	// Sessions
	mux.HandleFunc("GET /api/sessions", handleListSessions)
	mux.HandleFunc("POST /api/sessions", handleBookSession)
	mux.HandleFunc("PATCH /api/sessions/{id}", handleRescheduleSession)
	mux.HandleFunc("PATCH /api/sessions/{id}/attend", handleAttendSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", handleCancelSession)
	mux.HandleFunc("GET /api/slots", handleSlotAvailability)

	// Members
	mux.HandleFunc("GET /api/members", handleListMembers)
	mux.HandleFunc("POST /api/members", handleRegisterMember)
	mux.HandleFunc("GET /api/members/{id}", handleGetMember)
	mux.HandleFunc("POST /api/members/{id}/topup", handleTopUpMember)
	mux.HandleFunc("POST /api/members/{id}/archive", handleArchiveMember)
	mux.HandleFunc("POST /api/members/{id}/restore", handleRestoreMember)
	mux.HandleFunc("GET /api/members/{id}/attendance", handleMemberAttendance)

	// Trainers
	mux.HandleFunc("GET /api/trainers", handleListTrainers)
	mux.HandleFunc("POST /api/trainers", handleRegisterTrainer)

	// Calendar pages
	mux.HandleFunc("GET /calendar/day", handleCalendarDay)
	mux.HandleFunc("GET /calendar/week", handleCalendarWeek)
	mux.HandleFunc("GET /{$}", handleCalendarHome)
	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	// Admin
	mux.HandleFunc("GET /api/admin/perf", handlePerfSnapshot)
	mux.HandleFunc("GET /api/admin/outbox", handleListOutbox)
	mux.HandleFunc("POST /api/admin/outbox/{id}/retry", handleRetryOutboxEntry)
	mux.HandleFunc("POST /api/admin/outbox/{id}/abandon", handleAbandonOutboxEntry)
	mux.HandleFunc("GET /healthz", handleHealth)
}
