package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"studio/internal/adapters/email"
	"studio/internal/adapters/http/middleware"
	"studio/internal/adapters/http/perf"
	attendanceStore "studio/internal/adapters/storage/attendance"
	memberStore "studio/internal/adapters/storage/member"
	outboxStore "studio/internal/adapters/storage/outbox"
	sessionStore "studio/internal/adapters/storage/session"
	trainerStore "studio/internal/adapters/storage/trainer"
	"studio/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	TrainerStore    trainerStore.Store
	MemberStore     memberStore.Store
	SessionStore    sessionStore.Store
	AttendanceStore attendanceStore.Store
	OutboxStore     outboxStore.Store // optional: nil disables confirmation retries
}

// Options configures NewMux.
type Options struct {
	CSRFKey        []byte // 32 bytes
	SecureCookies  bool
	TrustedOrigins []string
	RateLimit      int // requests per second per IP
	SlowRequestMs  int
	StudioName     string           // page title of the calendar views
	Now            func() time.Time // studio-local clock; nil means time.Now
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// studioName heads the calendar pages.
var studioName = "Studio"

// timeNow is a variable for testability.
var timeNow = time.Now

// bookingNotify is nil until SetEmailSender is called.
var bookingNotify *orchestrators.NotifyBookingDeps

// emailSender replays queued confirmations from the admin outbox endpoints.
var emailSender email.Sender

// SetEmailSender enables booking confirmations. A nil sender disables them.
// A non-nil outbox queues confirmations the sender fails to deliver.
func SetEmailSender(sender email.Sender, outbox orchestrators.OutboxStore, studioName, from, replyTo string) {
	emailSender = sender
	if sender == nil {
		bookingNotify = nil
		return
	}
	bookingNotify = &orchestrators.NotifyBookingDeps{
		EmailSender: sender,
		StudioName:  studioName,
		From:        from,
		ReplyTo:     replyTo,
		Outbox:      outbox,
		Now:         func() time.Time { return timeNow() },
	}
}

// NewMux wires HTTP handlers for the app. The rate limiter's sweeper stops when ctx ends.
func NewMux(ctx context.Context, s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	if opts.Now != nil {
		timeNow = opts.Now
	}
	if opts.StudioName != "" {
		studioName = opts.StudioName
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(ctx, opts.RateLimit, time.Second)
	slog.Debug("mux_ready", "rate_limit", opts.RateLimit, "secure_cookies", opts.SecureCookies)

	// Apply middleware: Timing -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequestMs),
	)
}
