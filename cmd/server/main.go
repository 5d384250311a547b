package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailPkg "studio/internal/adapters/email"
	web "studio/internal/adapters/http"
	"studio/internal/adapters/http/perf"
	"studio/internal/adapters/storage"
	attendanceStore "studio/internal/adapters/storage/attendance"
	memberStore "studio/internal/adapters/storage/member"
	outboxStore "studio/internal/adapters/storage/outbox"
	sessionStore "studio/internal/adapters/storage/session"
	trainerStore "studio/internal/adapters/storage/trainer"
	"studio/internal/application/orchestrators"
	"studio/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.IsProduction() {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.MigrateDB(ctx, db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.Storage.SlowQueryMs)

	stores := &web.Stores{
		TrainerStore:    trainerStore.NewSQLiteStore(timedDB),
		MemberStore:     memberStore.NewSQLiteStore(timedDB),
		SessionStore:    sessionStore.NewSQLiteStore(timedDB),
		AttendanceStore: attendanceStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStore.NewSQLiteStore(timedDB),
	}
	clock := cfg.Clock()

	// Seed a demo week for development only; a no-op once any trainer exists
	if !cfg.IsProduction() {
		n, err := orchestrators.ExecuteSeedStudio(ctx, orchestrators.SeedStudioDeps{
			TrainerStore: stores.TrainerStore,
			MemberStore:  stores.MemberStore,
			SessionStore: stores.SessionStore,
			Now:          clock,
		})
		if err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		if n > 0 {
			log.Printf("Seeded %d demo sessions (dev mode)", n)
		}
	}

	if cfg.Email.ResendKey != "" {
		sender := emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
		web.SetEmailSender(sender, stores.OutboxStore, cfg.Studio.Name, cfg.Email.From, cfg.Email.ReplyTo)

		// Retry confirmations the provider rejected; stops with ctx
		orchestrators.StartOutboxRetryScheduler(ctx, orchestrators.OutboxRetryDeps{
			OutboxStore: stores.OutboxStore,
			EmailSender: sender,
			Now:         clock,
		}, time.Duration(cfg.Email.RetryMinutes)*time.Minute)
		log.Printf("Email sender configured (Resend, retry every %dm)", cfg.Email.RetryMinutes)
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), nil, cfg.Studio.Name, cfg.Email.From, cfg.Email.ReplyTo)
		if cfg.IsProduction() {
			log.Println("WARNING: STUDIO_RESEND_KEY is not set, booking confirmations are DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set STUDIO_RESEND_KEY for real delivery)")
		}
	}

	csrfKey, generated, err := cfg.CSRFKey()
	if err != nil {
		log.Fatalf("invalid CSRF key: %v", err)
	}
	if generated {
		log.Println("Using a random CSRF key; set STUDIO_CSRF_KEY to keep form tokens across restarts")
	}

	handler := web.NewMux(ctx, stores, collector, web.Options{
		CSRFKey:        csrfKey,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.Server.TrustedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		SlowRequestMs:  cfg.Server.SlowRequestMs,
		StudioName:     cfg.Studio.Name,
		Now:            clock,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Studio %s starting on %s (env=%s, schema=%d, tz=%s)", version, cfg.Server.Addr, cfg.Server.Env, storage.LatestSchemaVersion(), cfg.Studio.Timezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
