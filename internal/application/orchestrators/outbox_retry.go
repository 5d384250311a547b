package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	emailAdapter "studio/internal/adapters/email"
	domainOutbox "studio/internal/domain/outbox"
)

// ErrOutboxEntryNotFound is returned for an unknown outbox ID.
var ErrOutboxEntryNotFound = fmt.Errorf("outbox entry %w", ErrNotFound)

// OutboxStore is the persistence the confirmation outbox needs.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domainOutbox.Entry, error)
	Save(ctx context.Context, e domainOutbox.Entry) error
	ListPending(ctx context.Context, limit int) ([]domainOutbox.Entry, error)
}

type bookingEmailPayload struct {
	Requests []emailAdapter.SendRequest `json:"requests"`
}

// queueBookingEmail stores confirmation requests whose first delivery failed.
// POST: One pending entry holding every request
func queueBookingEmail(ctx context.Context, store OutboxStore, reqs []emailAdapter.SendRequest, cause error, now time.Time) (domainOutbox.Entry, error) {
	payload, err := json.Marshal(bookingEmailPayload{Requests: reqs})
	if err != nil {
		return domainOutbox.Entry{}, err
	}
	entry := domainOutbox.Entry{
		ID:           uuid.New().String(),
		ActionType:   domainOutbox.ActionTypeBookingEmail,
		Payload:      string(payload),
		Status:       domainOutbox.StatusPending,
		CreatedAt:    now,
		ErrorMessage: cause.Error(),
	}
	if err := entry.Validate(); err != nil {
		return domainOutbox.Entry{}, err
	}
	if err := store.Save(ctx, entry); err != nil {
		return domainOutbox.Entry{}, err
	}
	return entry, nil
}

// OutboxRetryDeps holds dependencies for retrying queued confirmations.
type OutboxRetryDeps struct {
	OutboxStore OutboxStore
	EmailSender emailAdapter.Sender
	Now         func() time.Time
	BaseDelay   time.Duration // zero means one minute
	MaxDelay    time.Duration // zero means one hour
	BatchSize   int           // zero means 50
}

func (d OutboxRetryDeps) withDefaults() OutboxRetryDeps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.BaseDelay <= 0 {
		d.BaseDelay = time.Minute
	}
	if d.MaxDelay <= 0 {
		d.MaxDelay = time.Hour
	}
	if d.BatchSize <= 0 {
		d.BatchSize = 50
	}
	return d
}

// OutboxRetryResult counts one retry pass.
type OutboxRetryResult struct {
	Processed int
	Succeeded int
	Failed    int
	Deferred  int // still inside their backoff window
}

// ExecuteOutboxRetry attempts every pending entry whose backoff has elapsed.
// PRE: deps.OutboxStore and deps.EmailSender are set
// POST: Each attempted entry is saved with its new status
func ExecuteOutboxRetry(ctx context.Context, deps OutboxRetryDeps) (OutboxRetryResult, error) {
	deps = deps.withDefaults()
	entries, err := deps.OutboxStore.ListPending(ctx, deps.BatchSize)
	if err != nil {
		return OutboxRetryResult{}, fmt.Errorf("list pending outbox entries: %w", err)
	}

	var res OutboxRetryResult
	for _, entry := range entries {
		now := deps.Now()
		if !entry.Due(now, deps.BaseDelay, deps.MaxDelay) {
			res.Deferred++
			continue
		}
		res.Processed++
		entry, err = attemptEntry(ctx, entry, deps, now)
		if err != nil {
			return res, err
		}
		if entry.Status == domainOutbox.StatusDone {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}

	if res.Processed > 0 {
		slog.Info("outbox_retry_complete", "processed", res.Processed, "succeeded", res.Succeeded, "failed", res.Failed, "deferred", res.Deferred)
	}
	return res, nil
}

// ExecuteRetryOutboxEntry attempts one entry immediately, ignoring its backoff.
// PRE: id is non-empty
// POST: Entry saved with its new status; terminal entries are rejected
func ExecuteRetryOutboxEntry(ctx context.Context, id string, deps OutboxRetryDeps) (domainOutbox.Entry, error) {
	deps = deps.withDefaults()
	entry, err := deps.OutboxStore.GetByID(ctx, id)
	if err != nil {
		return domainOutbox.Entry{}, lookup(err, ErrOutboxEntryNotFound)
	}
	if entry.IsTerminal() {
		return entry, domainOutbox.ErrTerminal
	}
	return attemptEntry(ctx, entry, deps, deps.Now())
}

// ExecuteAbandonOutboxEntry stops retries for an entry.
// PRE: id is non-empty
// POST: Entry status is abandoned unless it was already delivered
func ExecuteAbandonOutboxEntry(ctx context.Context, id string, deps OutboxRetryDeps) (domainOutbox.Entry, error) {
	entry, err := deps.OutboxStore.GetByID(ctx, id)
	if err != nil {
		return domainOutbox.Entry{}, lookup(err, ErrOutboxEntryNotFound)
	}
	if entry.Status == domainOutbox.StatusDone {
		return entry, domainOutbox.ErrTerminal
	}
	entry.MarkAbandoned()
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return entry, err
	}
	slog.Info("outbox_entry_abandoned", "entry_id", entry.ID, "attempts", entry.Attempts)
	return entry, nil
}

// attemptEntry delivers one entry and persists the outcome. Only a save
// failure is returned as an error; delivery failures are recorded on the entry.
func attemptEntry(ctx context.Context, entry domainOutbox.Entry, deps OutboxRetryDeps, now time.Time) (domainOutbox.Entry, error) {
	entry.MarkAttempt(now)
	externalID, err := deliver(ctx, deps.EmailSender, entry)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err)
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "attempt", entry.Attempts, "external_id", externalID)
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return entry, fmt.Errorf("save outbox entry %s: %w", entry.ID, err)
	}
	return entry, nil
}

func deliver(ctx context.Context, sender emailAdapter.Sender, entry domainOutbox.Entry) (string, error) {
	if entry.ActionType != domainOutbox.ActionTypeBookingEmail {
		return "", fmt.Errorf("unknown action type: %s", entry.ActionType)
	}
	if sender == nil {
		return "", errors.New("email sender is not configured")
	}
	var payload bookingEmailPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return "", fmt.Errorf("decode booking email payload: %w", err)
	}
	results, err := sender.SendBatch(ctx, payload.Requests)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.MessageID)
	}
	return strings.Join(ids, ","), nil
}

// StartOutboxRetryScheduler retries queued confirmations every interval until ctx ends.
// PRE: interval > 0
func StartOutboxRetryScheduler(ctx context.Context, deps OutboxRetryDeps, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := ExecuteOutboxRetry(ctx, deps); err != nil {
					slog.Error("outbox_retry_scheduler_error", "error", err)
				}
			}
		}
	}()
}
