package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"studio/internal/domain/outbox"
)

// TestExecuteNotifyBooking_QueuesOnSendFailure keeps the confirmation for retry.
func TestExecuteNotifyBooking_QueuesOnSendFailure(t *testing.T) {
	store := newFakeOutboxStore()
	deps := NotifyBookingDeps{EmailSender: newFlakySender(1), StudioName: "Studio", Outbox: store, Now: fixedNow}

	if err := ExecuteNotifyBooking(context.Background(), notifyInput(), deps); err != nil {
		t.Fatalf("queued send should not fail: %v", err)
	}
	if len(store.byID) != 1 {
		t.Fatalf("outbox holds %d entries, want 1", len(store.byID))
	}
	for _, e := range store.byID {
		if e.Status != outbox.StatusPending || e.ActionType != outbox.ActionTypeBookingEmail {
			t.Errorf("entry = %+v", e)
		}
		if !strings.Contains(e.Payload, "sam@example.com") || e.ErrorMessage != "provider unavailable" {
			t.Errorf("payload = %s, error = %q", e.Payload, e.ErrorMessage)
		}
	}
}

// TestExecuteNotifyBooking_NoOutboxReturnsError surfaces the failure when nothing can queue it.
func TestExecuteNotifyBooking_NoOutboxReturnsError(t *testing.T) {
	err := ExecuteNotifyBooking(context.Background(), notifyInput(), NotifyBookingDeps{EmailSender: newFlakySender(1)})
	if err == nil {
		t.Fatal("expected the send error")
	}
}

func queuedEntry(t *testing.T, store *fakeOutboxStore) outbox.Entry {
	t.Helper()
	deps := NotifyBookingDeps{EmailSender: newFlakySender(1), Outbox: store, Now: fixedNow}
	if err := ExecuteNotifyBooking(context.Background(), notifyInput(), deps); err != nil {
		t.Fatal(err)
	}
	for _, e := range store.byID {
		return e
	}
	t.Fatal("nothing queued")
	return outbox.Entry{}
}

// TestExecuteOutboxRetry_BacksOffThenDelivers walks an entry through a failed retry, a deferred pass and delivery.
func TestExecuteOutboxRetry_BacksOffThenDelivers(t *testing.T) {
	store := newFakeOutboxStore()
	entry := queuedEntry(t, store)

	clock := testNow
	sender := newFlakySender(1)
	deps := OutboxRetryDeps{OutboxStore: store, EmailSender: sender, Now: func() time.Time { return clock }}

	res, err := ExecuteOutboxRetry(context.Background(), deps)
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 1 || res.Failed != 1 {
		t.Fatalf("first pass = %+v", res)
	}
	if got := store.byID[entry.ID]; got.Attempts != 1 || got.Status != outbox.StatusRetrying {
		t.Fatalf("after failure = %+v", got)
	}

	// 2^1 minutes of backoff
	clock = testNow.Add(time.Minute)
	if res, _ := ExecuteOutboxRetry(context.Background(), deps); res.Deferred != 1 || res.Processed != 0 {
		t.Errorf("inside backoff = %+v", res)
	}

	clock = testNow.Add(3 * time.Minute)
	res, err = ExecuteOutboxRetry(context.Background(), deps)
	if err != nil {
		t.Fatal(err)
	}
	if res.Succeeded != 1 {
		t.Fatalf("third pass = %+v", res)
	}
	got := store.byID[entry.ID]
	if got.Status != outbox.StatusDone || got.ExternalID == "" || got.ErrorMessage != "" {
		t.Errorf("delivered entry = %+v", got)
	}
	if len(sender.Sent()) != 1 || sender.Sent()[0].To[0] != "sam@example.com" {
		t.Errorf("sent = %+v", sender.Sent())
	}
	if res, _ := ExecuteOutboxRetry(context.Background(), deps); res.Processed != 0 {
		t.Errorf("done entries must not be retried: %+v", res)
	}
}

// TestExecuteOutboxRetry_GivesUpAfterMaxAttempts marks the entry failed and terminal.
func TestExecuteOutboxRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	store := newFakeOutboxStore()
	entry := queuedEntry(t, store)
	entry.MaxAttempts = 2
	store.byID[entry.ID] = entry

	deps := OutboxRetryDeps{OutboxStore: store, EmailSender: newFlakySender(10), Now: fixedNow}
	for i := 0; i < 2; i++ {
		if _, err := ExecuteRetryOutboxEntry(context.Background(), entry.ID, deps); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	got := store.byID[entry.ID]
	if got.Status != outbox.StatusFailed || !got.IsTerminal() {
		t.Fatalf("entry = %+v", got)
	}
	if _, err := ExecuteRetryOutboxEntry(context.Background(), entry.ID, deps); !errors.Is(err, outbox.ErrTerminal) {
		t.Errorf("retry terminal = %v, want ErrTerminal", err)
	}
}

// TestExecuteAbandonOutboxEntry stops retries and reports unknown IDs.
func TestExecuteAbandonOutboxEntry(t *testing.T) {
	store := newFakeOutboxStore()
	entry := queuedEntry(t, store)
	deps := OutboxRetryDeps{OutboxStore: store}

	got, err := ExecuteAbandonOutboxEntry(context.Background(), entry.ID, deps)
	if err != nil || got.Status != outbox.StatusAbandoned {
		t.Fatalf("abandon = %+v, %v", got, err)
	}
	if res, _ := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{OutboxStore: store, EmailSender: newFlakySender(0)}); res.Processed != 0 {
		t.Errorf("abandoned entry was retried: %+v", res)
	}
	if _, err := ExecuteAbandonOutboxEntry(context.Background(), "missing", deps); !errors.Is(err, ErrOutboxEntryNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("missing = %v", err)
	}
}
