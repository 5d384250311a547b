package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	emailAdapter "studio/internal/adapters/email"
	"studio/internal/domain/member"
	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
	"studio/internal/domain/trainer"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// markdown renders confirmation bodies. Raw HTML in notes is escaped.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// NotifyBookingInput carries the booking to confirm.
type NotifyBookingInput struct {
	Trainer  trainer.Trainer
	Member   member.Member
	Sessions []session.Session
	Skipped  int
}

// NotifyBookingDeps holds dependencies for NotifyBooking.
type NotifyBookingDeps struct {
	EmailSender emailAdapter.Sender
	StudioName  string
	From        string
	ReplyTo     string
	Outbox      OutboxStore      // optional: failed sends are queued here for retry
	Now         func() time.Time // stamps queued entries; nil means time.Now
}

// BookingMarkdown builds the confirmation text listing every booked session.
// PRE: len(in.Sessions) > 0
func BookingMarkdown(studio string, in NotifyBookingInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Kia ora %s,\n\n", in.Member.Name)
	if len(in.Sessions) == 1 {
		fmt.Fprintf(&b, "Your session with **%s** is booked:\n\n", in.Trainer.Name)
	} else {
		fmt.Fprintf(&b, "Your %d sessions with **%s** are booked:\n\n", len(in.Sessions), in.Trainer.Name)
	}
	for _, s := range in.Sessions {
		day := ""
		if d, err := schedule.ParseDate(s.Date); err == nil {
			day = d.Weekday().String() + " "
		}
		fmt.Fprintf(&b, "- %s%s at %s\n", day, s.Date, s.Time)
	}
	if in.Skipped > 0 {
		fmt.Fprintf(&b, "\n%d week(s) were already taken and were not booked.\n", in.Skipped)
	}
	if notes := strings.TrimSpace(in.Sessions[0].Notes); notes != "" {
		fmt.Fprintf(&b, "\n**Notes**\n\n%s\n", notes)
	}
	fmt.Fprintf(&b, "\nYou have %d session(s) remaining.\n\n%s\n", in.Member.RemainingSessions, studio)
	return b.String()
}

// ExecuteNotifyBooking emails a booking confirmation to the member, with a
// copy to the trainer when the trainer has an address.
// PRE: member has an email address; at least one session
// POST: One request per recipient handed to the sender, or queued in the
// outbox when the sender fails and an outbox is configured
func ExecuteNotifyBooking(ctx context.Context, input NotifyBookingInput, deps NotifyBookingDeps) error {
	if len(input.Sessions) == 0 {
		return errors.New("no sessions to confirm")
	}
	if deps.EmailSender == nil {
		return errors.New("email sender is not configured")
	}

	text := BookingMarkdown(deps.StudioName, input)
	var html bytes.Buffer
	if err := markdown.Convert([]byte(text), &html); err != nil {
		return fmt.Errorf("rendering confirmation: %w", err)
	}

	subject := fmt.Sprintf("Booked: %s %s with %s", input.Sessions[0].Date, input.Sessions[0].Time, input.Trainer.Name)
	if len(input.Sessions) > 1 {
		subject = fmt.Sprintf("Booked: %d weekly sessions with %s", len(input.Sessions), input.Trainer.Name)
	}

	reqs := []emailAdapter.SendRequest{{
		To:      []string{input.Member.Email},
		From:    deps.From,
		Subject: subject,
		HTML:    html.String(),
		Text:    text,
		ReplyTo: deps.ReplyTo,
		Tag:     "booking",
	}}
	if input.Trainer.Email != "" {
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{input.Trainer.Email},
			From:    deps.From,
			Subject: "[copy] " + subject + " (" + input.Member.Name + ")",
			HTML:    html.String(),
			Text:    text,
			ReplyTo: deps.ReplyTo,
			Tag:     "booking-copy",
		})
	}

	results, err := deps.EmailSender.SendBatch(ctx, reqs)
	if err != nil {
		if deps.Outbox == nil {
			return err
		}
		now := time.Now
		if deps.Now != nil {
			now = deps.Now
		}
		entry, qerr := queueBookingEmail(ctx, deps.Outbox, reqs, err, now())
		if qerr != nil {
			return errors.Join(err, fmt.Errorf("queue for retry: %w", qerr))
		}
		slog.Warn("email_event", "event", "booking_confirmation_queued", "member_id", input.Member.ID, "entry_id", entry.ID, "error", err)
		return nil
	}
	slog.Info("email_event", "event", "booking_confirmation_sent", "member_id", input.Member.ID, "sessions", len(input.Sessions), "messages", len(results))
	return nil
}
