package cli

import (
	"github.com/fatih/color"

	"studio/internal/domain/schedule"
	"studio/internal/domain/session"
)

var (
	colorHeader = color.New(color.Bold)

	// Slot states
	colorFree     = color.New(color.FgGreen)
	colorBuffered = color.New(color.FgYellow, color.Faint)
	colorBooked   = color.New(color.FgRed, color.Bold)

	// Session statuses
	colorCompleted = color.New(color.FgGreen)
	colorAbsent    = color.New(color.FgRed)
	colorNoBalance = color.New(color.FgMagenta)

	colorMuted = color.New(color.FgWhite, color.Faint)
)

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// formatSlot colors a slot label by its state.
func formatSlot(label, state string) string {
	switch state {
	case schedule.SlotBooked:
		return colorBooked.Sprint(label)
	case schedule.SlotBuffered:
		return colorBuffered.Sprint(label)
	default:
		return colorFree.Sprint(label)
	}
}

// formatStatus colors a derived session status.
func formatStatus(s session.Status) string {
	switch s {
	case session.StatusCompleted:
		return colorCompleted.Sprint(s)
	case session.StatusAbsent:
		return colorAbsent.Sprint(s)
	case session.StatusNoRemainingSessions:
		return colorNoBalance.Sprint(s)
	default:
		return string(s)
	}
}
