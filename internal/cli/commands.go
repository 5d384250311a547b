package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"studio/internal/adapters/storage"
	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	"studio/internal/domain/schedule"
)

func (a *App) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			v, err := storage.SchemaVersion(a.db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", a.cfg.Storage.DBPath, v)
			return nil
		},
	}
}

func (a *App) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a demo week of trainers, members and sessions",
		Long: `Load demo data into an empty database.

Nothing is written when any trainer already exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			n, err := orchestrators.ExecuteSeedStudio(cmd.Context(), orchestrators.SeedStudioDeps{
				TrainerStore: a.trainers,
				MemberStore:  a.members,
				SessionStore: a.sessions,
				Now:          a.now,
			})
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Database already has trainers; nothing seeded.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sessions.\n", n)
			return nil
		},
	}
}

func (a *App) slotsCmd() *cobra.Command {
	var trainerID, date, exclude string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show free, buffered and booked half-hour slots for a trainer",
		Example: `  studioctl slots --trainer t1 --date 2026-10-21
  studioctl slots --trainer t1 --exclude <session-id>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if trainerID == "" {
				return fmt.Errorf("--trainer is required")
			}
			if date == "" {
				date = schedule.Today(a.now())
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			res, err := projections.QuerySlotAvailability(cmd.Context(),
				projections.SlotAvailabilityQuery{TrainerID: trainerID, Date: date, ExcludeID: exclude},
				projections.SlotAvailabilityDeps{SessionStore: a.sessions})
			if err != nil {
				return err
			}
			printSlots(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&trainerID, "trainer", "", "Trainer ID (required)")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Session ID to ignore, as when rescheduling it")
	return cmd
}

func printSlots(w io.Writer, res projections.SlotAvailabilityResult) {
	fmt.Fprintf(w, "%s\n", formatHeader("SLOTS "+res.Date))
	for i, s := range res.Slots {
		sep := "  "
		if i%8 == 7 || i == len(res.Slots)-1 {
			sep = "\n"
		}
		fmt.Fprintf(w, "%s%s", formatSlot(s.Time, s.State), sep)
	}
	fmt.Fprintf(w, "%d free of %d\n", len(res.Free()), len(res.Slots))
}

func (a *App) weekCmd() *cobra.Command {
	var trainerID, week string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "List a trainer's sessions for one week with derived status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if trainerID == "" {
				return fmt.Errorf("--trainer is required")
			}
			if week == "" {
				week = schedule.Today(a.now())
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			res, err := projections.QuerySessionsForWeek(cmd.Context(),
				projections.SessionsForWeekQuery{TrainerID: trainerID, Week: week},
				projections.SessionsDeps{SessionStore: a.sessions, MemberStore: a.members, Now: a.now})
			if err != nil {
				return err
			}
			printWeek(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&trainerID, "trainer", "", "Trainer ID (required)")
	cmd.Flags().StringVar(&week, "week", "", "Any date in the week (YYYY-MM-DD, default: today)")
	return cmd
}

func printWeek(w io.Writer, res projections.SessionsResult) {
	fmt.Fprintf(w, "%s\n", formatHeader(fmt.Sprintf("WEEK %s - %s", res.From, res.To)))
	if len(res.Sessions) == 0 {
		fmt.Fprintln(w, formatMuted("No sessions booked this week."))
		return
	}
	day := ""
	for _, s := range res.Sessions {
		if s.Date != day {
			day = s.Date
			label := day
			if t, err := schedule.ParseDate(day); err == nil {
				label = t.Format("Mon 2006-01-02")
			}
			fmt.Fprintf(w, "\n  %s\n", formatHeader(label))
		}
		fmt.Fprintf(w, "    %s  %-24s %s %s\n", s.Time, s.MemberName, formatStatus(s.Status),
			formatMuted(fmt.Sprintf("(%d left)", s.Balance)))
	}
}

func (a *App) importMembersCmd() *cobra.Command {
	var dryRun, update bool

	cmd := &cobra.Command{
		Use:   "import-members <file.csv|->",
		Short: "Import members from a CSV file",
		Long: `Import members from a CSV file with a header row.

Columns: NAME and EMAIL are required; PHONE, SESSIONS and STATUS are optional.
SESSIONS sets the opening balance of new members only. Rows whose email
already exists are skipped unless --update is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			res, err := orchestrators.ExecuteImportMembers(cmd.Context(),
				orchestrators.ImportMembersInput{Reader: in, DryRun: dryRun, UpdateMode: update},
				orchestrators.ImportMembersDeps{MemberStore: a.members, GenerateID: uuid.NewString})
			if err != nil {
				return err
			}
			printImport(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and count without writing")
	cmd.Flags().BoolVar(&update, "update", false, "Update existing members matched by email")
	return cmd
}

func printImport(w io.Writer, res orchestrators.ImportMembersResult) {
	title := "IMPORT"
	if res.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(w, formatHeader(title))
	fmt.Fprintf(w, "rows %d, created %d, updated %d, skipped %d, errors %d\n",
		res.Total, res.Created, res.Updated, res.Skipped, len(res.Errors))
	if len(res.Unknown) > 0 {
		fmt.Fprintln(w, formatMuted("ignored columns: "+strings.Join(res.Unknown, ", ")))
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  row %d: %s\n", e.Row, e.Message)
	}
}
