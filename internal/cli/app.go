// Package cli implements studioctl, the operator command line for the studio database.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"studio/internal/adapters/storage"
	attendanceStore "studio/internal/adapters/storage/attendance"
	memberStore "studio/internal/adapters/storage/member"
	sessionStore "studio/internal/adapters/storage/session"
	trainerStore "studio/internal/adapters/storage/trainer"
	"studio/internal/config"
)

var (
	// Version is set at build time
	Version = "dev"
)

// App holds the CLI application state.
type App struct {
	cfg     *config.Config
	root    *cobra.Command
	now     func() time.Time
	noColor bool

	db         *sql.DB
	trainers   *trainerStore.SQLiteStore
	members    *memberStore.SQLiteStore
	sessions   *sessionStore.SQLiteStore
	attendance *attendanceStore.SQLiteStore
}

// NewApp creates the command tree. The database is opened lazily by the
// first command that needs it.
func NewApp(cfg *config.Config) *App {
	a := &App{cfg: cfg, now: cfg.Clock()}

	a.root = &cobra.Command{
		Use:           "studioctl",
		Short:         "Operate the studio session scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				DisableColor()
			}
		},
	}
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.migrateCmd())
	a.root.AddCommand(a.seedCmd())
	a.root.AddCommand(a.slotsCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.importMembersCmd())

	return a
}

// Execute runs the CLI with os.Args.
func (a *App) Execute() error {
	return a.root.Execute()
}

// run executes the CLI with explicit arguments and output, for tests.
func (a *App) run(out io.Writer, args ...string) error {
	a.root.SetOut(out)
	a.root.SetErr(out)
	a.root.SetArgs(args)
	return a.root.Execute()
}

// Close releases the database if it was opened.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// open connects and migrates the database once per process.
func (a *App) open(cmd *cobra.Command) error {
	if a.db != nil {
		return nil
	}
	db, err := storage.Open(a.cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	if err := storage.MigrateDB(cmd.Context(), db); err != nil {
		db.Close()
		return fmt.Errorf("migrating: %w", err)
	}
	a.db = db
	a.trainers = trainerStore.NewSQLiteStore(db)
	a.members = memberStore.NewSQLiteStore(db)
	a.sessions = sessionStore.NewSQLiteStore(db)
	a.attendance = attendanceStore.NewSQLiteStore(db)
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "studioctl %s (schema %d)\n", Version, storage.LatestSchemaVersion())
		},
	}
}
