package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DezMoon/habit-tracker/internal/adapters/idgen"
	"github.com/DezMoon/habit-tracker/internal/bootstrap"
	"github.com/DezMoon/habit-tracker/internal/config"
	"github.com/DezMoon/habit-tracker/internal/core/services"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Backend    string
	DB         string
	Format     string
	Verbose    bool

	cfg *config.Config
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "habitctl",
		Short: "Track daily habits and streaks from the terminal",
		Long: `habitctl manages the same habit store the API server uses.

Storage defaults come from the environment and CONFIG_FILE; --backend and --db override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			path := opts.ConfigFile
			if path == "" {
				path = os.Getenv("CONFIG_FILE")
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("backend") {
				cfg.Storage.Backend = opts.Backend
			}
			if cmd.Flags().Changed("db") {
				cfg.Storage.SQLitePath = opts.DB
			}
			// the CLI never serves HTTP, so Redis is only dialed when storage needs it
			cfg.Server.RateLimit = 0

			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML config file (defaults to $CONFIG_FILE)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", config.BackendSQLite, "storage backend (memory|sqlite|postgres|redis)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "SQLite database path")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log storage activity to stderr")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewToggleCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewWinCommand(opts))
	cmd.AddCommand(NewStreakCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// withStore opens the configured storage, loads the habit store and closes storage when fn returns.
func withStore(ctx context.Context, opts *RootOptions, errOut io.Writer, fn func(*services.HabitStore) error) error {
	log := zap.NewNop()
	if opts.Verbose {
		log = newStderrLogger(errOut)
	}

	storage, err := bootstrap.OpenStorage(ctx, opts.cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	store, err := services.NewHabitStore(ctx, storage.KV, idgen.NewUUIDGenerator(), services.WithLogger(log))
	if err != nil {
		return err
	}

	return fn(store)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
