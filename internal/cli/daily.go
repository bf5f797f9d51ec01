package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DezMoon/habit-tracker/internal/core/services"
)

func NewWinCommand(rootOpts *RootOptions) *cobra.Command {
	var undone, sync bool

	cmd := &cobra.Command{
		Use:   "win",
		Short: "Record whether today was fully completed",
		Long: `Record today's daily win.

By default today is marked as a win. --undone removes today's win and --sync
derives the answer from the current habit statuses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if undone && sync {
				return errors.New("--undone and --sync are mutually exclusive")
			}

			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				allDone := !undone
				if sync {
					var err error
					if allDone, err = store.SyncDailyWin(cmd.Context()); err != nil {
						return err
					}
				} else if err := store.RecordDailyWin(cmd.Context(), allDone); err != nil {
					return err
				}

				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), store.Stats())
				}
				if allDone {
					fmt.Fprintf(cmd.OutOrStdout(), "today counted, streak %d\n", store.StreakCount())
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "today not counted, streak %d\n", store.StreakCount())
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&undone, "undone", false, "remove today's win")
	cmd.Flags().BoolVar(&sync, "sync", false, "derive the win from habit statuses")

	return cmd
}

func NewStreakCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Print the current streak of fully completed days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), map[string]int{"streak": store.StreakCount()})
				}
				fmt.Fprintln(cmd.OutOrStdout(), store.StreakCount())
				return nil
			})
		},
	}
}

func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show progress and streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				stats := store.Stats()
				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), stats)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "today:          %s\n", stats.Today)
				fmt.Fprintf(w, "completed:      %d/%d\n", stats.CompletedToday, stats.TotalHabits)
				fmt.Fprintf(w, "current streak: %d\n", stats.CurrentStreak)
				fmt.Fprintf(w, "longest streak: %d\n", stats.LongestStreak)
				return nil
			})
		},
	}
}

// NewResetCommand applies the day rollover; the store already does this on load.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset habit statuses if the calendar day changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				if err := store.ResetIfNewDay(cmd.Context()); err != nil {
					return err
				}
				day, _ := store.LastResetDate()
				fmt.Fprintf(cmd.OutOrStdout(), "last reset %s\n", day)
				return nil
			})
		},
	}
}
