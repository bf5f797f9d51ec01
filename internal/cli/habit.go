package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
	"github.com/DezMoon/habit-tracker/internal/core/services"
)

func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a pending habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := domain.ParseHabitCategory(category)
			if err != nil {
				return err
			}

			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				habit, err := store.AddHabit(cmd.Context(), args[0], cat)
				if err != nil {
					return err
				}
				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), habit)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) %s\n", habit.Name, habit.Category, habit.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(domain.CategoryOther), "habit category (Health|Study|Workout|Other)")

	return cmd
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List habits with today's status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				habits := store.Habits()
				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), habits)
				}
				return printHabits(cmd.OutOrStdout(), habits)
			})
		},
	}
}

func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a habit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				if !reportMissing(cmd, store, args[0]) {
					return nil
				}
				return store.UpdateHabitName(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a habit between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				if !reportMissing(cmd, store, args[0]) {
					return nil
				}
				if err := store.ToggleStatus(cmd.Context(), args[0]); err != nil {
					return err
				}
				habit, _ := store.Habit(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", habit.Name, habit.Status)
				return nil
			})
		},
	}
}

func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a habit",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(store *services.HabitStore) error {
				if !reportMissing(cmd, store, args[0]) {
					return nil
				}
				return store.DeleteHabit(cmd.Context(), args[0])
			})
		},
	}
}

// reportMissing tells the user about an unknown id; the store would ignore it anyway.
func reportMissing(cmd *cobra.Command, store *services.HabitStore, id string) bool {
	if _, ok := store.Habit(id); ok {
		return true
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "no habit with id %s\n", id)
	return false
}

func printHabits(w io.Writer, habits []domain.Habit) error {
	if len(habits) == 0 {
		_, err := fmt.Fprintln(w, "no habits yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tSTATUS")
	for _, h := range habits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.ID, h.Name, h.Category, h.Status)
	}
	return tw.Flush()
}
