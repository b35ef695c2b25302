package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"homebook/internal/service"
)

// NewUndoCommand creates the undo command.
func NewUndoCommand() *cobra.Command {
	return newHistoryCommand("undo", "Revert the most recent committed change group",
		func(ctx context.Context, s *service.UndoRedo) (bool, error) { return s.Undo(ctx) })
}

// NewRedoCommand creates the redo command.
func NewRedoCommand() *cobra.Command {
	return newHistoryCommand("redo", "Re-apply the most recently undone change group",
		func(ctx context.Context, s *service.UndoRedo) (bool, error) { return s.Redo(ctx) })
}

func newHistoryCommand(use, short string, op func(context.Context, *service.UndoRedo) (bool, error)) *cobra.Command {
	var (
		client   int
		user     string
		password string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:           use + " [SETTINGS=<path>] [DB_DRIVER_CONNECT=<path>]",
		Short:         short,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settingsPath, dbPath := ParseAssignments(args)
			log := newLogger(verbose)
			defer log.Sync()

			app, err := newApp(settingsPath, dbPath, log)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.login(cmd.Context(), client, user, password, false); err != nil {
				return err
			}

			done, err := op(cmd.Context(), service.NewUndoRedo(app.Runner, app.Session, log))
			if err != nil {
				return err
			}
			if !done {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to %s.\n", use)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s applied.\n", use)
			return nil
		},
	}

	cmd.Flags().IntVar(&client, "client", 0, "tenant number (default: remembered)")
	cmd.Flags().StringVar(&user, "user", "", "user id (default: remembered)")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	return cmd
}
