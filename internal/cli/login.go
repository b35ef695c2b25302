package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		client   int
		user     string
		password string
		persist  bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "login [SETTINGS=<path>] [DB_DRIVER_CONNECT=<path>]",
		Short: "Log into a tenant",
		Long: `Log into a tenant. Client and user default to the values remembered
in the settings document from the last login.`,
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

			if err := app.login(cmd.Context(), client, user, password, persist); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s on client %d.\n",
				app.Session.User(), app.Session.Tenant())
			return nil
		},
	}

	cmd.Flags().IntVar(&client, "client", 0, "tenant number (default: remembered)")
	cmd.Flags().StringVar(&user, "user", "", "user id (default: remembered)")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVar(&persist, "persist", false, "enable password-less login for this user")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	return cmd
}
