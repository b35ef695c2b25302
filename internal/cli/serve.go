package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"homebook/internal/replica"
)

// NewServeCommand creates the serve command hosting the replication
// endpoint.
func NewServeCommand() *cobra.Command {
	var (
		addr     string
		client   int
		user     string
		password string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "serve [SETTINGS=<path>] [DB_DRIVER_CONNECT=<path>]",
		Short: "Host the replication endpoint",
		Long: `Log in and host the HTTPS replication endpoint until GET /stop is
received or the process is interrupted.`,
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

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, cancel := context.WithCancel(parent)
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					cancel()
				case <-ctx.Done():
				}
			}()

			merger := replica.NewMerger(app.Runner, app.Session, log)
			srv := replica.NewServer(addr, app.Session, merger, log)
			fmt.Fprintf(cmd.OutOrStdout(), "Replication endpoint on https://%s (GET /stop quits).\n", addr)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9443", "listen address")
	cmd.Flags().IntVar(&client, "client", 0, "tenant number (default: remembered)")
	cmd.Flags().StringVar(&user, "user", "", "user id (default: remembered)")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	return cmd
}
