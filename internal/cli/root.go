// Package cli implements the homebook command surface.
//
// Two positional arguments are recognised anywhere on the command
// line: SETTINGS=<path> and DB_DRIVER_CONNECT=<path>. Anything else
// positional is ignored. Exit codes: 0 clean quit, 1 argument
// failure, 2 settings/parameter failure.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "homebook [SETTINGS=<path>] [DB_DRIVER_CONNECT=<path>]",
		Short:         "Household book core",
		Long:          "Multi-tenant household book: diary, addresses, undo/redo history and device replication.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewLoginCommand())
	cmd.AddCommand(NewUndoCommand())
	cmd.AddCommand(NewRedoCommand())
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the CLI and maps errors to exit codes.
func Execute(args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// ParseAssignments extracts the recognised positional assignments.
// Unrecognised positionals are ignored, matching the original
// launcher contract.
func ParseAssignments(args []string) (settingsPath, dbPath string) {
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "SETTINGS="):
			settingsPath = strings.TrimPrefix(arg, "SETTINGS=")
		case strings.HasPrefix(arg, "DB_DRIVER_CONNECT="):
			dbPath = strings.TrimPrefix(arg, "DB_DRIVER_CONNECT=")
		}
	}
	return settingsPath, dbPath
}

// newLogger builds the CLI logger.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
