package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var logger *slog.Logger

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd is the base "panelsched" command.
var rootCmd = &cobra.Command{
	Use:   "panelsched",
	Short: "panelsched - interview-day panel scheduler",
	Long: `panelsched solves an interview-day scheduling problem: for a set
of candidates and interview panels, it assigns a conflict-free start time to
every candidate/panel session, honoring availability windows, panel
capacity, and a preferred panel order, then prints the result as JSON.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info := commandContext{correlationID: uuid.New(), startedAt: time.Now()}
		cmd.SetContext(context.WithValue(cmd.Context(), commandContextKey{}, info))
		logger.Info("command start", "command", cmd.CommandPath(), "correlation_id", info.correlationID.String())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			return
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.Info("command end",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the CLI and exits with the code a failing subcommand
// attached to its error via withExitCode: 0 success, 1 config error, 2
// infeasible, 3 time limit without solution, 4 internal verification failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// SetLogger installs the logger subcommands and pre/post-run hooks use.
func SetLogger(l *slog.Logger) { logger = l }

func init() {
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(solveMultiCmd)
	rootCmd.AddCommand(validateCmd)
}
