package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/domain"
)

var (
	solveMaxTimeSeconds int
	solveWorkers        int
	solveRandomSeed     int64
)

var solveCmd = &cobra.Command{
	Use:   "solve <config.yaml>",
	Short: "Solve a scheduling configuration and print the schedule as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfigDoc(args[0])
		if err != nil {
			printJSON(scheduleResponseDTO{Success: false, Error: err.Error()})
			return withExitCode(exitConfigError, err)
		}

		inst, err := buildInstance(doc)
		if err != nil {
			printJSON(scheduleResponseDTO{Success: false, Error: err.Error()})
			return withExitCode(exitConfigError, err)
		}

		opts := services.DefaultSolveOptions()
		if solveMaxTimeSeconds > 0 {
			opts.MaxTimeSeconds = solveMaxTimeSeconds
		}
		if solveWorkers > 0 {
			opts.Workers = solveWorkers
		}
		opts.RandomSeed = solveRandomSeed

		result, err := currentApp.SolverDriver.Solve(cmd.Context(), inst, opts)
		if err != nil {
			var verr *domain.VerificationError
			if errors.As(err, &verr) {
				printJSON(scheduleResponseDTO{Success: false, Error: err.Error()})
				return withExitCode(exitVerificationFailure, err)
			}
			printJSON(scheduleResponseDTO{Success: false, Error: err.Error()})
			return withExitCode(exitConfigError, err)
		}

		switch result.Kind {
		case services.KindOptimal, services.KindFeasible:
			dto := toSolutionDTO(result.Solution, inst.NumCandidates)
			printJSON(scheduleResponseDTO{Success: true, Solution: &dto})
			return nil
		default:
			msg := "solver could not produce a schedule"
			printJSON(scheduleResponseDTO{Success: false, Error: msg})
			return withExitCode(resultKindToExitCode(result.Kind), errors.New(msg))
		}
	},
}

func init() {
	solveCmd.Flags().IntVar(&solveMaxTimeSeconds, "max-time-seconds", 0, "solver time budget in seconds (default: 60)")
	solveCmd.Flags().IntVar(&solveWorkers, "workers", 0, "number of solver worker threads (default: NumCPU)")
	solveCmd.Flags().Int64Var(&solveRandomSeed, "random-seed", 0, "fixed random seed for deterministic solves")
}
