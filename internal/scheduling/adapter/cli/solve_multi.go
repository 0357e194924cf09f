package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/domain"
)

var (
	multiK              int
	multiMaxTimeSeconds int
	multiWorkers        int
)

var solveMultiCmd = &cobra.Command{
	Use:   "solve-multi <config.yaml>",
	Short: "Produce up to k diverse schedules for the same configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfigDoc(args[0])
		if err != nil {
			printJSON(multiResponseDTO{Success: false, Error: err.Error()})
			return withExitCode(exitConfigError, err)
		}

		inst, err := buildInstance(doc)
		if err != nil {
			printJSON(multiResponseDTO{Success: false, Error: err.Error()})
			return withExitCode(exitConfigError, err)
		}

		opts := services.DefaultSolveOptions()
		if multiMaxTimeSeconds > 0 {
			opts.MaxTimeSeconds = multiMaxTimeSeconds
		}
		if multiWorkers > 0 {
			opts.Workers = multiWorkers
		}

		results, err := currentApp.SolverDriver.SolveMulti(cmd.Context(), inst, opts, multiK)
		if err != nil {
			printJSON(multiResponseDTO{Success: false, Error: err.Error()})
			var verr *domain.VerificationError
			if errors.As(err, &verr) {
				return withExitCode(exitVerificationFailure, err)
			}
			return withExitCode(exitConfigError, err)
		}

		if len(results) == 0 {
			msg := "solver produced no schedules within the time budget"
			printJSON(multiResponseDTO{
				Success: false,
				Summary: multiSummary{Requested: multiK, Produced: 0},
				Error:   msg,
			})
			return withExitCode(exitTimeLimitNoSolution, errors.New(msg))
		}

		solutions := make([]solutionDTO, len(results))
		for i, r := range results {
			solutions[i] = toSolutionDTO(r.Solution, inst.NumCandidates)
		}
		printJSON(multiResponseDTO{
			Success:   true,
			Solutions: solutions,
			Summary:   multiSummary{Requested: multiK, Produced: len(results)},
		})
		return nil
	},
}

func init() {
	solveMultiCmd.Flags().IntVarP(&multiK, "k", "k", 3, "number of diverse schedules to produce")
	solveMultiCmd.Flags().IntVar(&multiMaxTimeSeconds, "max-time-seconds", 0, "solver time budget in seconds (default: 60)")
	solveMultiCmd.Flags().IntVar(&multiWorkers, "workers", 0, "number of solver worker threads (default: NumCPU)")
}
