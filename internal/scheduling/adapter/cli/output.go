package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/domain"
)

// sessionDTO is one candidate/panel occurrence, rendered exactly as spec
// §6.2 shows it: {panel, start_time, end_time}.
type sessionDTO struct {
	Panel     string `json:"panel"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// summaryDTO mirrors the CLI's JSON summary object.
type summaryDTO struct {
	Status         string `json:"status"`
	OrderBreaks    int    `json:"order_breaks"`
	DayEndTime     string `json:"day_end_time"`
	MaxGapEnforced int    `json:"max_gap_enforced"`
}

// solutionDTO is the full `schedule(config)` success response.
type solutionDTO struct {
	Schedules map[string][]sessionDTO `json:"schedules"`
	Summary   summaryDTO              `json:"summary"`
}

// scheduleResponseDTO is the outer envelope returned by the `solve`
// subcommand: `{ success, solution? | error }`.
type scheduleResponseDTO struct {
	Success  bool         `json:"success"`
	Solution *solutionDTO `json:"solution,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// multiResponseDTO is `schedule_multiple`'s response shape: `{ success,
// solutions: [...], summary }`. Summary here reports how many of the
// requested k solutions were actually produced.
type multiResponseDTO struct {
	Success   bool          `json:"success"`
	Solutions []solutionDTO `json:"solutions"`
	Summary   multiSummary  `json:"summary"`
	Error     string        `json:"error,omitempty"`
}

type multiSummary struct {
	Requested int `json:"requested"`
	Produced  int `json:"produced"`
}

// validateResponseDTO is `validate(config)`'s response: `{ valid, error? }`.
type validateResponseDTO struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func toSolutionDTO(sol *domain.Solution, numCandidates int) solutionDTO {
	schedules := make(map[string][]sessionDTO, numCandidates)
	for c := 0; c < numCandidates; c++ {
		sessions := sol.Schedule[c]
		dtos := make([]sessionDTO, len(sessions))
		for i, s := range sessions {
			dtos[i] = sessionDTO{Panel: s.PanelName, StartTime: s.StartTime, EndTime: s.EndTime}
		}
		schedules[fmt.Sprintf("candidate_%d", c+1)] = dtos
	}
	return solutionDTO{
		Schedules: schedules,
		Summary: summaryDTO{
			Status:         string(sol.Summary.Status),
			OrderBreaks:    sol.Summary.OrderBreaks,
			DayEndTime:     sol.Summary.DayEndTime,
			MaxGapEnforced: sol.Summary.MaxGapEnforced,
		},
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// resultKindToExitCode maps a services.ResultKind other than Optimal/Feasible
// to its exit code. Optimal/Feasible are handled by the caller since
// they're the success path, not an error.
func resultKindToExitCode(kind services.ResultKind) int {
	switch kind {
	case services.KindInfeasible:
		return exitInfeasible
	case services.KindTimeLimitReachedNoSolution:
		return exitTimeLimitNoSolution
	default:
		return exitConfigError
	}
}
