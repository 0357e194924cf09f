package services

import (
	"sort"

	"github.com/meridianhire/panelsched/internal/scheduling/domain"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
)

// Extractor is the solution extractor's read-out half: it converts raw solved
// variable values into an immutable domain.Solution, then hands the result
// to a Verifier before returning it — the post-solve
// verifier to run on every extraction.
type Extractor struct {
	verifier *Verifier
}

// NewExtractor constructs an Extractor with its own Verifier.
func NewExtractor() *Extractor { return &Extractor{verifier: NewVerifier()} }

// Extract reads built's variables out of result, builds the candidate ->
// session schedule, computes the Summary, and verifies every invariant
// before returning. A verification failure is a fatal bug and
// is returned as a *domain.VerificationError.
func (x *Extractor) Extract(built *BuiltModel, result *cpsolver.Result) (*domain.Solution, error) {
	inst := built.Instance
	schedule := make(domain.Schedule, inst.NumCandidates)

	for c := 0; c < inst.NumCandidates; c++ {
		sessions := make([]domain.Session, inst.NumPanels())
		for panelIdx := 0; panelIdx < inst.NumPanels(); panelIdx++ {
			start := int(result.IntValue(built.Start[c][panelIdx]))
			end := int(result.IntValue(built.End[c][panelIdx]))
			sessions[panelIdx] = domain.NewSession(inst.Panel(panelIdx).Name, start, end, inst.SlotMinutes, inst.DayStartMinutes)
		}
		sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartSlot < sessions[j].StartSlot })
		schedule[c] = sessions
	}

	orderBreaks := 0
	for _, candidateBreaks := range built.Break {
		for _, brk := range candidateBreaks {
			if result.BoolValue(brk) {
				orderBreaks++
			}
		}
	}

	status := domain.StatusFeasible
	if result.Status == cpsolver.StatusOptimal {
		status = domain.StatusOptimal
	}

	dayEndSlot := int(result.IntValue(built.Makespan))
	summary := domain.Summary{
		Status:         status,
		OrderBreaks:    orderBreaks,
		DayEndTime:     domain.NewSession("", 0, dayEndSlot, inst.SlotMinutes, inst.DayStartMinutes).EndTime,
		MaxGapEnforced: inst.MaxGapSlots() * inst.SlotMinutes,
	}

	solution := &domain.Solution{
		Schedule: schedule,
		Summary:  summary,
		Stats: domain.Stats{
			Elapsed:       result.Elapsed,
			Deterministic: true,
		},
	}

	if err := x.verifier.Verify(inst, solution); err != nil {
		return nil, err
	}
	return solution, nil
}
