package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInfeasible indicates no schedule satisfies all hard constraints.
	// It carries no further hint — diagnosing infeasibility is out of scope.
	ErrInfeasible = errors.New("no feasible schedule exists for this instance")

	// ErrTimeLimitReached indicates the solver ran out of time before
	// proving optimality or, in the worst case, before finding any
	// feasible solution at all (see services.SolveResult.Solution == nil).
	ErrTimeLimitReached = errors.New("solver time limit reached")
)

// VerificationError is a fatal bug report: the post-solve verifier
// found a solver-returned assignment that violates an invariant §3 of the
// scheduling model promises to uphold. This should never happen against a
// correct model builder — it exists to catch modeling errors, not user error.
type VerificationError struct {
	Invariant string
	Candidate int
	Panel     string
	Detail    string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed: invariant %q violated for candidate %d, panel %q: %s",
		e.Invariant, e.Candidate, e.Panel, e.Detail)
}

// NewVerificationError builds a VerificationError naming the offending
// candidate/panel pair, mirroring the caller-diagnosable error shape used
// throughout the rest of the scheduling core.
func NewVerificationError(invariant string, candidate int, panel, detail string) *VerificationError {
	return &VerificationError{Invariant: invariant, Candidate: candidate, Panel: panel, Detail: detail}
}
