package services

import "github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"

// DiversityController owns the no-good cuts emitted
// during a solve_multi diversity loop so each re-solve is
// forced to differ from every previously produced solution in at least one
// session's start time, and so the cut list can be cleared for a fresh
// search.
type DiversityController struct {
	cuts []cut
}

// cut is one previously produced solution's start-time assignment, snapshot
// by candidate and panel index so it can be re-applied to a freshly built
// model on the next solve_multi iteration.
type cut struct {
	starts [][]int64 // [candidate][panel]
}

// NewDiversityController constructs an empty DiversityController.
func NewDiversityController() *DiversityController { return &DiversityController{} }

// Reset clears every emitted cut, starting a fresh diversity search.
func (d *DiversityController) Reset() { d.cuts = nil }

// Record snapshots a produced solution's start-time assignment as a future cut.
func (d *DiversityController) Record(built *BuiltModel, result *cpsolver.Result) {
	starts := make([][]int64, len(built.Start))
	for c := range built.Start {
		starts[c] = make([]int64, len(built.Start[c]))
		for p := range built.Start[c] {
			starts[c][p] = result.IntValue(built.Start[c][p])
		}
	}
	d.cuts = append(d.cuts, cut{starts: starts})
}

// ApplyCuts adds, for every previously recorded solution S, the constraint
// OR over (c,p) of (start[c,p] != S.start[c,p]) — a no-good cut —
// to a freshly built model, implemented via one auxiliary "differs" boolean
// per session summed to >= 1.
//
// Each differs literal is channeled in both directions, the same way
// model_builder.go's buildObjective channels its order-break booleans:
// differs==false forces start[c,p] == S.start[c,p], and differs==true
// forces start[c,p] != S.start[c,p] (via a less-than/greater-than pair,
// since inequality itself is a disjunction). Without the reverse
// direction, CP-SAT could set every differs literal true for free without
// the underlying start times actually changing, satisfying the cut
// without producing a distinct schedule.
func (d *DiversityController) ApplyCuts(model cpsolver.Model, built *BuiltModel) {
	for _, prior := range d.cuts {
		var differsLits []cpsolver.BoolVar
		for c := range built.Start {
			for p := range built.Start[c] {
				start := built.Start[c][p]
				priorValue := model.NewConstant(prior.starts[c][p])

				differs := model.NewBoolVar()
				differsLits = append(differsLits, differs)

				equalHere := model.AddEquality(start, priorValue)
				model.OnlyEnforceIf(equalHere, differs.Not())

				lessLit := model.NewBoolVar()
				less := model.AddLessThan(start, priorValue)
				model.OnlyEnforceIf(less, lessLit)

				greaterLit := model.NewBoolVar()
				greater := model.AddLessThan(priorValue, start)
				model.OnlyEnforceIf(greater, greaterLit)

				notEqualHere := model.AddBoolOr(lessLit, greaterLit)
				model.OnlyEnforceIf(notEqualHere, differs)
			}
		}
		model.AddBoolOr(differsLits...)
	}
}
