package plugin

import "github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"

// The types below are the net/rpc argument/reply pairs for every
// cpsolver.Model and cpsolver.Factory method — one pair per RPC, following
// the narrow interface solver.go itself declares: declare int var with
// domain, declare boolean, declare interval, add linear/reified
// constraint, add no-overlap, set objective, solve with time limit, query
// value. net/rpc requires exported fields on both ends of the wire, and
// every type here is a plain struct of cpsolver's already-exported handle
// types, so gob needs no registration.

type newModelArgs struct{}
type newModelReply struct{}

type newIntVarArgs struct{ Domain cpsolver.Domain }
type newIntVarReply struct{ Var cpsolver.IntVar }

type newBoolVarArgs struct{}
type newBoolVarReply struct{ Var cpsolver.BoolVar }

type newConstantArgs struct{ Value int64 }
type newConstantReply struct{ Var cpsolver.IntVar }

type newIntervalArgs struct{ Start, Duration, End cpsolver.IntVar }
type newIntervalReply struct{ Interval cpsolver.IntervalVar }

type newFixedIntervalArgs struct{ StartOffset, Size int64 }
type newFixedIntervalReply struct{ Interval cpsolver.IntervalVar }

type newOptionalIntervalArgs struct {
	Start, Duration, End cpsolver.IntVar
	Presence             cpsolver.BoolVar
}
type newOptionalIntervalReply struct{ Interval cpsolver.IntervalVar }

type addNoOverlapArgs struct{ Intervals []cpsolver.IntervalVar }
type addNoOverlapReply struct{}

type addLinearArgs struct {
	Terms  []cpsolver.LinearTerm
	Offset int64
}
type addLinearReply struct{ Ref cpsolver.ConstraintRef }

type addBoolOrArgs struct{ Lits []cpsolver.BoolVar }
type addBoolOrReply struct{ Ref cpsolver.ConstraintRef }

type addPairArgs struct{ A, B cpsolver.IntVar }
type addPairReply struct{ Ref cpsolver.ConstraintRef }

type addImplicationArgs struct{ A, B cpsolver.BoolVar }
type addImplicationReply struct{ Ref cpsolver.ConstraintRef }

type onlyEnforceIfArgs struct {
	Ref  cpsolver.ConstraintRef
	Lits []cpsolver.BoolVar
}
type onlyEnforceIfReply struct{}

type asIntVarArgs struct{ Lit cpsolver.BoolVar }
type asIntVarReply struct{ Var cpsolver.IntVar }

type minimizeArgs struct{ Terms []cpsolver.LinearTerm }
type minimizeReply struct{}

type solveArgs struct{ Params cpsolver.SolveParams }
type solveReply struct {
	Status         cpsolver.Status
	ObjectiveValue float64
	ElapsedNanos   int64
	IntValues      map[cpsolver.IntVar]int64
	BoolValues     map[cpsolver.BoolVar]bool
}
