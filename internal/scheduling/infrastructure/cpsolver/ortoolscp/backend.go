// Package ortoolscp is the in-process cpsolver.Model backend built directly
// on Google OR-Tools' CP-SAT Go binding (github.com/google/or-tools/ortools/sat/go/cpmodel).
// It is the default Factory wired into the solver driver; the
// go-plugin-based backend in the sibling plugin package is the
// out-of-process alternative.
package ortoolscp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
)

// factory constructs fresh Backend models. It holds no state of its own.
type factory struct{}

// NewFactory returns the OR-Tools cpsolver.Factory.
func NewFactory() cpsolver.Factory { return &factory{} }

func (factory) NewModel() cpsolver.Model {
	return &backend{
		builder:     cpmodel.NewCpModelBuilder(),
		intVars:     map[cpsolver.IntVar]cpmodel.IntVar{},
		boolVars:    map[cpsolver.BoolVar]cpmodel.BoolVar{},
		intervals:   map[cpsolver.IntervalVar]cpmodel.IntervalVar{},
		constraints: map[cpsolver.ConstraintRef]cpmodel.Constraint{},
	}
}

// backend adapts one cpmodel.Builder to the cpsolver.Model interface,
// tracking every declared variable and constraint under an opaque handle so
// callers never see a concrete cpmodel type.
type backend struct {
	builder *cpmodel.Builder

	nextInt      int32
	nextBool     int32
	nextInterval int32
	nextConstr   int32

	intVars     map[cpsolver.IntVar]cpmodel.IntVar
	boolVars    map[cpsolver.BoolVar]cpmodel.BoolVar
	intervals   map[cpsolver.IntervalVar]cpmodel.IntervalVar
	constraints map[cpsolver.ConstraintRef]cpmodel.Constraint
}

func (b *backend) NewIntVar(d cpsolver.Domain) cpsolver.IntVar {
	b.nextInt++
	handle := cpsolver.IntVar(b.nextInt)
	b.intVars[handle] = b.builder.NewIntVarFromDomain(cpmodel.NewDomain(d.Min, d.Max))
	return handle
}

func (b *backend) NewBoolVar() cpsolver.BoolVar {
	b.nextBool++
	handle := cpsolver.BoolVar(b.nextBool)
	b.boolVars[handle] = b.builder.NewBoolVar()
	return handle
}

func (b *backend) NewConstant(value int64) cpsolver.IntVar {
	b.nextInt++
	handle := cpsolver.IntVar(b.nextInt)
	b.intVars[handle] = b.builder.NewConstant(value)
	return handle
}

func (b *backend) NewInterval(start, duration, end cpsolver.IntVar) cpsolver.IntervalVar {
	b.nextInterval++
	handle := cpsolver.IntervalVar(b.nextInterval)
	b.intervals[handle] = b.builder.NewIntervalVar(b.int(start), b.int(duration), b.int(end))
	return handle
}

func (b *backend) NewFixedInterval(startOffset, size int64) cpsolver.IntervalVar {
	b.nextInterval++
	handle := cpsolver.IntervalVar(b.nextInterval)
	b.intervals[handle] = b.builder.NewFixedSizeIntervalVar(cpmodel.NewConstant(startOffset), size)
	return handle
}

func (b *backend) NewOptionalInterval(start, duration, end cpsolver.IntVar, presence cpsolver.BoolVar) cpsolver.IntervalVar {
	b.nextInterval++
	handle := cpsolver.IntervalVar(b.nextInterval)
	b.intervals[handle] = b.builder.NewOptionalIntervalVar(b.int(start), b.int(duration), b.int(end), b.lit(presence))
	return handle
}

func (b *backend) AddNoOverlap(intervals ...cpsolver.IntervalVar) {
	vars := make([]cpmodel.IntervalVar, len(intervals))
	for i, h := range intervals {
		vars[i] = b.intervals[h]
	}
	b.builder.AddNoOverlap(vars...)
}

func (b *backend) linearExpr(terms []cpsolver.LinearTerm, offset int64) *cpmodel.LinearExpr {
	expr := cpmodel.NewConstant(offset)
	for _, t := range terms {
		expr.AddTerm(b.int(t.Var), t.Coeff)
	}
	return expr
}

func (b *backend) AddLinearEquality(terms []cpsolver.LinearTerm, offset int64) cpsolver.ConstraintRef {
	c := b.builder.AddEquality(b.linearExpr(terms, offset), cpmodel.NewConstant(0))
	return b.track(c)
}

func (b *backend) AddLinearLessOrEqual(terms []cpsolver.LinearTerm, offset int64) cpsolver.ConstraintRef {
	c := b.builder.AddLessOrEqual(b.linearExpr(terms, offset), cpmodel.NewConstant(0))
	return b.track(c)
}

func (b *backend) AddBoolOr(lits ...cpsolver.BoolVar) cpsolver.ConstraintRef {
	vars := make([]cpmodel.BoolVar, len(lits))
	for i, l := range lits {
		vars[i] = b.lit(l)
	}
	return b.track(b.builder.AddBoolOr(vars...))
}

func (b *backend) AddImplication(a, binv cpsolver.BoolVar) cpsolver.ConstraintRef {
	return b.track(b.builder.AddImplication(b.lit(a), b.lit(binv)))
}

func (b *backend) AddEquality(a, bb cpsolver.IntVar) cpsolver.ConstraintRef {
	return b.track(b.builder.AddEquality(b.int(a), b.int(bb)))
}

func (b *backend) AddLessOrEqual(a, bb cpsolver.IntVar) cpsolver.ConstraintRef {
	return b.track(b.builder.AddLessOrEqual(b.int(a), b.int(bb)))
}

func (b *backend) AddLessThan(a, bb cpsolver.IntVar) cpsolver.ConstraintRef {
	return b.track(b.builder.AddLessThan(b.int(a), b.int(bb)))
}

func (b *backend) OnlyEnforceIf(ref cpsolver.ConstraintRef, lits ...cpsolver.BoolVar) {
	vars := make([]cpmodel.BoolVar, len(lits))
	for i, l := range lits {
		vars[i] = b.lit(l)
	}
	b.constraints[ref].OnlyEnforceIf(vars...)
}

func (b *backend) AsIntVar(lit cpsolver.BoolVar) cpsolver.IntVar {
	b.nextInt++
	handle := cpsolver.IntVar(b.nextInt)
	// cpmodel represents boolean variables as integer variables with
	// domain {0,1}; BoolVar converts directly to IntVar for this reason.
	b.intVars[handle] = cpmodel.IntVar(b.lit(lit))
	return handle
}

func (b *backend) Minimize(terms []cpsolver.LinearTerm) {
	b.builder.Minimize(b.linearExpr(terms, 0))
}

// Solve runs CP-SAT on the built model. params is not passed to CP-SAT:
// the time budget is enforced only through ctx, and the seed and worker
// count are not applied.
func (b *backend) Solve(ctx context.Context, params cpsolver.SolveParams) (*cpsolver.Result, error) {
	m, err := b.builder.Model()
	if err != nil {
		return nil, fmt.Errorf("ortoolscp: failed to instantiate model: %w", err)
	}

	start := time.Now()
	done := make(chan struct{})
	var response *cmpb.CpSolverResponse
	var solveErr error
	go func() {
		defer close(done)
		response, solveErr = cpmodel.SolveCpModel(m)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// CP-SAT has no cooperative Go-side cancellation hook in the
		// observed API; the in-flight solve is left to finish on its own
		// goroutine and its result is discarded.
		return nil, ctx.Err()
	}
	if solveErr != nil {
		return nil, fmt.Errorf("ortoolscp: solve failed: %w", solveErr)
	}

	elapsed := time.Since(start)
	status := fromProtoStatus(response.GetStatus())
	result := cpsolver.NewResult(status, response.GetObjectiveValue(), elapsed)
	if status == cpsolver.StatusOptimal || status == cpsolver.StatusFeasible {
		for handle, v := range b.intVars {
			result.SetIntValue(handle, cpmodel.SolutionIntegerValue(response, v))
		}
		for handle, v := range b.boolVars {
			result.SetBoolValue(handle, cpmodel.SolutionBooleanValue(response, v))
		}
	}
	return result, nil
}

func (b *backend) track(c cpmodel.Constraint) cpsolver.ConstraintRef {
	b.nextConstr++
	ref := cpsolver.ConstraintRef(b.nextConstr)
	b.constraints[ref] = c
	return ref
}

func (b *backend) int(v cpsolver.IntVar) cpmodel.IntVar { return b.intVars[v] }

// lit resolves a (possibly negated) boolean handle to its cpmodel literal.
func (b *backend) lit(v cpsolver.BoolVar) cpmodel.BoolVar {
	if v < 0 {
		return b.boolVars[-v].Not()
	}
	return b.boolVars[v]
}

func fromProtoStatus(s cmpb.CpSolverStatus) cpsolver.Status {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return cpsolver.StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return cpsolver.StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return cpsolver.StatusInfeasible
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return cpsolver.StatusModelInvalid
	default:
		return cpsolver.StatusUnknown
	}
}
