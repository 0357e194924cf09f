// Package cpsolver declares the capability interface the model builder
// and solver driver program against, independent of any concrete
// constraint-programming backend. The design calls for "a narrow
// interface — declare int var with domain, declare boolean, declare
// interval, add linear/reified constraint, add no-overlap, set objective,
// solve with time limit, query value" so the solver can be swapped (an
// in-process OR-Tools binding or an out-of-process plugin)
// without touching the model-construction logic.
//
// Variables and intervals are opaque handles rather than concrete backend
// types: a handle-based API is what lets the same Model implementation
// serve both an in-process binding and an RPC-based plugin (handles encode
// to plain integers).
package cpsolver

import (
	"context"
	"time"
)

// IntVar is an opaque handle to an integer decision variable.
type IntVar int32

// BoolVar is an opaque handle to a boolean decision variable. A negative
// handle denotes the negation of the variable with the corresponding
// positive handle — mirroring the Not() literal convention the underlying
// CP-SAT binding itself exposes on its BoolVar type.
type BoolVar int32

// Not returns the negated literal. Not(Not(b)) == b.
func (b BoolVar) Not() BoolVar { return -b }

// IntervalVar is an opaque handle to an interval variable (optional or fixed).
type IntervalVar int32

// Domain is an inclusive integer range [Min, Max].
type Domain struct {
	Min int64
	Max int64
}

// LinearTerm is one coefficient*variable addend of a linear expression.
type LinearTerm struct {
	Var   IntVar
	Coeff int64
}

// ConstraintRef identifies a previously added constraint so it can be
// reified with OnlyEnforceIf.
type ConstraintRef int32

// Status is the solver's verdict on a model.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
)

// String renders the status the way CP-SAT's own enum prints.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// SolveParams carries the worker count, seed and time limit of a single
// solve invocation; see Model.Solve for how far a backend applies them.
type SolveParams struct {
	MaxWorkers int
	RandomSeed int64
	TimeLimit  time.Duration
}

// Result is everything the solution extractor needs to read back a
// solved (or partially solved) model.
type Result struct {
	Status         Status
	ObjectiveValue float64
	Elapsed        time.Duration

	intValues  map[IntVar]int64
	boolValues map[BoolVar]bool
}

// NewResult builds a Result; backends populate it via SetIntValue/SetBoolValue.
func NewResult(status Status, objective float64, elapsed time.Duration) *Result {
	return &Result{
		Status:         status,
		ObjectiveValue: objective,
		Elapsed:        elapsed,
		intValues:      make(map[IntVar]int64),
		boolValues:     make(map[BoolVar]bool),
	}
}

// SetIntValue records a solved integer variable's value.
func (r *Result) SetIntValue(v IntVar, value int64) { r.intValues[v] = value }

// SetBoolValue records a solved boolean variable's value.
func (r *Result) SetBoolValue(v BoolVar, value bool) { r.boolValues[v] = value }

// IntValue returns the solved value of v. Callers only call this after
// confirming Status is Optimal or Feasible.
func (r *Result) IntValue(v IntVar) int64 { return r.intValues[v] }

// BoolValue returns the solved truth value of lit, honoring negation.
func (r *Result) BoolValue(lit BoolVar) bool {
	if lit < 0 {
		return !r.boolValues[-lit]
	}
	return r.boolValues[lit]
}

// Model is the backend-agnostic constraint model under construction. A
// concrete implementation (infrastructure/cpsolver/ortoolscp, or an
// out-of-process infrastructure/cpsolver/plugin backend) translates every
// call directly into its native solver's API.
type Model interface {
	// NewIntVar declares an integer variable ranging over d.
	NewIntVar(d Domain) IntVar
	// NewBoolVar declares a boolean variable.
	NewBoolVar() BoolVar
	// NewConstant declares a fixed integer value usable wherever an IntVar is expected.
	NewConstant(value int64) IntVar
	// NewInterval declares a mandatory interval [start, start+duration) == [start, end).
	NewInterval(start, duration, end IntVar) IntervalVar
	// NewFixedInterval declares a mandatory interval of a known size starting at a fixed offset.
	NewFixedInterval(startOffset, size int64) IntervalVar
	// NewOptionalInterval declares an interval that only constrains NoOverlap when presence is true.
	NewOptionalInterval(start, duration, end IntVar, presence BoolVar) IntervalVar

	// AddNoOverlap forbids any two of the given intervals from overlapping.
	AddNoOverlap(intervals ...IntervalVar)
	// AddLinearEquality constrains sum(terms) + offset == 0.
	AddLinearEquality(terms []LinearTerm, offset int64) ConstraintRef
	// AddLinearLessOrEqual constrains sum(terms) + offset <= 0.
	AddLinearLessOrEqual(terms []LinearTerm, offset int64) ConstraintRef
	// AddBoolOr constrains at least one of lits to be true.
	AddBoolOr(lits ...BoolVar) ConstraintRef
	// AddImplication constrains a => b.
	AddImplication(a, b BoolVar) ConstraintRef
	// AddEquality constrains a == b.
	AddEquality(a, b IntVar) ConstraintRef
	// AddLessOrEqual constrains a <= b.
	AddLessOrEqual(a, b IntVar) ConstraintRef
	// AddLessThan constrains a < b.
	AddLessThan(a, b IntVar) ConstraintRef
	// OnlyEnforceIf reifies a previously added constraint: it only holds when every literal is true.
	OnlyEnforceIf(ref ConstraintRef, lits ...BoolVar)

	// AsIntVar returns an integer-variable view of a boolean literal (0 or
	// 1), usable anywhere a LinearTerm needs a plain IntVar — CP-SAT's own
	// boolean variables are integer variables with domain {0,1}.
	AsIntVar(lit BoolVar) IntVar

	// Minimize sets the objective to minimize sum(terms).
	Minimize(terms []LinearTerm)

	// Solve runs the solver, honoring ctx cancellation. The ortoolscp
	// backend does not pass params to CP-SAT, so its time limit comes only
	// from ctx and its seed and worker count are not applied.
	Solve(ctx context.Context, params SolveParams) (*Result, error)
}

// Factory constructs a fresh Model. Each solve attempt gets its own Model:
// CP-SAT model proto builders are not meant to be reused across solves.
type Factory interface {
	NewModel() Model
}
