package plugin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
)

// fakeModel is a minimal cpsolver.Model that just counts handles out
// sequentially, enough to verify ModelServer forwards calls and tracks the
// handles it hands back without needing a real CP-SAT backend.
type fakeModel struct {
	nextInt  cpsolver.IntVar
	nextBool cpsolver.BoolVar
}

func (m *fakeModel) NewIntVar(cpsolver.Domain) cpsolver.IntVar {
	m.nextInt++
	return m.nextInt
}
func (m *fakeModel) NewBoolVar() cpsolver.BoolVar {
	m.nextBool++
	return m.nextBool
}
func (m *fakeModel) NewConstant(value int64) cpsolver.IntVar {
	m.nextInt++
	return m.nextInt
}
func (m *fakeModel) NewInterval(start, duration, end cpsolver.IntVar) cpsolver.IntervalVar {
	return cpsolver.IntervalVar(start)
}
func (m *fakeModel) NewFixedInterval(startOffset, size int64) cpsolver.IntervalVar { return 0 }
func (m *fakeModel) NewOptionalInterval(start, duration, end cpsolver.IntVar, presence cpsolver.BoolVar) cpsolver.IntervalVar {
	return cpsolver.IntervalVar(start)
}
func (m *fakeModel) AddNoOverlap(intervals ...cpsolver.IntervalVar)                  {}
func (m *fakeModel) AddLinearEquality(terms []cpsolver.LinearTerm, offset int64) cpsolver.ConstraintRef {
	return 1
}
func (m *fakeModel) AddLinearLessOrEqual(terms []cpsolver.LinearTerm, offset int64) cpsolver.ConstraintRef {
	return 2
}
func (m *fakeModel) AddBoolOr(lits ...cpsolver.BoolVar) cpsolver.ConstraintRef    { return 3 }
func (m *fakeModel) AddImplication(a, b cpsolver.BoolVar) cpsolver.ConstraintRef  { return 4 }
func (m *fakeModel) AddEquality(a, b cpsolver.IntVar) cpsolver.ConstraintRef      { return 5 }
func (m *fakeModel) AddLessOrEqual(a, b cpsolver.IntVar) cpsolver.ConstraintRef   { return 6 }
func (m *fakeModel) AddLessThan(a, b cpsolver.IntVar) cpsolver.ConstraintRef      { return 7 }
func (m *fakeModel) OnlyEnforceIf(ref cpsolver.ConstraintRef, lits ...cpsolver.BoolVar) {}
func (m *fakeModel) AsIntVar(lit cpsolver.BoolVar) cpsolver.IntVar {
	m.nextInt++
	return m.nextInt
}
func (m *fakeModel) Minimize(terms []cpsolver.LinearTerm) {}
func (m *fakeModel) Solve(ctx context.Context, params cpsolver.SolveParams) (*cpsolver.Result, error) {
	r := cpsolver.NewResult(cpsolver.StatusOptimal, 42, time.Millisecond)
	for i := cpsolver.IntVar(1); i <= m.nextInt; i++ {
		r.SetIntValue(i, int64(i)*10)
	}
	for i := cpsolver.BoolVar(1); i <= m.nextBool; i++ {
		r.SetBoolValue(i, i%2 == 0)
	}
	return r, nil
}

type fakeFactory struct{}

func (fakeFactory) NewModel() cpsolver.Model { return &fakeModel{} }

func TestModelServer_SolveRepliesWithEveryAllocatedHandle(t *testing.T) {
	server := NewModelServer(fakeFactory{})

	var newModelReply newModelReply
	require.NoError(t, server.NewModel(newModelArgs{}, &newModelReply))

	var intReply newIntVarReply
	require.NoError(t, server.NewIntVar(newIntVarArgs{Domain: cpsolver.Domain{Min: 0, Max: 10}}, &intReply))
	assert.Equal(t, cpsolver.IntVar(1), intReply.Var)

	var intReply2 newIntVarReply
	require.NoError(t, server.NewIntVar(newIntVarArgs{Domain: cpsolver.Domain{Min: 0, Max: 10}}, &intReply2))
	assert.Equal(t, cpsolver.IntVar(2), intReply2.Var)

	var boolReply newBoolVarReply
	require.NoError(t, server.NewBoolVar(newBoolVarArgs{}, &boolReply))
	assert.Equal(t, cpsolver.BoolVar(1), boolReply.Var)

	var solveReply solveReply
	require.NoError(t, server.Solve(solveArgs{Params: cpsolver.SolveParams{}}, &solveReply))

	assert.Equal(t, cpsolver.StatusOptimal, solveReply.Status)
	require.Len(t, solveReply.IntValues, 2)
	assert.Equal(t, int64(10), solveReply.IntValues[cpsolver.IntVar(1)])
	assert.Equal(t, int64(20), solveReply.IntValues[cpsolver.IntVar(2)])
	require.Len(t, solveReply.BoolValues, 1)
	assert.Equal(t, false, solveReply.BoolValues[cpsolver.BoolVar(1)])
}

func TestModelServer_RequiresNewModelFirst(t *testing.T) {
	server := NewModelServer(fakeFactory{})

	var reply newIntVarReply
	err := server.NewIntVar(newIntVarArgs{Domain: cpsolver.Domain{Max: 1}}, &reply)
	assert.Error(t, err)
}

func TestModelServer_NewModelResetsHandleTracking(t *testing.T) {
	server := NewModelServer(fakeFactory{})

	var nmReply newModelReply
	require.NoError(t, server.NewModel(newModelArgs{}, &nmReply))
	var ivReply newIntVarReply
	require.NoError(t, server.NewIntVar(newIntVarArgs{Domain: cpsolver.Domain{Max: 1}}, &ivReply))

	require.NoError(t, server.NewModel(newModelArgs{}, &nmReply))
	var solveReply solveReply
	require.NoError(t, server.Solve(solveArgs{}, &solveReply))
	assert.Empty(t, solveReply.IntValues, "a fresh model has no remembered int vars from the previous one")
}
