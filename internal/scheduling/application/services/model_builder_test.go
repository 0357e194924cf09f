package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/config"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
	"github.com/meridianhire/panelsched/internal/scheduling/timeconv"
)

// recordingModel is a bare-bones cpsolver.Model that hands out sequential
// handles and counts how many of each constraint kind it was asked to add,
// so ModelBuilder's wiring can be checked without a real CP-SAT backend.
type recordingModel struct {
	nextInt      cpsolver.IntVar
	nextBool     cpsolver.BoolVar
	nextInterval cpsolver.IntervalVar
	nextRef      cpsolver.ConstraintRef

	noOverlapCalls int
	linearEqCalls  int
	linearLECalls  int
	boolOrCalls    int
	objectiveTerms int
}

func (m *recordingModel) NewIntVar(cpsolver.Domain) cpsolver.IntVar {
	m.nextInt++
	return m.nextInt
}
func (m *recordingModel) NewBoolVar() cpsolver.BoolVar {
	m.nextBool++
	return m.nextBool
}
func (m *recordingModel) NewConstant(int64) cpsolver.IntVar {
	m.nextInt++
	return m.nextInt
}
func (m *recordingModel) NewInterval(start, duration, end cpsolver.IntVar) cpsolver.IntervalVar {
	m.nextInterval++
	return m.nextInterval
}
func (m *recordingModel) NewFixedInterval(startOffset, size int64) cpsolver.IntervalVar {
	m.nextInterval++
	return m.nextInterval
}
func (m *recordingModel) NewOptionalInterval(start, duration, end cpsolver.IntVar, presence cpsolver.BoolVar) cpsolver.IntervalVar {
	m.nextInterval++
	return m.nextInterval
}
func (m *recordingModel) AddNoOverlap(intervals ...cpsolver.IntervalVar) {
	m.noOverlapCalls++
}
func (m *recordingModel) AddLinearEquality(terms []cpsolver.LinearTerm, offset int64) cpsolver.ConstraintRef {
	m.linearEqCalls++
	m.nextRef++
	return m.nextRef
}
func (m *recordingModel) AddLinearLessOrEqual(terms []cpsolver.LinearTerm, offset int64) cpsolver.ConstraintRef {
	m.linearLECalls++
	m.nextRef++
	return m.nextRef
}
func (m *recordingModel) AddBoolOr(lits ...cpsolver.BoolVar) cpsolver.ConstraintRef {
	m.boolOrCalls++
	m.nextRef++
	return m.nextRef
}
func (m *recordingModel) AddImplication(a, b cpsolver.BoolVar) cpsolver.ConstraintRef {
	m.nextRef++
	return m.nextRef
}
func (m *recordingModel) AddEquality(a, b cpsolver.IntVar) cpsolver.ConstraintRef {
	m.nextRef++
	return m.nextRef
}
func (m *recordingModel) AddLessOrEqual(a, b cpsolver.IntVar) cpsolver.ConstraintRef {
	m.nextRef++
	return m.nextRef
}
func (m *recordingModel) AddLessThan(a, b cpsolver.IntVar) cpsolver.ConstraintRef {
	m.nextRef++
	return m.nextRef
}
func (m *recordingModel) OnlyEnforceIf(ref cpsolver.ConstraintRef, lits ...cpsolver.BoolVar) {}
func (m *recordingModel) AsIntVar(lit cpsolver.BoolVar) cpsolver.IntVar {
	m.nextInt++
	return m.nextInt
}
func (m *recordingModel) Minimize(terms []cpsolver.LinearTerm) { m.objectiveTerms = len(terms) }
func (m *recordingModel) Solve(ctx context.Context, params cpsolver.SolveParams) (*cpsolver.Result, error) {
	return cpsolver.NewResult(cpsolver.StatusOptimal, 0, 0), nil
}

func canonicalModelBuilderConfig() *config.NormalizedConfig {
	return &config.NormalizedConfig{
		NumCandidates: 2,
		Panels: []config.PanelSpec{
			{Name: "HR", DurationMinutes: 30},
			{Name: "Technical", DurationMinutes: 45},
			{Name: "Culture", DurationMinutes: 30},
		},
		Order: []string{"Technical", "HR", "Culture"},
		Availabilities: map[string][]timeconv.Window{
			"HR":        {{Start: 540, End: 1020}},
			"Technical": {{Start: 540, End: 1020}},
			"Culture":   {{Start: 540, End: 1020}},
		},
		StartMinutes:        510,
		EndMinutes:          1020,
		SlotDurationMinutes: 15,
		MaxGapMinutes:       15,
	}
}

func TestModelBuilderBuild_WiresOneIntervalPerCandidatePerPanel(t *testing.T) {
	inst, err := services.NewInstanceBuilder().Build(canonicalModelBuilderConfig())
	require.NoError(t, err)

	model := &recordingModel{}
	built := services.NewModelBuilder().Build(inst, model)

	assert.Equal(t, inst.NumCandidates, len(built.Start))
	for c := 0; c < inst.NumCandidates; c++ {
		assert.Len(t, built.Start[c], inst.NumPanels())
		assert.Len(t, built.End[c], inst.NumPanels())
	}
	// One interval handle per candidate*panel, all distinct.
	assert.Equal(t, cpsolver.IntervalVar(inst.NumCandidates*inst.NumPanels()), model.nextInterval)
}

func TestModelBuilderBuild_NoOverlapPerCandidateAndPerPanel(t *testing.T) {
	inst, err := services.NewInstanceBuilder().Build(canonicalModelBuilderConfig())
	require.NoError(t, err)

	model := &recordingModel{}
	services.NewModelBuilder().Build(inst, model)

	// One AddNoOverlap per candidate (invariant 2) plus one per
	// capacity-bound panel (invariant 3): 3 panels, none unlimited here.
	wantPanelCapacityCalls := inst.NumPanels()
	wantPerCandidateCalls := inst.NumCandidates
	assert.Equal(t, wantPerCandidateCalls+wantPanelCapacityCalls, model.noOverlapCalls)
}

func TestModelBuilderBuild_SkipsLunchInPanelCapacity(t *testing.T) {
	cfg := canonicalModelBuilderConfig()
	cfg.Panels = append(cfg.Panels, config.PanelSpec{Name: "Lunch", DurationMinutes: 30})
	cfg.Availabilities["Lunch"] = []timeconv.Window{{Start: 510, End: 1020}}

	inst, err := services.NewInstanceBuilder().Build(cfg)
	require.NoError(t, err)

	model := &recordingModel{}
	services.NewModelBuilder().Build(inst, model)

	// Lunch is unlimited, so panel-capacity no-overlap is only added for
	// the other 3 panels, plus one per-candidate no-overlap.
	assert.Equal(t, inst.NumCandidates+3, model.noOverlapCalls)
}

func TestModelBuilderBuild_ObjectiveCoversMakespanAndEveryBreakBoolean(t *testing.T) {
	inst, err := services.NewInstanceBuilder().Build(canonicalModelBuilderConfig())
	require.NoError(t, err)

	model := &recordingModel{}
	built := services.NewModelBuilder().Build(inst, model)

	order := inst.PreferredOrder()
	wantBreaksPerCandidate := len(order) - 1
	for c := 0; c < inst.NumCandidates; c++ {
		assert.Len(t, built.Break[c], wantBreaksPerCandidate)
	}
	// makespan term + one weighted break term per candidate per adjacent pair.
	assert.Equal(t, 1+inst.NumCandidates*wantBreaksPerCandidate, model.objectiveTerms)
}
