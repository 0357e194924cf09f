package services_test

import (
	"testing"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalInstance(t *testing.T) *domain.Instance {
	t.Helper()
	panels := []domain.Panel{
		{Name: "Technical", DurationSlots: 3},
		{Name: "HR", DurationSlots: 2},
	}
	avail := [][]domain.SlotWindow{
		{{Start: 0, End: 34}},
		{{Start: 0, End: 34}},
	}
	inst, err := domain.NewInstance(15, 34, 2, panels, avail, []int{0, 1}, nil, nil, 1)
	require.NoError(t, err)
	return inst
}

func scheduleFromStarts(inst *domain.Instance, starts map[int]map[int]int) domain.Schedule {
	sched := make(domain.Schedule, len(starts))
	for c, byPanel := range starts {
		sessions := make([]domain.Session, 0, len(byPanel))
		for panelIdx, start := range byPanel {
			p := inst.Panel(panelIdx)
			sessions = append(sessions, domain.NewSession(p.Name, start, start+p.DurationSlots, inst.SlotMinutes, inst.DayStartMinutes))
		}
		sched[c] = sessions
	}
	return sched
}

func TestVerifierAcceptsValidSchedule(t *testing.T) {
	inst := canonicalInstance(t)
	sched := scheduleFromStarts(inst, map[int]map[int]int{
		0: {0: 2, 1: 5},  // Technical 2-5, HR 5-7
		1: {0: 5, 1: 8},  // Technical 5-8 (after c0's Technical ends)
	})
	sol := &domain.Solution{
		Schedule: sched,
		Summary:  domain.Summary{Status: domain.StatusOptimal, OrderBreaks: 0},
	}
	v := services.NewVerifier()
	assert.NoError(t, v.Verify(inst, sol))
}

func TestVerifierRejectsCandidateOverlap(t *testing.T) {
	inst := canonicalInstance(t)
	sched := scheduleFromStarts(inst, map[int]map[int]int{
		0: {0: 2, 1: 3}, // Technical 2-5 overlaps HR 3-5
		1: {0: 10, 1: 15},
	})
	sol := &domain.Solution{Schedule: sched, Summary: domain.Summary{OrderBreaks: 0}}
	v := services.NewVerifier()
	assert.Error(t, v.Verify(inst, sol))
}

func TestVerifierRejectsPanelCapacityOverlap(t *testing.T) {
	inst := canonicalInstance(t)
	sched := scheduleFromStarts(inst, map[int]map[int]int{
		0: {0: 2, 1: 5},
		1: {0: 3, 1: 20}, // c1's Technical [3,6) overlaps c0's Technical [2,5)
	})
	sol := &domain.Solution{Schedule: sched, Summary: domain.Summary{OrderBreaks: 0}}
	v := services.NewVerifier()
	assert.Error(t, v.Verify(inst, sol))
}

func TestVerifierRejectsMismatchedOrderBreakCount(t *testing.T) {
	inst := canonicalInstance(t)
	sched := scheduleFromStarts(inst, map[int]map[int]int{
		0: {0: 2, 1: 5},
		1: {0: 5, 1: 8},
	})
	sol := &domain.Solution{Schedule: sched, Summary: domain.Summary{OrderBreaks: 5}}
	v := services.NewVerifier()
	assert.Error(t, v.Verify(inst, sol))
}

func TestVerifierRejectsGapExceedingBound(t *testing.T) {
	inst := canonicalInstance(t)
	sched := scheduleFromStarts(inst, map[int]map[int]int{
		0: {0: 2, 1: 10}, // Technical ends at 5, HR starts at 10: gap of 5 > max_gap_slots(1)
		1: {0: 11, 1: 20},
	})
	sol := &domain.Solution{Schedule: sched, Summary: domain.Summary{OrderBreaks: 0}}
	v := services.NewVerifier()
	assert.Error(t, v.Verify(inst, sol))
}

func TestVerifierEnforcesPositionConstraint(t *testing.T) {
	panels := []domain.Panel{
		{Name: "Technical", DurationSlots: 3},
		{Name: "HR", DurationSlots: 2},
	}
	avail := [][]domain.SlotWindow{{{Start: 0, End: 34}}, {{Start: 0, End: 34}}}
	pcs := map[int]domain.PositionConstraint{1: {Kind: domain.PositionLast}}
	inst, err := domain.NewInstance(15, 34, 1, panels, avail, nil, pcs, nil, 1)
	require.NoError(t, err)

	sched := scheduleFromStarts(inst, map[int]map[int]int{
		0: {0: 5, 1: 0}, // HR (position-constrained Last) actually starts first
	})
	sol := &domain.Solution{Schedule: sched, Summary: domain.Summary{OrderBreaks: 0}}
	v := services.NewVerifier()
	assert.Error(t, v.Verify(inst, sol))
}
