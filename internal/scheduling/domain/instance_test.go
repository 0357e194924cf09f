package domain_test

import (
	"testing"

	"github.com/meridianhire/panelsched/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPanelFixture() ([]domain.Panel, [][]domain.SlotWindow) {
	panels := []domain.Panel{
		{Name: "Technical", DurationSlots: 3}, // 45min at 15min slots
		{Name: "HR", DurationSlots: 2},         // 30min
	}
	avail := [][]domain.SlotWindow{
		{{Start: 2, End: 34}}, // 09:00-17:00 relative to 08:30 start, in 15-min slots
		{{Start: 2, End: 34}},
	}
	return panels, avail
}

func TestNewInstanceAcceptsCanonicalFixture(t *testing.T) {
	panels, avail := twoPanelFixture()
	inst, err := domain.NewInstance(15, 34, 2, panels, avail, []int{0, 1}, nil, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, inst.NumPanels())
	assert.Equal(t, -1, inst.LunchIndex())
}

func TestNewInstanceRejectsZeroCandidates(t *testing.T) {
	panels, avail := twoPanelFixture()
	_, err := domain.NewInstance(15, 34, 0, panels, avail, nil, nil, nil, 1)
	assert.Error(t, err)
}

func TestNewInstanceRejectsDurationExceedingHorizon(t *testing.T) {
	panels := []domain.Panel{{Name: "Technical", DurationSlots: 100}}
	avail := [][]domain.SlotWindow{{{Start: 0, End: 34}}}
	_, err := domain.NewInstance(15, 34, 1, panels, avail, nil, nil, nil, 1)
	assert.Error(t, err)
}

func TestNewInstanceRejectsTwoUnlimitedPanels(t *testing.T) {
	panels := []domain.Panel{
		{Name: "Lunch", DurationSlots: 2, Unlimited: true},
		{Name: "Snack", DurationSlots: 2, Unlimited: true},
	}
	avail := [][]domain.SlotWindow{{{Start: 0, End: 34}}, {{Start: 0, End: 34}}}
	_, err := domain.NewInstance(15, 34, 1, panels, avail, nil, nil, nil, 1)
	assert.Error(t, err)
}

func TestNewInstanceRejectsOutOfRangePreferredOrder(t *testing.T) {
	panels, avail := twoPanelFixture()
	_, err := domain.NewInstance(15, 34, 1, panels, avail, []int{5}, nil, nil, 1)
	assert.Error(t, err)
}

func TestNewInstanceRejectsDuplicatePreferredOrder(t *testing.T) {
	panels, avail := twoPanelFixture()
	_, err := domain.NewInstance(15, 34, 1, panels, avail, []int{0, 0}, nil, nil, 1)
	assert.Error(t, err)
}

func TestNewInstanceRejectsUnsortedAvailability(t *testing.T) {
	panels := []domain.Panel{{Name: "Technical", DurationSlots: 2}}
	avail := [][]domain.SlotWindow{{{Start: 10, End: 20}, {Start: 5, End: 8}}}
	_, err := domain.NewInstance(15, 34, 1, panels, avail, nil, nil, nil, 1)
	assert.Error(t, err)
}

func TestNewInstanceRejectsConflictGroupWithOnePanel(t *testing.T) {
	panels, avail := twoPanelFixture()
	_, err := domain.NewInstance(15, 34, 1, panels, avail, nil, nil, [][]int{{0}}, 1)
	assert.Error(t, err)
}

func TestNewInstanceAcceptsPositionConstraints(t *testing.T) {
	panels, avail := twoPanelFixture()
	pcs := map[int]domain.PositionConstraint{1: {Kind: domain.PositionLast}}
	inst, err := domain.NewInstance(15, 34, 1, panels, avail, nil, pcs, nil, 1)
	require.NoError(t, err)
	pc, ok := inst.PositionConstraint(1)
	require.True(t, ok)
	assert.Equal(t, domain.PositionLast, pc.Kind)
}
