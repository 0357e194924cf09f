package services_test

import (
	"testing"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/config"
	"github.com/meridianhire/panelsched/internal/scheduling/timeconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalNormalizedConfig() *config.NormalizedConfig {
	return &config.NormalizedConfig{
		NumCandidates: 2,
		Panels: []config.PanelSpec{
			{Name: "HR", DurationMinutes: 30},
			{Name: "Technical", DurationMinutes: 45},
		},
		Order: []string{"Technical", "HR"},
		Availabilities: map[string][]timeconv.Window{
			"HR":        {{Start: 540, End: 1020}},
			"Technical": {{Start: 540, End: 1020}},
		},
		StartMinutes:        510,
		EndMinutes:          1020,
		SlotDurationMinutes: 15,
		MaxGapMinutes:       15,
	}
}

func TestInstanceBuilderBuildsCanonicalInstance(t *testing.T) {
	b := services.NewInstanceBuilder()
	inst, err := b.Build(canonicalNormalizedConfig())
	require.NoError(t, err)
	assert.Equal(t, 15, inst.SlotMinutes)
	assert.Equal(t, 34, inst.HorizonSlots)
	assert.Equal(t, 2, inst.NumCandidates)
	assert.Equal(t, 2, inst.NumPanels())
	assert.Equal(t, -1, inst.LunchIndex())
}

func TestInstanceBuilderMarksLunchUnlimited(t *testing.T) {
	cfg := canonicalNormalizedConfig()
	cfg.Panels = append(cfg.Panels, config.PanelSpec{Name: "Lunch", DurationMinutes: 30})
	cfg.Availabilities["Lunch"] = []timeconv.Window{{Start: 510, End: 1020}}

	b := services.NewInstanceBuilder()
	inst, err := b.Build(cfg)
	require.NoError(t, err)
	lunchIdx := inst.LunchIndex()
	require.NotEqual(t, -1, lunchIdx)
	assert.True(t, inst.IsUnlimited(lunchIdx))
}

func TestInstanceBuilderRejectsMisalignedWindow(t *testing.T) {
	cfg := canonicalNormalizedConfig()
	cfg.Availabilities["HR"] = []timeconv.Window{{Start: 541, End: 1020}}

	b := services.NewInstanceBuilder()
	_, err := b.Build(cfg)
	assert.Error(t, err)
}

func TestInstanceBuilderTranslatesPreferredOrderToIndices(t *testing.T) {
	b := services.NewInstanceBuilder()
	inst, err := b.Build(canonicalNormalizedConfig())
	require.NoError(t, err)

	order := inst.PreferredOrder()
	require.Len(t, order, 2)
	assert.Equal(t, "Technical", inst.Panel(order[0]).Name)
	assert.Equal(t, "HR", inst.Panel(order[1]).Name)
}
