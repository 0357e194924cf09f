// Package services holds the application-layer orchestrators of the
// scheduling core: the problem instance builder, model builder,
// solver driver, solution extractor & verifier, and diversity
// controller. All but the diversity controller are stateless collaborators
// over the domain package; the DiversityController keeps the cuts of the
// current solve_multi loop until Reset, and each SolverDriver owns one.
package services

import (
	"fmt"
	"sort"

	"github.com/meridianhire/panelsched/internal/scheduling/config"
	"github.com/meridianhire/panelsched/internal/scheduling/domain"
	"github.com/meridianhire/panelsched/internal/scheduling/timeconv"
)

// lunchPanelName is the distinguished panel name granted unlimited
// capacity — every other panel is capacity-1.
const lunchPanelName = "Lunch"

// InstanceBuilder converts a validated NormalizedConfig
// (minutes, panel names) into a canonical domain.Instance (slots, panel
// indices). This is the one seam in the pipeline where minutes become slots
// and names become indices — everything downstream is index/slot only.
type InstanceBuilder struct{}

// NewInstanceBuilder constructs an InstanceBuilder. It holds no state; the
// constructor exists so callers can wire it the same way as the other
// application services.
func NewInstanceBuilder() *InstanceBuilder { return &InstanceBuilder{} }

// Build performs the minutes-to-slots and name-to-index translation and
// delegates structural validation to domain.NewInstance.
func (b *InstanceBuilder) Build(cfg *config.NormalizedConfig) (*domain.Instance, error) {
	horizonSlots, err := timeconv.ToSlots(cfg.EndMinutes-cfg.StartMinutes, cfg.SlotDurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("instance builder: day window does not align to the slot grid: %w", err)
	}

	names := make([]string, len(cfg.Panels))
	for i, p := range cfg.Panels {
		names[i] = p.Name
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	panels := make([]domain.Panel, len(cfg.Panels))
	avail := make([][]domain.SlotWindow, len(cfg.Panels))
	for i, p := range cfg.Panels {
		durSlots, err := timeconv.ToSlots(p.DurationMinutes, cfg.SlotDurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("instance builder: panel %q duration does not align to the slot grid: %w", p.Name, err)
		}
		panels[i] = domain.Panel{
			Name:          p.Name,
			DurationSlots: durSlots,
			Unlimited:     p.Name == lunchPanelName,
		}

		windows, ok := cfg.Availabilities[p.Name]
		if !ok {
			return nil, fmt.Errorf("instance builder: panel %q has no availability", p.Name)
		}
		slotWindows := make([]domain.SlotWindow, len(windows))
		for j, w := range windows {
			startSlot, err := timeconv.ToSlots(w.Start-cfg.StartMinutes, cfg.SlotDurationMinutes)
			if err != nil {
				return nil, fmt.Errorf("instance builder: panel %q window start does not align to the slot grid: %w", p.Name, err)
			}
			endSlot, err := timeconv.ToSlots(w.End-cfg.StartMinutes, cfg.SlotDurationMinutes)
			if err != nil {
				return nil, fmt.Errorf("instance builder: panel %q window end does not align to the slot grid: %w", p.Name, err)
			}
			slotWindows[j] = domain.SlotWindow{Start: startSlot, End: endSlot}
		}
		avail[i] = slotWindows
	}

	preferredOrder := make([]int, len(cfg.Order))
	for i, name := range cfg.Order {
		preferredOrder[i] = index[name]
	}

	var positionConstraints map[int]domain.PositionConstraint
	if len(cfg.PositionConstraints) > 0 {
		positionConstraints = make(map[int]domain.PositionConstraint, len(cfg.PositionConstraints))
		for name, pc := range cfg.PositionConstraints {
			positionConstraints[index[name]] = domain.PositionConstraint{
				Kind:  domain.PositionKind(pc.Kind),
				Index: pc.Index,
			}
		}
	}

	var conflictGroups [][]int
	if len(cfg.PanelConflicts) > 0 {
		conflictGroups = make([][]int, len(cfg.PanelConflicts))
		for i, group := range cfg.PanelConflicts {
			idxs := make([]int, len(group))
			for j, name := range group {
				idxs[j] = index[name]
			}
			sort.Ints(idxs)
			conflictGroups[i] = idxs
		}
	}

	maxGapSlots := timeconv.CeilSlots(cfg.MaxGapMinutes, cfg.SlotDurationMinutes)

	inst, err := domain.NewInstance(
		cfg.SlotDurationMinutes,
		horizonSlots,
		cfg.NumCandidates,
		panels,
		avail,
		preferredOrder,
		positionConstraints,
		conflictGroups,
		maxGapSlots,
	)
	if err != nil {
		return nil, err
	}
	inst.DayStartMinutes = cfg.StartMinutes
	return inst, nil
}
