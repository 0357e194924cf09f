package domain

import "fmt"

// Instance is the canonical, immutable problem description the model
// builder consumes. It is produced once by the application layer's
// InstanceBuilder from a validated configuration and never mutated
// afterwards — every field is read-only by convention once NewInstance
// returns successfully.
type Instance struct {
	SlotMinutes   int
	HorizonSlots  int
	NumCandidates int

	// DayStartMinutes is the configuration's start_time, in minutes from
	// midnight. The constraint model never touches it — it exists purely
	// so the solution extractor can render "HH:MM" wall-clock times;
	// slot 0 of this Instance corresponds to this minute of the day.
	DayStartMinutes int

	panels []Panel
	avail  [][]SlotWindow // indexed by panel index, sorted, disjoint

	preferredOrder      []int // panel indices, partial sequence
	positionConstraints map[int]PositionConstraint
	conflictGroups      [][]int // each entry: >=2 distinct panel indices

	maxGapSlots int
	lunchIndex  int // -1 if there is no Lunch panel
}

// InstanceError reports a structural inconsistency discovered while
// building the canonical Instance — this should never escape a config that
// already passed validation; if it does, it names the specific internal
// invariant that broke.
type InstanceError struct {
	Invariant string
	Detail    string
}

func (e *InstanceError) Error() string {
	return fmt.Sprintf("instance builder: %s: %s", e.Invariant, e.Detail)
}

// NewInstance constructs and structurally validates an Instance. Callers
// (application/services.InstanceBuilder) are expected to have already
// resolved panel names to indices and slot-aligned every time value.
func NewInstance(
	slotMinutes, horizonSlots, numCandidates int,
	panels []Panel,
	avail [][]SlotWindow,
	preferredOrder []int,
	positionConstraints map[int]PositionConstraint,
	conflictGroups [][]int,
	maxGapSlots int,
) (*Instance, error) {
	if slotMinutes < 1 {
		return nil, &InstanceError{"slot_minutes", "must be >= 1"}
	}
	if horizonSlots <= 0 {
		return nil, &InstanceError{"horizon_slots", "day_end must be after day_start"}
	}
	if numCandidates < 1 {
		return nil, &InstanceError{"num_candidates", "must be >= 1"}
	}
	if len(panels) == 0 {
		return nil, &InstanceError{"panels", "must be non-empty"}
	}
	if len(avail) != len(panels) {
		return nil, &InstanceError{"avail", "must have one entry per panel"}
	}

	lunchIndex := -1
	for i, p := range panels {
		if p.DurationSlots < 1 {
			return nil, &InstanceError{"panel.duration_slots", fmt.Sprintf("panel %q has non-positive duration", p.Name)}
		}
		if p.DurationSlots > horizonSlots {
			return nil, &InstanceError{"panel.duration_slots", fmt.Sprintf("panel %q duration exceeds horizon", p.Name)}
		}
		if p.Unlimited {
			if lunchIndex != -1 {
				return nil, &InstanceError{"panel.unlimited", "at most one panel may have unlimited capacity (Lunch)"}
			}
			lunchIndex = i
		}
		if err := validateWindows(avail[i], horizonSlots); err != nil {
			return nil, &InstanceError{"avail", fmt.Sprintf("panel %q: %v", p.Name, err)}
		}
	}

	seenOrder := make(map[int]bool, len(preferredOrder))
	for _, idx := range preferredOrder {
		if idx < 0 || idx >= len(panels) {
			return nil, &InstanceError{"preferred_order", fmt.Sprintf("panel index %d out of range", idx)}
		}
		if seenOrder[idx] {
			return nil, &InstanceError{"preferred_order", "duplicate panel in order"}
		}
		seenOrder[idx] = true
	}

	for idx, pc := range positionConstraints {
		if idx < 0 || idx >= len(panels) {
			return nil, &InstanceError{"position_constraints", fmt.Sprintf("panel index %d out of range", idx)}
		}
		if pc.Kind == PositionAbsolute && (pc.Index < 0 || pc.Index >= len(panels)) {
			return nil, &InstanceError{"position_constraints", fmt.Sprintf("absolute position %d out of range for %d panels", pc.Index, len(panels))}
		}
	}

	for _, group := range conflictGroups {
		if len(group) < 2 {
			return nil, &InstanceError{"conflict_groups", "group must contain at least 2 panels"}
		}
		seen := make(map[int]bool, len(group))
		for _, idx := range group {
			if idx < 0 || idx >= len(panels) {
				return nil, &InstanceError{"conflict_groups", fmt.Sprintf("panel index %d out of range", idx)}
			}
			if seen[idx] {
				return nil, &InstanceError{"conflict_groups", "group contains duplicate panel"}
			}
			seen[idx] = true
		}
	}

	if maxGapSlots < 0 {
		return nil, &InstanceError{"max_gap_slots", "must be >= 0"}
	}

	return &Instance{
		SlotMinutes:         slotMinutes,
		HorizonSlots:        horizonSlots,
		NumCandidates:       numCandidates,
		panels:              append([]Panel(nil), panels...),
		avail:               copyAvail(avail),
		preferredOrder:      append([]int(nil), preferredOrder...),
		positionConstraints: copyPositionConstraints(positionConstraints),
		conflictGroups:      copyConflictGroups(conflictGroups),
		maxGapSlots:         maxGapSlots,
		lunchIndex:          lunchIndex,
	}, nil
}

func validateWindows(windows []SlotWindow, horizon int) error {
	if len(windows) == 0 {
		return fmt.Errorf("at least one availability window is required")
	}
	for i, w := range windows {
		if w.Start < 0 || w.End > horizon || w.End <= w.Start {
			return fmt.Errorf("window %d [%d,%d) out of bounds for horizon %d", i, w.Start, w.End, horizon)
		}
		if i > 0 && w.Start < windows[i-1].End {
			return fmt.Errorf("windows must be sorted and disjoint")
		}
	}
	return nil
}

func copyAvail(avail [][]SlotWindow) [][]SlotWindow {
	out := make([][]SlotWindow, len(avail))
	for i, ws := range avail {
		out[i] = append([]SlotWindow(nil), ws...)
	}
	return out
}

func copyPositionConstraints(in map[int]PositionConstraint) map[int]PositionConstraint {
	out := make(map[int]PositionConstraint, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyConflictGroups(in [][]int) [][]int {
	out := make([][]int, len(in))
	for i, g := range in {
		out[i] = append([]int(nil), g...)
	}
	return out
}

// Panels returns the panel catalog in declaration order.
func (inst *Instance) Panels() []Panel { return append([]Panel(nil), inst.panels...) }

// Panel returns the panel at index p.
func (inst *Instance) Panel(p int) Panel { return inst.panels[p] }

// NumPanels returns the number of panels.
func (inst *Instance) NumPanels() int { return len(inst.panels) }

// Availability returns the ordered, disjoint availability windows for panel p.
func (inst *Instance) Availability(p int) []SlotWindow {
	return append([]SlotWindow(nil), inst.avail[p]...)
}

// PreferredOrder returns the (partial) preferred panel ordering, as panel indices.
func (inst *Instance) PreferredOrder() []int { return append([]int(nil), inst.preferredOrder...) }

// PositionConstraint returns the position constraint for panel p, if any.
func (inst *Instance) PositionConstraint(p int) (PositionConstraint, bool) {
	pc, ok := inst.positionConstraints[p]
	return pc, ok
}

// ConflictGroups returns the configured conflict groups, each a set of panel indices.
func (inst *Instance) ConflictGroups() [][]int { return copyConflictGroups(inst.conflictGroups) }

// MaxGapSlots returns the hard cap, in slots, on idle time between a
// candidate's consecutive sessions.
func (inst *Instance) MaxGapSlots() int { return inst.maxGapSlots }

// LunchIndex returns the index of the unlimited-capacity panel, or -1 if none exists.
func (inst *Instance) LunchIndex() int { return inst.lunchIndex }

// IsUnlimited reports whether panel p has unlimited capacity.
func (inst *Instance) IsUnlimited(p int) bool { return inst.panels[p].Unlimited }
