package services

import (
	"sort"

	"github.com/meridianhire/panelsched/internal/scheduling/domain"
)

// Verifier is the post-solve half of solution extraction: it independently
// re-checks every hard invariant the scheduling core enforces against a produced
// Solution. Any discrepancy is a fatal modeling bug, surfaced as a
// *domain.VerificationError, never silently tolerated.
type Verifier struct{}

// NewVerifier constructs a Verifier. It holds no state.
func NewVerifier() *Verifier { return &Verifier{} }

type interval struct {
	start, end int
	panel      int
	candidate  int
}

// Verify re-derives and checks every invariant from scratch against raw
// session data, never trusting anything the solver or extractor computed.
func (v *Verifier) Verify(inst *domain.Instance, sol *domain.Solution) error {
	if err := v.checkDayBoundsAndAvailability(inst, sol); err != nil {
		return err
	}
	if err := v.checkCandidateNoOverlap(inst, sol); err != nil {
		return err
	}
	if err := v.checkPanelCapacity(inst, sol); err != nil {
		return err
	}
	if err := v.checkConflictGroups(inst, sol); err != nil {
		return err
	}
	if err := v.checkGapAndOrdering(inst, sol); err != nil {
		return err
	}
	if err := v.checkPositionConstraints(inst, sol); err != nil {
		return err
	}
	return v.checkOrderBreakCount(inst, sol)
}

func (v *Verifier) checkDayBoundsAndAvailability(inst *domain.Instance, sol *domain.Solution) error {
	for c, sessions := range sol.Schedule {
		for _, s := range sessions {
			if s.StartSlot < 0 || s.EndSlot > inst.HorizonSlots {
				return domain.NewVerificationError("day_bounds", c, s.PanelName, "session falls outside the day window")
			}
			panelIdx := panelIndexByName(inst, s.PanelName)
			fits := false
			for _, w := range inst.Availability(panelIdx) {
				if s.StartSlot >= w.Start && s.EndSlot <= w.End {
					fits = true
					break
				}
			}
			if !fits {
				return domain.NewVerificationError("availability", c, s.PanelName, "session does not fit any availability window")
			}
		}
	}
	return nil
}

func (v *Verifier) checkCandidateNoOverlap(inst *domain.Instance, sol *domain.Solution) error {
	_ = inst
	for c, sessions := range sol.Schedule {
		sorted := sortedByStart(sessions)
		for i := 1; i < len(sorted); i++ {
			if sorted[i].start < sorted[i-1].end {
				return domain.NewVerificationError("candidate_no_overlap", c, "", "two of this candidate's sessions overlap")
			}
		}
	}
	return nil
}

func (v *Verifier) checkPanelCapacity(inst *domain.Instance, sol *domain.Solution) error {
	byPanel := make(map[int][]interval)
	for c, sessions := range sol.Schedule {
		for _, s := range sessions {
			panelIdx := panelIndexByName(inst, s.PanelName)
			if inst.IsUnlimited(panelIdx) {
				continue
			}
			byPanel[panelIdx] = append(byPanel[panelIdx], interval{start: s.StartSlot, end: s.EndSlot, panel: panelIdx, candidate: c})
		}
	}
	for panelIdx, ivs := range byPanel {
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
		for i := 1; i < len(ivs); i++ {
			if ivs[i].start < ivs[i-1].end {
				return domain.NewVerificationError("panel_capacity", ivs[i].candidate, inst.Panel(panelIdx).Name, "two candidates' sessions overlap on a capacity-1 panel")
			}
		}
	}
	return nil
}

func (v *Verifier) checkConflictGroups(inst *domain.Instance, sol *domain.Solution) error {
	for _, group := range inst.ConflictGroups() {
		members := make(map[int]bool, len(group))
		for _, p := range group {
			members[p] = true
		}
		var ivs []interval
		for c, sessions := range sol.Schedule {
			for _, s := range sessions {
				panelIdx := panelIndexByName(inst, s.PanelName)
				if members[panelIdx] {
					ivs = append(ivs, interval{start: s.StartSlot, end: s.EndSlot, panel: panelIdx, candidate: c})
				}
			}
		}
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
		for i := 1; i < len(ivs); i++ {
			if ivs[i].start < ivs[i-1].end {
				return domain.NewVerificationError("conflict_group", ivs[i].candidate, inst.Panel(ivs[i].panel).Name, "two sessions in the same conflict group overlap")
			}
		}
	}
	return nil
}

func (v *Verifier) checkGapAndOrdering(inst *domain.Instance, sol *domain.Solution) error {
	maxGapSlots := inst.MaxGapSlots()
	for c, sessions := range sol.Schedule {
		sorted := sortedByStart(sessions)
		for i := 1; i < len(sorted); i++ {
			prev, cur := sorted[i-1], sorted[i]
			if cur.start < prev.end {
				return domain.NewVerificationError("gap_ordering", c, "", "sessions are not in non-decreasing start order")
			}
			if cur.start-prev.end > maxGapSlots {
				return domain.NewVerificationError("gap_bound", c, "", "gap between consecutive sessions exceeds max_gap_slots")
			}
		}
	}
	return nil
}

func (v *Verifier) checkPositionConstraints(inst *domain.Instance, sol *domain.Solution) error {
	for c, sessions := range sol.Schedule {
		sorted := append([]domain.Session(nil), sessions...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartSlot < sorted[j].StartSlot })
		rank := make(map[int]int, len(sorted))
		for i, s := range sorted {
			rank[panelIndexByName(inst, s.PanelName)] = i
		}
		for panelIdx := 0; panelIdx < inst.NumPanels(); panelIdx++ {
			pc, ok := inst.PositionConstraint(panelIdx)
			if !ok {
				continue
			}
			want := -1
			switch pc.Kind {
			case domain.PositionFirst:
				want = 0
			case domain.PositionLast:
				want = inst.NumPanels() - 1
			case domain.PositionAbsolute:
				want = pc.Index
			}
			if rank[panelIdx] != want {
				return domain.NewVerificationError("position_constraint", c, inst.Panel(panelIdx).Name, "panel is not at its constrained chronological position")
			}
		}
	}
	return nil
}

func (v *Verifier) checkOrderBreakCount(inst *domain.Instance, sol *domain.Solution) error {
	order := inst.PreferredOrder()
	if len(order) < 2 {
		return nil
	}
	starts := make(map[int]map[int]int) // candidate -> panel -> start
	for c, sessions := range sol.Schedule {
		starts[c] = make(map[int]int, len(sessions))
		for _, s := range sessions {
			starts[c][panelIndexByName(inst, s.PanelName)] = s.StartSlot
		}
	}

	count := 0
	for c := range sol.Schedule {
		for i := 0; i+1 < len(order); i++ {
			if starts[c][order[i]] > starts[c][order[i+1]] {
				count++
			}
		}
	}
	if count != sol.Summary.OrderBreaks {
		return domain.NewVerificationError("order_break_count", -1, "", "recomputed order_breaks does not match the reported summary")
	}
	return nil
}

func panelIndexByName(inst *domain.Instance, name string) int {
	for i, p := range inst.Panels() {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func sortedByStart(sessions []domain.Session) []interval {
	out := make([]interval, len(sessions))
	for i, s := range sessions {
		out[i] = interval{start: s.StartSlot, end: s.EndSlot}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}
