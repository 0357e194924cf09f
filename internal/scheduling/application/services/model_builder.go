package services

import (
	"github.com/meridianhire/panelsched/internal/scheduling/domain"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
)

// objectiveWeight must exceed horizon_slots so that a single
// preferred-order break always outweighs any possible makespan reduction,
// giving the weighted composite strict lexicographic priority over the two
// objectives it combines.
func objectiveWeight(horizonSlots int) int64 { return int64(horizonSlots) + 1 }

// BuiltModel is everything the solver driver and solution extractor
// need after the model builder has wired an Instance into a
// cpsolver.Model: the decision-variable handles addressed by candidate and
// panel index, plus the objective's two components for diagnostics.
type BuiltModel struct {
	Instance *domain.Instance

	// Start and End are indexed [candidate][panel].
	Start [][]cpsolver.IntVar
	End   [][]cpsolver.IntVar

	// Break holds one boolean per candidate per consecutive pair in the
	// preferred order, aligned with consecutive entries of Instance.PreferredOrder().
	Break [][]cpsolver.BoolVar

	Makespan cpsolver.IntVar
}

// ModelBuilder translates a domain.Instance into CP
// variables and constraints over a cpsolver.Model.
type ModelBuilder struct{}

// NewModelBuilder constructs a ModelBuilder. It holds no state.
func NewModelBuilder() *ModelBuilder { return &ModelBuilder{} }

// Build wires every global invariant the scheduling core enforces into
// model, and returns the variable handles the rest of the pipeline
// needs to read the solution back out.
func (mb *ModelBuilder) Build(inst *domain.Instance, model cpsolver.Model) *BuiltModel {
	n := inst.NumCandidates
	p := inst.NumPanels()

	built := &BuiltModel{
		Instance: inst,
		Start:    make([][]cpsolver.IntVar, n),
		End:      make([][]cpsolver.IntVar, n),
	}

	intervals := make([][]cpsolver.IntervalVar, n)
	for c := 0; c < n; c++ {
		built.Start[c] = make([]cpsolver.IntVar, p)
		built.End[c] = make([]cpsolver.IntVar, p)
		intervals[c] = make([]cpsolver.IntervalVar, p)
		for panelIdx := 0; panelIdx < p; panelIdx++ {
			mb.buildSession(inst, model, built, c, panelIdx, intervals)
		}
		// Invariant 2: a candidate's own sessions never overlap.
		model.AddNoOverlap(intervals[c]...)
	}

	mb.buildPanelCapacity(inst, model, intervals)
	mb.buildConflictGroups(inst, model, intervals)
	mb.buildGapAndPosition(inst, model, built)
	mb.buildObjective(inst, model, built)

	return built
}

func (mb *ModelBuilder) buildSession(inst *domain.Instance, model cpsolver.Model, built *BuiltModel, c, panelIdx int, intervals [][]cpsolver.IntervalVar) {
	panel := inst.Panel(panelIdx)
	horizon := int64(inst.HorizonSlots)
	dur := int64(panel.DurationSlots)

	start := model.NewIntVar(cpsolver.Domain{Min: 0, Max: horizon - dur})
	end := model.NewIntVar(cpsolver.Domain{Min: dur, Max: horizon})
	durConst := model.NewConstant(dur)
	model.AddLinearEquality([]cpsolver.LinearTerm{{Var: end, Coeff: 1}, {Var: start, Coeff: -1}, {Var: durConst, Coeff: -1}}, 0)

	built.Start[c][panelIdx] = start
	built.End[c][panelIdx] = end
	intervals[c][panelIdx] = model.NewInterval(start, durConst, end)

	mb.buildAvailability(inst, model, panelIdx, start, end)
}

// buildAvailability encodes ∃ w ∈ avail[p]: start ≥ w.lo ∧ end ≤ w.hi via one
// in_window boolean per window, exactly one of which must hold.
func (mb *ModelBuilder) buildAvailability(inst *domain.Instance, model cpsolver.Model, panelIdx int, start, end cpsolver.IntVar) {
	windows := inst.Availability(panelIdx)
	inWindow := make([]cpsolver.BoolVar, len(windows))
	for i, w := range windows {
		lit := model.NewBoolVar()
		inWindow[i] = lit

		lo := model.NewConstant(int64(w.Start))
		hi := model.NewConstant(int64(w.End))
		model.OnlyEnforceIf(model.AddLessOrEqual(lo, start), lit)
		model.OnlyEnforceIf(model.AddLessOrEqual(end, hi), lit)
	}
	terms := make([]cpsolver.LinearTerm, len(inWindow))
	for i, lit := range inWindow {
		terms[i] = cpsolver.LinearTerm{Var: model.AsIntVar(lit), Coeff: 1}
	}
	model.AddLinearEquality(terms, -1)
}

// buildPanelCapacity enforces invariant 3: every capacity-1 panel's N
// sessions are pairwise non-overlapping. Lunch (Instance.LunchIndex) is exempt.
func (mb *ModelBuilder) buildPanelCapacity(inst *domain.Instance, model cpsolver.Model, intervals [][]cpsolver.IntervalVar) {
	for panelIdx := 0; panelIdx < inst.NumPanels(); panelIdx++ {
		if inst.IsUnlimited(panelIdx) {
			continue
		}
		perPanel := make([]cpsolver.IntervalVar, inst.NumCandidates)
		for c := 0; c < inst.NumCandidates; c++ {
			perPanel[c] = intervals[c][panelIdx]
		}
		model.AddNoOverlap(perPanel...)
	}
}

// buildConflictGroups enforces invariant 4: across every panel in a conflict
// group and every candidate, sessions never overlap.
func (mb *ModelBuilder) buildConflictGroups(inst *domain.Instance, model cpsolver.Model, intervals [][]cpsolver.IntervalVar) {
	for _, group := range inst.ConflictGroups() {
		var grouped []cpsolver.IntervalVar
		for _, panelIdx := range group {
			for c := 0; c < inst.NumCandidates; c++ {
				grouped = append(grouped, intervals[c][panelIdx])
			}
		}
		model.AddNoOverlap(grouped...)
	}
}

// buildGapAndPosition encodes the "follows" immediate-successor relation
// the Hamiltonian-path topology, the hard gap bound on
// adjacent sessions, and the position constraints derived from the
// resulting per-candidate chronological rank.
func (mb *ModelBuilder) buildGapAndPosition(inst *domain.Instance, model cpsolver.Model, built *BuiltModel) {
	p := inst.NumPanels()
	maxGap := int64(inst.MaxGapSlots())

	for c := 0; c < inst.NumCandidates; c++ {
		follows := make([][]cpsolver.BoolVar, p)
		for a := 0; a < p; a++ {
			follows[a] = make([]cpsolver.BoolVar, p)
			for b := 0; b < p; b++ {
				if a == b {
					continue
				}
				follows[a][b] = model.NewBoolVar()
			}
		}

		// Topology: at most one predecessor per panel, at most one successor.
		for b := 0; b < p; b++ {
			terms := predecessorTerms(model, follows, b, p)
			model.AddLinearLessOrEqual(terms, -1)
		}
		for a := 0; a < p; a++ {
			terms := successorTerms(model, follows, a, p)
			model.AddLinearLessOrEqual(terms, -1)
		}

		// Exactly P-1 edges: the relation forms a single Hamiltonian path.
		var allTerms []cpsolver.LinearTerm
		for a := 0; a < p; a++ {
			for b := 0; b < p; b++ {
				if a == b {
					continue
				}
				allTerms = append(allTerms, cpsolver.LinearTerm{Var: model.AsIntVar(follows[a][b]), Coeff: 1})
			}
		}
		model.AddLinearEquality(allTerms, -int64(p-1))

		// Ordering and gap bound on every chosen adjacency.
		for a := 0; a < p; a++ {
			for b := 0; b < p; b++ {
				if a == b {
					continue
				}
				lit := follows[a][b]
				ordering := model.AddLessOrEqual(built.End[c][a], built.Start[c][b])
				model.OnlyEnforceIf(ordering, lit)

				gap := model.AddLinearLessOrEqual([]cpsolver.LinearTerm{
					{Var: built.Start[c][b], Coeff: 1},
					{Var: built.End[c][a], Coeff: -1},
				}, -maxGap)
				model.OnlyEnforceIf(gap, lit)
			}
		}

		pos := make([]cpsolver.IntVar, p)
		for panelIdx := 0; panelIdx < p; panelIdx++ {
			pos[panelIdx] = model.NewIntVar(cpsolver.Domain{Min: 0, Max: int64(p - 1)})
		}
		for a := 0; a < p; a++ {
			for b := 0; b < p; b++ {
				if a == b {
					continue
				}
				chain := model.AddLinearEquality([]cpsolver.LinearTerm{
					{Var: pos[b], Coeff: 1},
					{Var: pos[a], Coeff: -1},
				}, -1)
				model.OnlyEnforceIf(chain, follows[a][b])
			}
		}

		zero := model.NewConstant(0)
		last := model.NewConstant(int64(p - 1))
		for panelIdx := 0; panelIdx < p; panelIdx++ {
			hasPred := mb.channelHasPredecessor(model, follows, panelIdx, p)
			model.OnlyEnforceIf(model.AddEquality(pos[panelIdx], zero), hasPred.Not())

			pc, ok := inst.PositionConstraint(panelIdx)
			if !ok {
				continue
			}
			switch pc.Kind {
			case domain.PositionFirst:
				model.AddEquality(pos[panelIdx], zero)
			case domain.PositionLast:
				model.AddEquality(pos[panelIdx], last)
			case domain.PositionAbsolute:
				model.AddEquality(pos[panelIdx], model.NewConstant(int64(pc.Index)))
			}
		}
	}
}

// channelHasPredecessor links a boolean to "panel has an incoming follows
// edge", the way the pack's ranking sample channels precedence booleans:
// each edge implies the disjunction, and the disjunction implies one of the
// edges (rankTasks in the ranking_sample_sat.go reference).
func (mb *ModelBuilder) channelHasPredecessor(model cpsolver.Model, follows [][]cpsolver.BoolVar, b, p int) cpsolver.BoolVar {
	hasPred := model.NewBoolVar()
	orLits := make([]cpsolver.BoolVar, 0, p)
	for a := 0; a < p; a++ {
		if a == b {
			continue
		}
		model.AddImplication(follows[a][b], hasPred)
		orLits = append(orLits, follows[a][b])
	}
	orLits = append(orLits, hasPred.Not())
	model.AddBoolOr(orLits...)
	return hasPred
}

func predecessorTerms(model cpsolver.Model, follows [][]cpsolver.BoolVar, b, p int) []cpsolver.LinearTerm {
	var terms []cpsolver.LinearTerm
	for a := 0; a < p; a++ {
		if a == b {
			continue
		}
		terms = append(terms, cpsolver.LinearTerm{Var: model.AsIntVar(follows[a][b]), Coeff: 1})
	}
	return terms
}

func successorTerms(model cpsolver.Model, follows [][]cpsolver.BoolVar, a, p int) []cpsolver.LinearTerm {
	var terms []cpsolver.LinearTerm
	for b := 0; b < p; b++ {
		if a == b {
			continue
		}
		terms = append(terms, cpsolver.LinearTerm{Var: model.AsIntVar(follows[a][b]), Coeff: 1})
	}
	return terms
}

// buildObjective wires the hierarchical objective as a single
// weighted composite W·∑break + makespan.
func (mb *ModelBuilder) buildObjective(inst *domain.Instance, model cpsolver.Model, built *BuiltModel) {
	order := inst.PreferredOrder()
	n := inst.NumCandidates

	built.Break = make([][]cpsolver.BoolVar, n)
	for c := 0; c < n; c++ {
		built.Break[c] = make([]cpsolver.BoolVar, 0, max(0, len(order)-1))
	}

	makespan := model.NewIntVar(cpsolver.Domain{Min: 0, Max: int64(inst.HorizonSlots)})
	for c := 0; c < n; c++ {
		for panelIdx := 0; panelIdx < inst.NumPanels(); panelIdx++ {
			model.AddLessOrEqual(built.End[c][panelIdx], makespan)
		}
	}
	built.Makespan = makespan

	var objective []cpsolver.LinearTerm
	objective = append(objective, cpsolver.LinearTerm{Var: makespan, Coeff: 1})

	w := objectiveWeight(inst.HorizonSlots)
	for i := 0; i+1 < len(order); i++ {
		oi, oi1 := order[i], order[i+1]
		for candidate := 0; candidate < n; candidate++ {
			brk := model.NewBoolVar()
			built.Break[candidate] = append(built.Break[candidate], brk)

			notBroken := model.AddLessOrEqual(built.Start[candidate][oi], built.Start[candidate][oi1])
			model.OnlyEnforceIf(notBroken, brk.Not())

			broken := model.AddLessThan(built.Start[candidate][oi1], built.Start[candidate][oi])
			model.OnlyEnforceIf(broken, brk)

			objective = append(objective, cpsolver.LinearTerm{Var: model.AsIntVar(brk), Coeff: w})
		}
	}

	model.Minimize(objective)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
