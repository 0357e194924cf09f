package domain

// Panel is a single interview activity — Technical, HR, Lunch — with a
// fixed duration. Every candidate attends every panel exactly once.
// Capacity is 1 (one interviewer/room at a time) for every panel except the
// distinguished Lunch panel, whose capacity is unlimited (see Instance.LunchIndex).
type Panel struct {
	Name          string
	DurationSlots int
	Unlimited     bool
}

// SlotWindow is a half-open interval [Start, End) expressed in slot indices.
type SlotWindow struct {
	Start int
	End   int
}

// Len returns the number of slots the window spans.
func (w SlotWindow) Len() int { return w.End - w.Start }

// PositionKind enumerates the three shapes a position constraint can take.
type PositionKind int

const (
	// PositionFirst pins the panel to have no predecessor in a candidate's sequence.
	PositionFirst PositionKind = iota
	// PositionLast pins the panel to have no successor.
	PositionLast
	// PositionAbsolute pins the panel to a 0-based chronological rank.
	PositionAbsolute
)

// PositionConstraint hard-constrains a panel to a specific chronological
// position in every candidate's sequence. Index is only meaningful when
// Kind is PositionAbsolute.
type PositionConstraint struct {
	Kind  PositionKind
	Index int
}
