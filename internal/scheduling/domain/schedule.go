package domain

import (
	"fmt"
	"time"
)

// Session is one concrete occurrence of a panel for one candidate, rendered
// in the wall-clock "HH:MM" strings callers expect.
type Session struct {
	PanelName string
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"

	StartSlot int
	EndSlot   int
}

// NewSession constructs a Session from slot indices relative to the day
// start, rendering "HH:MM" strings offset from the instance's start_time.
func NewSession(panelName string, startSlot, endSlot, slotMinutes, dayStartMinutes int) Session {
	return Session{
		PanelName: panelName,
		StartTime: formatMinutes(dayStartMinutes + startSlot*slotMinutes),
		EndTime:   formatMinutes(dayStartMinutes + endSlot*slotMinutes),
		StartSlot: startSlot,
		EndSlot:   endSlot,
	}
}

func formatMinutes(minutes int) string {
	hh := (minutes / 60) % 24
	mm := minutes % 60
	return fmt.Sprintf("%02d:%02d", hh, mm)
}

// Schedule maps each candidate index to their chronologically ordered sessions.
type Schedule map[int][]Session

// SolveStatus is the outcome reported for a single solve.
type SolveStatus string

const (
	StatusOptimal  SolveStatus = "OPTIMAL"
	StatusFeasible SolveStatus = "FEASIBLE"
)

// Summary reports the headline metrics of a produced schedule.
type Summary struct {
	Status         SolveStatus
	OrderBreaks    int
	DayEndTime     string // "HH:MM"
	MaxGapEnforced int    // minutes
}

// Stats carries solver diagnostics that sit outside the user-facing Summary.
type Stats struct {
	Elapsed       time.Duration
	Deterministic bool // true if produced with a fixed random_seed
}

// Solution bundles a produced schedule with its summary and solver stats.
// It is an immutable snapshot: once returned, nothing in the core mutates it.
type Solution struct {
	Schedule Schedule
	Summary  Summary
	Stats    Stats
}
