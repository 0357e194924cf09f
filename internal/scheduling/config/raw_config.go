// Package config parses and validates the declarative scheduling
// configuration. It rejects malformed or semantically invalid input with
// a precise ValidationError before the solver is ever invoked, failing
// fast rather than letting a bad configuration reach the solver.
//
// The input document arrives as a generic map[string]any — a dynamic
// configuration dict with optional keys — callers typically produce it by
// unmarshalling YAML via gopkg.in/yaml.v3, but this package never touches
// the filesystem itself; YAML file I/O is an external collaborator's
// concern.
package config

import (
	"sort"

	"github.com/meridianhire/panelsched/internal/scheduling/timeconv"
	"gopkg.in/yaml.v3"
)

// recognizedKeys enumerates every key this format assigns meaning to.
// Anything else in the document is rejected.
var recognizedKeys = map[string]bool{
	"num_candidates":         true,
	"panels":                 true,
	"order":                  true,
	"availabilities":         true,
	"start_time":             true,
	"end_time":               true,
	"slot_duration_minutes":  true,
	"max_gap_minutes":        true,
	"position_constraints":   true,
	"panel_conflicts":        true,
}

// PositionKind mirrors domain.PositionKind without importing the domain
// package, keeping the validator independent of the instance model it feeds.
type PositionKind int

const (
	PositionFirst PositionKind = iota
	PositionLast
	PositionAbsolute
)

// PositionSpec is a validated, panel-name-keyed position constraint.
type PositionSpec struct {
	Kind  PositionKind
	Index int // only meaningful when Kind == PositionAbsolute
}

// PanelSpec is a validated panel declaration.
type PanelSpec struct {
	Name            string
	DurationMinutes int
}

// NormalizedConfig is the validator's output: a structurally and semantically valid
// configuration, still expressed in minutes and panel names (slot indices
// and panel indices are assigned by the problem instance builder).
type NormalizedConfig struct {
	NumCandidates int

	// Panels is sorted by name for determinism — the input map has no
	// inherent order, and index assignment must be stable across runs.
	Panels []PanelSpec

	Order []string // preferred order, a partial permutation of panel names

	// Availabilities maps panel name to its ordered, disjoint windows in
	// minutes-from-midnight, already validated against [start_time, end_time).
	Availabilities map[string][]timeconv.Window

	StartMinutes int
	EndMinutes   int

	SlotDurationMinutes int
	MaxGapMinutes       int

	PositionConstraints map[string]PositionSpec
	PanelConflicts      [][]string
}

// ParseYAML decodes a YAML document into the generic map Validate expects.
// This is the one place the scheduling core touches a serialization format
// directly — the result is handed to Validate before anything else happens.
func ParseYAML(doc []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, NewValidationError("<document>", "not valid YAML", err)
	}
	return raw, nil
}

func sortedPanelNames(panels map[string]PanelSpec) []string {
	names := make([]string, 0, len(panels))
	for n := range panels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
