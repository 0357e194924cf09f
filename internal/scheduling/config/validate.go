package config

import (
	"fmt"

	"github.com/meridianhire/panelsched/internal/scheduling/timeconv"
)

const (
	defaultStartTime   = "08:30"
	defaultEndTime     = "17:00"
	defaultSlotMinutes = 15
	defaultMaxGap      = 15
)

// Validate performs every structural, referential, and semantic check spec
// §4.2 names, in the order a coordinator would most usefully see them
// reported, and returns the first failure as a *ValidationError. On
// success it returns a NormalizedConfig ready for the Problem Instance
// Builder.
func Validate(doc map[string]any) (*NormalizedConfig, error) {
	for key := range doc {
		if !recognizedKeys[key] {
			return nil, NewValidationError(key, "unrecognized configuration key", nil)
		}
	}

	numCandidates, err := validateNumCandidates(doc)
	if err != nil {
		return nil, err
	}

	startMinutes, endMinutes, err := validateWindowBounds(doc)
	if err != nil {
		return nil, err
	}

	slotMinutes, err := validateSlotDuration(doc)
	if err != nil {
		return nil, err
	}

	maxGapMinutes, err := validateMaxGap(doc)
	if err != nil {
		return nil, err
	}

	if (endMinutes-startMinutes)%slotMinutes != 0 {
		return nil, NewValidationError("end_time", "day window must align to the slot grid", nil)
	}

	panels, err := validatePanels(doc, slotMinutes)
	if err != nil {
		return nil, err
	}
	panelNames := sortedPanelNames(panels)
	panelSet := make(map[string]bool, len(panelNames))
	for _, n := range panelNames {
		panelSet[n] = true
	}

	order, err := validateOrder(doc, panelSet)
	if err != nil {
		return nil, err
	}

	avail, err := validateAvailabilities(doc, panelSet, startMinutes, endMinutes, slotMinutes)
	if err != nil {
		return nil, err
	}
	for name := range panelSet {
		if _, ok := avail[name]; !ok {
			return nil, NewValidationError("availabilities", fmt.Sprintf("panel %q has no availability windows", name), nil)
		}
	}

	positionConstraints, err := validatePositionConstraints(doc, panelSet, len(panelNames))
	if err != nil {
		return nil, err
	}

	panelConflicts, err := validatePanelConflicts(doc, panelSet)
	if err != nil {
		return nil, err
	}

	panelList := make([]PanelSpec, 0, len(panels))
	for _, name := range panelNames {
		panelList = append(panelList, panels[name])
	}

	return &NormalizedConfig{
		NumCandidates:       numCandidates,
		Panels:              panelList,
		Order:               order,
		Availabilities:      avail,
		StartMinutes:        startMinutes,
		EndMinutes:          endMinutes,
		SlotDurationMinutes: slotMinutes,
		MaxGapMinutes:       maxGapMinutes,
		PositionConstraints: positionConstraints,
		PanelConflicts:      panelConflicts,
	}, nil
}

func validateNumCandidates(doc map[string]any) (int, error) {
	v, ok := doc["num_candidates"]
	if !ok {
		return 0, NewValidationError("num_candidates", "required field is missing", nil)
	}
	n, ok := asInt(v)
	if !ok || n < 1 {
		return 0, NewValidationError("num_candidates", "must be an integer >= 1", nil)
	}
	return n, nil
}

func validateWindowBounds(doc map[string]any) (int, int, error) {
	startStr := defaultStartTime
	if v, ok := doc["start_time"]; ok {
		s, ok := v.(string)
		if !ok {
			return 0, 0, NewValidationError("start_time", "must be a string", nil)
		}
		startStr = s
	}
	endStr := defaultEndTime
	if v, ok := doc["end_time"]; ok {
		s, ok := v.(string)
		if !ok {
			return 0, 0, NewValidationError("end_time", "must be a string", nil)
		}
		endStr = s
	}

	start, err := timeconv.ParseTime(startStr)
	if err != nil {
		return 0, 0, NewValidationError("start_time", "not a valid HH:MM time", err)
	}
	end, err := timeconv.ParseTime(endStr)
	if err != nil {
		return 0, 0, NewValidationError("end_time", "not a valid HH:MM time", err)
	}
	if end <= start {
		return 0, 0, NewValidationError("end_time", "must be after start_time", nil)
	}
	return start, end, nil
}

func validateSlotDuration(doc map[string]any) (int, error) {
	if v, ok := doc["slot_duration_minutes"]; ok {
		n, ok := asInt(v)
		if !ok || n < 1 {
			return 0, NewValidationError("slot_duration_minutes", "must be an integer >= 1", nil)
		}
		return n, nil
	}
	return defaultSlotMinutes, nil
}

func validateMaxGap(doc map[string]any) (int, error) {
	if v, ok := doc["max_gap_minutes"]; ok {
		n, ok := asInt(v)
		if !ok || n < 0 {
			return 0, NewValidationError("max_gap_minutes", "must be an integer >= 0", nil)
		}
		return n, nil
	}
	return defaultMaxGap, nil
}

func validatePanels(doc map[string]any, slotMinutes int) (map[string]PanelSpec, error) {
	v, ok := doc["panels"]
	if !ok {
		return nil, NewValidationError("panels", "required field is missing", nil)
	}
	raw, ok := asMap(v)
	if !ok || len(raw) == 0 {
		return nil, NewValidationError("panels", "must be a non-empty mapping of name to duration", nil)
	}
	out := make(map[string]PanelSpec, len(raw))
	for name, durVal := range raw {
		minutes, err := timeconv.ParseDuration(normalizeScalar(durVal))
		if err != nil {
			return nil, NewValidationError("panels."+name, "invalid duration", err)
		}
		if minutes%slotMinutes != 0 {
			return nil, NewValidationError("panels."+name, "duration must align to the slot grid", nil)
		}
		out[name] = PanelSpec{Name: name, DurationMinutes: minutes}
	}
	return out, nil
}

func validateOrder(doc map[string]any, panelSet map[string]bool) ([]string, error) {
	v, ok := doc["order"]
	if !ok {
		return nil, NewValidationError("order", "required field is missing", nil)
	}
	raw, ok := asList(v)
	if !ok {
		return nil, NewValidationError("order", "must be a list of panel names", nil)
	}
	seen := make(map[string]bool, len(raw))
	order := make([]string, 0, len(raw))
	for _, item := range raw {
		name, ok := item.(string)
		if !ok {
			return nil, NewValidationError("order", "entries must be panel names", nil)
		}
		if !panelSet[name] {
			return nil, NewValidationError("order", fmt.Sprintf("unknown panel %q", name), nil)
		}
		if seen[name] {
			return nil, NewValidationError("order", fmt.Sprintf("duplicate panel %q", name), nil)
		}
		seen[name] = true
		order = append(order, name)
	}
	return order, nil
}

func validateAvailabilities(doc map[string]any, panelSet map[string]bool, dayStart, dayEnd, slotMinutes int) (map[string][]timeconv.Window, error) {
	v, ok := doc["availabilities"]
	if !ok {
		return nil, NewValidationError("availabilities", "required field is missing", nil)
	}
	raw, ok := asMap(v)
	if !ok {
		return nil, NewValidationError("availabilities", "must be a mapping of panel name to window(s)", nil)
	}
	out := make(map[string][]timeconv.Window, len(raw))
	for name, val := range raw {
		if !panelSet[name] {
			return nil, NewValidationError("availabilities."+name, "unknown panel", nil)
		}
		var rawWindows []any
		switch w := val.(type) {
		case string:
			rawWindows = []any{w}
		default:
			list, ok := asList(val)
			if !ok {
				return nil, NewValidationError("availabilities."+name, "must be a window string or list of window strings", nil)
			}
			rawWindows = list
		}

		windows := make([]timeconv.Window, 0, len(rawWindows))
		for _, rw := range rawWindows {
			s, ok := rw.(string)
			if !ok {
				return nil, NewValidationError("availabilities."+name, "window entries must be strings", nil)
			}
			window, err := timeconv.ParseWindow(s)
			if err != nil {
				return nil, NewValidationError("availabilities."+name, "invalid window", err)
			}
			if window.Start < dayStart || window.End > dayEnd {
				return nil, NewValidationError("availabilities."+name, "window falls outside [start_time, end_time)", nil)
			}
			if (window.Start-dayStart)%slotMinutes != 0 || (window.End-dayStart)%slotMinutes != 0 {
				return nil, NewValidationError("availabilities."+name, "window boundaries must align to the slot grid", nil)
			}
			windows = append(windows, window)
		}
		sortWindows(windows)
		if err := disjoint(windows); err != nil {
			return nil, NewValidationError("availabilities."+name, "windows must be disjoint", err)
		}
		out[name] = windows
	}
	return out, nil
}

func validatePositionConstraints(doc map[string]any, panelSet map[string]bool, numPanels int) (map[string]PositionSpec, error) {
	v, ok := doc["position_constraints"]
	if !ok {
		return nil, nil
	}
	raw, ok := asMap(v)
	if !ok {
		return nil, NewValidationError("position_constraints", "must be a mapping of panel name to position", nil)
	}
	out := make(map[string]PositionSpec, len(raw))
	for name, val := range raw {
		if !panelSet[name] {
			return nil, NewValidationError("position_constraints."+name, "unknown panel", nil)
		}
		switch pv := val.(type) {
		case string:
			switch pv {
			case "first":
				out[name] = PositionSpec{Kind: PositionFirst}
			case "last":
				out[name] = PositionSpec{Kind: PositionLast}
			default:
				return nil, NewValidationError("position_constraints."+name, `must be "first", "last", or a non-negative integer`, nil)
			}
		default:
			n, ok := asInt(val)
			if !ok || n < 0 || n >= numPanels {
				return nil, NewValidationError("position_constraints."+name, fmt.Sprintf("integer position must be in [0, %d)", numPanels), nil)
			}
			out[name] = PositionSpec{Kind: PositionAbsolute, Index: n}
		}
	}
	return out, nil
}

func validatePanelConflicts(doc map[string]any, panelSet map[string]bool) ([][]string, error) {
	v, ok := doc["panel_conflicts"]
	if !ok {
		return nil, nil
	}
	groups, ok := asList(v)
	if !ok {
		return nil, NewValidationError("panel_conflicts", "must be a list of panel-name lists", nil)
	}
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		items, ok := asList(g)
		if !ok || len(items) < 2 {
			return nil, NewValidationError("panel_conflicts", "each group must contain at least 2 panel names", nil)
		}
		seen := make(map[string]bool, len(items))
		group := make([]string, 0, len(items))
		for _, item := range items {
			name, ok := item.(string)
			if !ok || !panelSet[name] {
				return nil, NewValidationError("panel_conflicts", "entries must be known panel names", nil)
			}
			if seen[name] {
				return nil, NewValidationError("panel_conflicts", fmt.Sprintf("duplicate panel %q in group", name), nil)
			}
			seen[name] = true
			group = append(group, name)
		}
		out = append(out, group)
	}
	return out, nil
}

func sortWindows(windows []timeconv.Window) {
	for i := 1; i < len(windows); i++ {
		for j := i; j > 0 && windows[j-1].Start > windows[j].Start; j-- {
			windows[j-1], windows[j] = windows[j], windows[j-1]
		}
	}
}

func disjoint(windows []timeconv.Window) error {
	for i := 1; i < len(windows); i++ {
		if windows[i].Start < windows[i-1].End {
			return fmt.Errorf("windows overlap")
		}
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

// normalizeScalar passes integers through to timeconv.ParseDuration
// unchanged and leaves strings alone; it exists so the YAML-sourced
// float64/int ambiguity never leaks past this package's boundary.
func normalizeScalar(v any) any {
	if f, ok := v.(float64); ok && f == float64(int(f)) {
		return int(f)
	}
	return v
}
