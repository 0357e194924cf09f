// Package timeconv normalizes the human-facing time strings accepted by a
// scheduling configuration ("09:00", "1h30min") into integer slot indices.
// config keeps the parsed values in minutes; application/services'
// InstanceBuilder turns them into slots, and domain and everything after it
// work in slot indices only.
package timeconv

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrBadTimeFormat is returned when a time string is not 24-hour "HH:MM".
	ErrBadTimeFormat = errors.New("time must be in 24-hour HH:MM format")
	// ErrBadDuration is returned when a duration value matches neither the
	// integer-minutes nor the "1h30min" textual form.
	ErrBadDuration = errors.New("duration must be minutes or a string like \"1h30min\"")
	// ErrBadWindow is returned when a window's end is not strictly after its start.
	ErrBadWindow = errors.New("window end must be after window start")
	// ErrUnalignedBoundary is returned when a minute value does not fall on the slot grid.
	ErrUnalignedBoundary = errors.New("value is not aligned to the slot grid")
)

var durationPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)min)?$`)

// Window is a half-open interval [Start, End) expressed in minutes from midnight.
type Window struct {
	Start int
	End   int
}

// ParseTime parses a 24-hour "HH:MM" string into minutes since midnight.
func ParseTime(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 || len(parts[0]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	return hh*60 + mm, nil
}

// FormatTime renders minutes-since-midnight back to "HH:MM". It is the
// left inverse of ParseTime for values in [0, 24*60).
func FormatTime(minutes int) string {
	hh := (minutes / 60) % 24
	mm := minutes % 60
	return fmt.Sprintf("%02d:%02d", hh, mm)
}

// ParseDuration accepts either a plain integer number of minutes or a string
// of the form "1h30min" ("1h", "45min", or "1h30min" — at least one group
// must be present).
func ParseDuration(v any) (int, error) {
	switch value := v.(type) {
	case int:
		if value <= 0 {
			return 0, fmt.Errorf("%w: %d", ErrBadDuration, value)
		}
		return value, nil
	case int64:
		return ParseDuration(int(value))
	case float64:
		return ParseDuration(int(value))
	case string:
		return parseDurationString(value)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrBadDuration, v)
	}
}

func parseDurationString(s string) (int, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
	}
	total := 0
	if m[1] != "" {
		h, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
		}
		total += h * 60
	}
	if m[2] != "" {
		mins, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
		}
		total += mins
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
	}
	return total, nil
}

// ParseWindow parses a "HH:MM-HH:MM" window string into minutes since midnight.
func ParseWindow(s string) (Window, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	start, err := ParseTime(strings.TrimSpace(parts[0]))
	if err != nil {
		return Window{}, err
	}
	end, err := ParseTime(strings.TrimSpace(parts[1]))
	if err != nil {
		return Window{}, err
	}
	if end <= start {
		return Window{}, fmt.Errorf("%w: %q", ErrBadWindow, s)
	}
	return Window{Start: start, End: end}, nil
}

// ToSlots converts a minute value to a slot index, requiring it to fall
// exactly on the slot grid.
func ToSlots(minutes, slotMinutes int) (int, error) {
	if slotMinutes <= 0 {
		return 0, fmt.Errorf("slot_duration_minutes must be >= 1, got %d", slotMinutes)
	}
	if minutes%slotMinutes != 0 {
		return 0, fmt.Errorf("%w: %d minutes does not align to a %d-minute slot", ErrUnalignedBoundary, minutes, slotMinutes)
	}
	return minutes / slotMinutes, nil
}

// FromSlots is the right inverse of ToSlots.
func FromSlots(slots, slotMinutes int) int {
	return slots * slotMinutes
}

// CeilSlots rounds a minute duration up to the nearest whole number of slots,
// used for max_gap_minutes which need not land exactly on the grid.
func CeilSlots(minutes, slotMinutes int) int {
	if slotMinutes <= 0 {
		return 0
	}
	if minutes <= 0 {
		return 0
	}
	return (minutes + slotMinutes - 1) / slotMinutes
}
