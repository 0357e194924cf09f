package timeconv_test

import (
	"testing"

	"github.com/meridianhire/panelsched/internal/scheduling/timeconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRoundTrip(t *testing.T) {
	for minutes := 0; minutes < 24*60; minutes += 17 {
		s := timeconv.FormatTime(minutes)
		got, err := timeconv.ParseTime(s)
		require.NoError(t, err)
		assert.Equal(t, minutes, got)
	}
}

func TestParseTimeRejectsBadFormat(t *testing.T) {
	for _, s := range []string{"9:00", "09:0", "24:00", "09:60", "noon", ""} {
		_, err := timeconv.ParseTime(s)
		assert.ErrorIs(t, err, timeconv.ErrBadTimeFormat, "input %q", s)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{45, 45, false},
		{"45min", 45, false},
		{"1h", 60, false},
		{"1h30min", 90, false},
		{"", 0, true},
		{"30", 0, true},
		{0, 0, true},
		{-5, 0, true},
	}
	for _, tt := range tests {
		got, err := timeconv.ParseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %v", tt.in)
			continue
		}
		require.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseWindow(t *testing.T) {
	w, err := timeconv.ParseWindow("09:00-17:00")
	require.NoError(t, err)
	assert.Equal(t, timeconv.Window{Start: 9 * 60, End: 17 * 60}, w)

	_, err = timeconv.ParseWindow("17:00-09:00")
	assert.ErrorIs(t, err, timeconv.ErrBadWindow)
}

func TestToSlotsRoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 15, 30, 525, 1020} {
		slots, err := timeconv.ToSlots(minutes, 15)
		require.NoError(t, err)
		assert.Equal(t, minutes, timeconv.FromSlots(slots, 15))
	}
}

func TestToSlotsRejectsUnaligned(t *testing.T) {
	_, err := timeconv.ToSlots(10, 15)
	assert.ErrorIs(t, err, timeconv.ErrUnalignedBoundary)
}

func TestCeilSlots(t *testing.T) {
	assert.Equal(t, 0, timeconv.CeilSlots(0, 15))
	assert.Equal(t, 1, timeconv.CeilSlots(1, 15))
	assert.Equal(t, 1, timeconv.CeilSlots(15, 15))
	assert.Equal(t, 2, timeconv.CeilSlots(16, 15))
}
