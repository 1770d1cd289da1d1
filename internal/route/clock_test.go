package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		wantErr  bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{" 11:30 ", 690, false},
		{"9", 0, true},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseHHMM(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.expected, got, "input %q", tt.in)
	}
}

func TestMinutesOfDay(t *testing.T) {
	// 03:35:30 UTC is 09:05:30 in Asia/Kolkata (+05:30)
	now := time.Date(2026, 3, 15, 3, 35, 30, 0, time.UTC)

	got, err := minutesOfDay(now, "Asia/Kolkata")
	require.NoError(t, err)
	assert.InDelta(t, 545.5, got, 1e-9)

	got, err = minutesOfDay(now, "UTC")
	require.NoError(t, err)
	assert.InDelta(t, 215.5, got, 1e-9)

	_, err = minutesOfDay(now, "Not/AZone")
	assert.Error(t, err)
}
