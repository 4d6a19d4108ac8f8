package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"125", 125 * time.Second},
		{"2:05", 125 * time.Second},
		{"1:00:00", time.Hour},
		{"4m30s", 270 * time.Second},
		{" 15m ", 15 * time.Minute},
		{"1500ms", time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "0", "abc", "1:2:3:4", "-5s", "1:-2", "500ms"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePresets(t *testing.T) {
	got, err := ParsePresets("4m, 6:00")
	require.NoError(t, err)
	assert.Equal(t, [2]time.Duration{4 * time.Minute, 6 * time.Minute}, got)

	got, err = ParsePresets("240 360")
	require.NoError(t, err)
	assert.Equal(t, [2]time.Duration{4 * time.Minute, 6 * time.Minute}, got)

	_, err = ParsePresets("4m")
	assert.Error(t, err)
	_, err = ParsePresets("4m 0")
	assert.Error(t, err)
}
