package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKickoff(t *testing.T) {
	tests := []struct {
		in       string
		expected int
	}{
		{defaultKickoff, 15},
		{"18:00", 18},
		{"00:45", 0},
		{"23:59", 23},
		{"20", 20},
		{" 9:15 ", 9},
	}

	for _, tt := range tests {
		hour, err := parseKickoff(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.expected, hour, "input %q", tt.in)
	}
}

func TestParseKickoff_Invalid(t *testing.T) {
	for _, in := range []string{"", "24:00", "-1:00", "18:60", "evening", "18:xx"} {
		_, err := parseKickoff(in)
		assert.Error(t, err, "input %q", in)
	}
}
