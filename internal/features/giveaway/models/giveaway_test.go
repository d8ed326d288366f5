package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationSpec(t *testing.T) {
	cases := []struct {
		spec string
		want time.Duration
	}{
		{"1s", time.Second},
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"1h", time.Hour},
		{"2d", 48 * time.Hour},
		{"1M", time.Minute}, // unit is case-insensitive
		{"90s", 90 * time.Second},
	}

	for _, tc := range cases {
		got, err := ParseDurationSpec(tc.spec)
		require.NoError(t, err, "spec %q", tc.spec)
		assert.Equal(t, tc.want, got, "spec %q", tc.spec)
	}
}

func TestParseDurationSpecRejectsMalformed(t *testing.T) {
	for _, spec := range []string{"", "s", "10", "tens", "1.5h", "1h30m", "1w", "h1"} {
		_, err := ParseDurationSpec(spec)
		assert.ErrorIs(t, err, ErrInvalidDurationSpec, "spec %q", spec)
	}
}

func TestParseDurationSpecRejectsOverflow(t *testing.T) {
	// Amounts that parse as int64 but whose total would wrap the
	// time.Duration conversion into a negative value.
	for _, spec := range []string{"200000000000d", "9223372036854775807s", "9223372037m"} {
		got, err := ParseDurationSpec(spec)
		assert.ErrorIs(t, err, ErrInvalidDurationSpec, "spec %q", spec)
		assert.Zero(t, got, "spec %q", spec)
	}

	// The largest representable totals still parse.
	got, err := ParseDurationSpec("9223372036s")
	require.NoError(t, err)
	assert.Equal(t, 9223372036*time.Second, got)
}

func TestParseDurationSpecRejectsNonPositive(t *testing.T) {
	for _, spec := range []string{"0s", "0m", "-5m", "-1d"} {
		_, err := ParseDurationSpec(spec)
		assert.ErrorIs(t, err, ErrNonPositiveDuration, "spec %q", spec)
	}
}

func TestEnded(t *testing.T) {
	now := time.Now()
	g := &Giveaway{EndTime: now.Add(time.Minute).Unix()}
	assert.False(t, g.Ended(now))
	assert.True(t, g.Ended(now.Add(2*time.Minute)))
}

func TestParticipantTracking(t *testing.T) {
	g := &Giveaway{Participants: []string{"1", "2", "3"}}

	assert.True(t, g.HasParticipant("2"))
	assert.False(t, g.HasParticipant("9"))

	g.RemoveParticipant("2")
	assert.Equal(t, []string{"1", "3"}, g.Participants)

	g.RemoveParticipant("9")
	assert.Equal(t, []string{"1", "3"}, g.Participants)
}
