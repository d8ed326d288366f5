package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var (
	ErrInvalidDurationSpec = errors.New("duration must look like 30s, 5m, 1h or 2d")
	ErrNonPositiveDuration = errors.New("duration must be positive")
	ErrInvalidWinnerCount  = errors.New("winner count must be at least 1")
)

// maxDurationSeconds is the longest total the time.Duration conversion
// can represent without overflowing.
const maxDurationSeconds = int64(math.MaxInt64) / int64(time.Second)

// durationUnits maps the accepted unit suffix to its length in seconds.
var durationUnits = map[byte]int64{
	's': 1,
	'm': 60,
	'h': 3600,
	'd': 86400,
}

// Giveaway represents one open giveaway, keyed in the store by the ID of
// its announcement message.
type Giveaway struct {
	ID        string `json:"-"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	Prize     string `json:"prize"`
	// Number of winners to draw at the end.
	WinnerCount int    `json:"winners"`
	EndTime     int64  `json:"end_time"` // unix seconds
	HostID      string `json:"host_id"`
	// Users seen reacting while the giveaway was open. Persisted as an
	// audit trail; the winner draw re-reads live reaction state instead
	// of trusting this list.
	Participants []string `json:"participants"`
}

// Ended reports whether the giveaway's duration has elapsed at now.
func (g *Giveaway) Ended(now time.Time) bool {
	return g.EndTime <= now.Unix()
}

// EndsAt returns the end time as a time.Time.
func (g *Giveaway) EndsAt() time.Time {
	return time.Unix(g.EndTime, 0)
}

// HasParticipant reports whether userID is already in the tracked entry list.
func (g *Giveaway) HasParticipant(userID string) bool {
	for _, id := range g.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// RemoveParticipant drops userID from the tracked entry list, if present.
func (g *Giveaway) RemoveParticipant(userID string) {
	for i, id := range g.Participants {
		if id == userID {
			g.Participants = append(g.Participants[:i], g.Participants[i+1:]...)
			return
		}
	}
}

// ParseDurationSpec parses a giveaway duration of the form <integer><unit>
// with unit one of s, m, h, d. Anything else is rejected, including the
// composite forms time.ParseDuration would accept.
func ParseDurationSpec(spec string) (time.Duration, error) {
	if len(spec) < 2 {
		return 0, ErrInvalidDurationSpec
	}

	unit := spec[len(spec)-1]
	if unit >= 'A' && unit <= 'Z' {
		unit += 'a' - 'A'
	}
	seconds, ok := durationUnits[unit]
	if !ok {
		return 0, ErrInvalidDurationSpec
	}

	amount, err := strconv.ParseInt(spec[:len(spec)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDurationSpec, spec)
	}
	if amount <= 0 {
		return 0, ErrNonPositiveDuration
	}
	if amount > maxDurationSeconds/seconds {
		return 0, fmt.Errorf("%w: %q is too long", ErrInvalidDurationSpec, spec)
	}

	return time.Duration(amount*seconds) * time.Second, nil
}
