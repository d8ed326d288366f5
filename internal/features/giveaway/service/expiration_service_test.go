package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-giveaway-bot/internal/features/giveaway/models"
	"discord-giveaway-bot/internal/features/giveaway/repository"
)

func seedGiveaway(t *testing.T, fx *fixture, id string, endTime int64) {
	t.Helper()
	require.NoError(t, fx.repo.Create(context.Background(), &models.Giveaway{
		ID:          id,
		GuildID:     "guild-1",
		ChannelID:   "chan-1",
		Prize:       "Badge",
		WinnerCount: 1,
		EndTime:     endTime,
		HostID:      "host-1",
	}))
	fx.chat.messages[id] = true
}

func TestProcessExpiredGiveaways(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	now := time.Now().Unix()
	seedGiveaway(t, fx, "elapsed", now-5)
	seedGiveaway(t, fx, "pending", now+3600)
	fx.chat.reactors["elapsed"] = []Reactor{{ID: "user-1"}}

	exp := NewExpirationService(fx.engine, fx.repo, 10*time.Millisecond)
	require.NoError(t, exp.ProcessExpiredGiveaways())
	exp.Stop() // waits for the in-flight conclusion

	_, err := fx.repo.GetByID(ctx, "elapsed")
	assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)
	assert.Equal(t, 1, fx.wins(t, "user-1"))

	// The future giveaway is untouched.
	g, err := fx.repo.GetByID(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, "Badge", g.Prize)
}

func TestPollerPicksUpPersistedSchedules(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// A record whose end_time already passed, as left behind by a restart.
	seedGiveaway(t, fx, "orphan", time.Now().Unix()-60)
	fx.chat.reactors["orphan"] = []Reactor{{ID: "user-1"}}

	exp := NewExpirationService(fx.engine, fx.repo, 10*time.Millisecond)
	exp.Start()
	defer exp.Stop()

	require.Eventually(t, func() bool {
		_, err := fx.repo.GetByID(ctx, "orphan")
		return err == repository.ErrGiveawayNotFound
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, 1, fx.wins(t, "user-1"))
}
