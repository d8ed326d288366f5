package file

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-giveaway-bot/internal/features/giveaway/models"
	"discord-giveaway-bot/internal/features/giveaway/repository"
)

func newRepo(t *testing.T) (repository.GiveawayRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "giveaways.json")
	repo, err := NewFileGiveawayRepository(path)
	require.NoError(t, err)
	return repo, path
}

func sampleGiveaway(id string, endTime int64) *models.Giveaway {
	return &models.Giveaway{
		ID:          id,
		GuildID:     "guild-1",
		ChannelID:   "chan-1",
		Prize:       "Sticker Pack",
		WinnerCount: 2,
		EndTime:     endTime,
		HostID:      "host-1",
	}
}

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	g := sampleGiveaway("msg-1", time.Now().Add(time.Hour).Unix())
	require.NoError(t, repo.Create(ctx, g))

	got, err := repo.GetByID(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "Sticker Pack", got.Prize)
	assert.Equal(t, 2, got.WinnerCount)

	require.NoError(t, repo.Delete(ctx, "msg-1"))
	_, err = repo.GetByID(ctx, "msg-1")
	assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)
}

func TestCreateDuplicateFails(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	g := sampleGiveaway("msg-1", time.Now().Add(time.Hour).Unix())
	require.NoError(t, repo.Create(ctx, g))
	assert.Error(t, repo.Create(ctx, sampleGiveaway("msg-1", g.EndTime)))
}

func TestStateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t)

	g := sampleGiveaway("msg-1", time.Now().Add(time.Hour).Unix())
	require.NoError(t, repo.Create(ctx, g))
	require.NoError(t, repo.AddParticipant(ctx, "msg-1", "user-1"))

	reloaded, err := NewFileGiveawayRepository(path)
	require.NoError(t, err)

	got, err := reloaded.GetByID(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", got.ID)
	assert.Equal(t, []string{"user-1"}, got.Participants)
	assert.Equal(t, g.EndTime, got.EndTime)
}

func TestGetExpired(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	now := time.Now().Unix()
	require.NoError(t, repo.Create(ctx, sampleGiveaway("past", now-10)))
	require.NoError(t, repo.Create(ctx, sampleGiveaway("exact", now)))
	require.NoError(t, repo.Create(ctx, sampleGiveaway("future", now+60)))

	expired, err := repo.GetExpired(ctx, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"past", "exact"}, expired)
}

func TestParticipantTracking(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	require.NoError(t, repo.Create(ctx, sampleGiveaway("msg-1", time.Now().Add(time.Hour).Unix())))

	require.NoError(t, repo.AddParticipant(ctx, "msg-1", "user-1"))
	require.NoError(t, repo.AddParticipant(ctx, "msg-1", "user-1")) // idempotent
	require.NoError(t, repo.AddParticipant(ctx, "msg-1", "user-2"))

	got, err := repo.GetByID(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "user-2"}, got.Participants)

	require.NoError(t, repo.RemoveParticipant(ctx, "msg-1", "user-1"))
	got, err = repo.GetByID(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-2"}, got.Participants)

	assert.ErrorIs(t, repo.AddParticipant(ctx, "missing", "user-1"), repository.ErrGiveawayNotFound)
}
