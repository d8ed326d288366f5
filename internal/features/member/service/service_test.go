package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "discord-giveaway-bot/internal/common/errors"
	"discord-giveaway-bot/internal/features/member/models"
	memberfile "discord-giveaway-bot/internal/features/member/repository/file"
)

func newService(t *testing.T) MemberService {
	t.Helper()
	repo, err := memberfile.NewFileMemberRepository(filepath.Join(t.TempDir(), "members.json"))
	require.NoError(t, err)
	return NewMemberService(repo)
}

func TestRecordJoinThenProfile(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.RecordJoin(ctx, "guild-1", "user-1", "2024-03-15T14:30:00Z"))

	profile, err := svc.GetProfile(ctx, "guild-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15T14:30:00Z", profile.JoinedAt)
	assert.Equal(t, 0, profile.GiveawaysWon)
}

func TestRecordJoinOverwrites(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.RecordJoin(ctx, "guild-1", "user-1", "2024-01-01T00:00:00Z"))
	require.NoError(t, svc.RecordWin(ctx, "guild-1", "user-1", ""))

	// Re-join resets the record, wins included.
	require.NoError(t, svc.RecordJoin(ctx, "guild-1", "user-1", "2025-06-01T00:00:00Z"))

	profile, err := svc.GetProfile(ctx, "guild-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T00:00:00Z", profile.JoinedAt)
	assert.Equal(t, 0, profile.GiveawaysWon)
}

func TestRecordWinCreatesLazily(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.RecordWin(ctx, "guild-1", "user-1", ""))

	profile, err := svc.GetProfile(ctx, "guild-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.JoinedAtUnknown, profile.JoinedAt)
	assert.Equal(t, 1, profile.GiveawaysWon)
}

func TestRecordWinUsesFallbackJoinDate(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.RecordWin(ctx, "guild-1", "user-1", "2024-03-15T14:30:00Z"))

	profile, err := svc.GetProfile(ctx, "guild-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15T14:30:00Z", profile.JoinedAt)
	assert.Equal(t, 1, profile.GiveawaysWon)
}

func TestRecordWinIncrements(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.RecordJoin(ctx, "guild-1", "user-1", "2024-03-15T14:30:00Z"))
	require.NoError(t, svc.RecordWin(ctx, "guild-1", "user-1", ""))
	require.NoError(t, svc.RecordWin(ctx, "guild-1", "user-1", ""))

	profile, err := svc.GetProfile(ctx, "guild-1", "user-1")
	require.NoError(t, err)
	// Join date survives wins.
	assert.Equal(t, "2024-03-15T14:30:00Z", profile.JoinedAt)
	assert.Equal(t, 2, profile.GiveawaysWon)
}

func TestGetProfileNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetProfile(context.Background(), "guild-1", "ghost")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsNotFound())
}

func TestGuildStats(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.RecordJoin(ctx, "guild-1", "user-1", "2024-01-01T00:00:00Z"))
	require.NoError(t, svc.RecordWin(ctx, "guild-1", "user-1", ""))
	require.NoError(t, svc.RecordWin(ctx, "guild-1", "user-1", ""))
	require.NoError(t, svc.RecordWin(ctx, "guild-1", "user-2", ""))
	require.NoError(t, svc.RecordWin(ctx, "guild-2", "user-3", ""))

	stats, err := svc.GuildStats(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TrackedMembers)
	assert.Equal(t, 3, stats.TotalGiveawaysWon)

	empty, err := svc.GuildStats(ctx, "guild-9")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TrackedMembers)
	assert.Equal(t, 0, empty.TotalGiveawaysWon)
}
