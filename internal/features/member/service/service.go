package service

import (
	"context"

	"github.com/rs/zerolog"

	apperrors "discord-giveaway-bot/internal/common/errors"
	"discord-giveaway-bot/internal/common/logger"
	"discord-giveaway-bot/internal/features/member/models"
	"discord-giveaway-bot/internal/features/member/repository"
)

// MemberService is the member registry: join dates and giveaway win
// counters per (guild, user) pair.
type MemberService interface {
	RecordJoin(ctx context.Context, guildID, userID, joinedAt string) error
	// RecordWin increments the user's win counter, creating the record
	// lazily when absent. fallbackJoinedAt seeds joined_at for such lazy
	// records; empty means the join date was never observed.
	RecordWin(ctx context.Context, guildID, userID, fallbackJoinedAt string) error
	GetProfile(ctx context.Context, guildID, userID string) (*models.Member, error)
	GuildStats(ctx context.Context, guildID string) (*models.GuildStats, error)
}

type memberService struct {
	repo repository.MemberRepository
	log  zerolog.Logger
}

func NewMemberService(repo repository.MemberRepository) MemberService {
	return &memberService{
		repo: repo,
		log:  logger.Component("member_service"),
	}
}

func (s *memberService) RecordJoin(ctx context.Context, guildID, userID, joinedAt string) error {
	member := &models.Member{
		JoinedAt:     joinedAt,
		GiveawaysWon: 0,
	}
	if err := s.repo.Upsert(ctx, guildID, userID, member); err != nil {
		return apperrors.NewStorageError("record join", err)
	}

	s.log.Info().
		Str("guild_id", guildID).
		Str("user_id", userID).
		Msg("Recorded new member")
	return nil
}

func (s *memberService) RecordWin(ctx context.Context, guildID, userID, fallbackJoinedAt string) error {
	member, err := s.repo.Get(ctx, guildID, userID)
	if err == repository.ErrMemberNotFound {
		if fallbackJoinedAt == "" {
			fallbackJoinedAt = models.JoinedAtUnknown
		}
		member = &models.Member{JoinedAt: fallbackJoinedAt}
	} else if err != nil {
		return apperrors.NewStorageError("load member", err)
	}

	member.GiveawaysWon++
	if err := s.repo.Upsert(ctx, guildID, userID, member); err != nil {
		return apperrors.NewStorageError("record win", err)
	}

	s.log.Info().
		Str("guild_id", guildID).
		Str("user_id", userID).
		Int("giveaways_won", member.GiveawaysWon).
		Msg("Recorded giveaway win")
	return nil
}

func (s *memberService) GetProfile(ctx context.Context, guildID, userID string) (*models.Member, error) {
	member, err := s.repo.Get(ctx, guildID, userID)
	if err == repository.ErrMemberNotFound {
		return nil, apperrors.New(apperrors.ErrCodeMemberNotFound, "No profile data recorded yet").
			WithDetail("guild_id", guildID).
			WithDetail("user_id", userID)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("load member", err)
	}
	return member, nil
}

func (s *memberService) GuildStats(ctx context.Context, guildID string) (*models.GuildStats, error) {
	members, err := s.repo.GuildMembers(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStorageError("load guild members", err)
	}

	stats := &models.GuildStats{TrackedMembers: len(members)}
	for _, m := range members {
		stats.TotalGiveawaysWon += m.GiveawaysWon
	}
	return stats, nil
}
