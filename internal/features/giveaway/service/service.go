package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "discord-giveaway-bot/internal/common/errors"
	"discord-giveaway-bot/internal/common/logger"
	"discord-giveaway-bot/internal/features/giveaway/models"
	"discord-giveaway-bot/internal/features/giveaway/repository"
	memberservice "discord-giveaway-bot/internal/features/member/service"
	"discord-giveaway-bot/internal/utils/random"
)

const (
	maxEnumerateRetries = 3
	retryInterval       = time.Second

	colorAnnouncement = 0xFF69B4
	colorEnded        = 0xADD8E6
	colorNoWinners    = 0xD3D3D3
	colorReroll       = 0x98FB98
)

// CreateRequest carries everything needed to open a giveaway.
type CreateRequest struct {
	GuildID      string
	ChannelID    string
	HostID       string
	HostName     string
	DurationSpec string
	WinnerCount  int
	Prize        string
}

// GiveawayService is the giveaway engine: it opens giveaways, concludes
// them once their duration elapses and supports rerolling past ones from
// live reaction state.
type GiveawayService interface {
	Create(ctx context.Context, req CreateRequest) (*models.Giveaway, error)
	// End concludes the giveaway: winners are drawn from the users
	// currently attached to the entry reaction, counters updated and the
	// record removed. A missing record is a no-op. Returns the winner IDs.
	End(ctx context.Context, giveawayID string) ([]string, error)
	// Reroll draws one fresh winner from the live reaction state of a past
	// giveaway message. It needs no stored record.
	Reroll(ctx context.Context, guildID, channelID, messageID string) (string, error)
	// TrackEntry and UntrackEntry mirror reaction add/remove events into
	// the stored participant list while the giveaway is open.
	TrackEntry(ctx context.Context, messageID, userID string) error
	UntrackEntry(ctx context.Context, messageID, userID string) error
}

type giveawayService struct {
	repo       repository.GiveawayRepository
	members    memberservice.MemberService
	chat       ChatClient
	entryEmoji string
	log        zerolog.Logger
}

func NewGiveawayService(repo repository.GiveawayRepository, members memberservice.MemberService, chat ChatClient, entryEmoji string) GiveawayService {
	return &giveawayService{
		repo:       repo,
		members:    members,
		chat:       chat,
		entryEmoji: entryEmoji,
		log:        logger.Component("giveaway_service"),
	}
}

func (s *giveawayService) Create(ctx context.Context, req CreateRequest) (*models.Giveaway, error) {
	if req.WinnerCount < 1 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidWinnerCount, "You need at least one winner for a giveaway").
			WithDetail("winner_count", req.WinnerCount)
	}

	duration, err := models.ParseDurationSpec(req.DurationSpec)
	if errors.Is(err, models.ErrNonPositiveDuration) {
		return nil, apperrors.New(apperrors.ErrCodeNonPositiveDuration, "Giveaway duration must be positive").
			WithDetail("duration", req.DurationSpec)
	}
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidDuration, "Please provide a valid duration (e.g. 30s, 5m, 1h, 2d)").
			WithDetail("duration", req.DurationSpec)
	}

	endTime := time.Now().Add(duration).Unix()

	messageID, err := s.chat.PostAnnouncement(ctx, req.ChannelID, &Announcement{
		Title: "✨ Giveaway Alert! ✨",
		Description: fmt.Sprintf(
			"Win: **%s**\n\nReact with %s to enter!\n\nEnds: <t:%d:R> (at <t:%d:T>)",
			req.Prize, s.entryEmoji, endTime, endTime,
		),
		Footer: fmt.Sprintf("Hosted by %s | Winners: %d", req.HostName, req.WinnerCount),
		Color:  colorAnnouncement,
	})
	if err != nil {
		return nil, apperrors.NewDiscordAPIError("post giveaway announcement", err)
	}

	if err := s.chat.AttachEntryMarker(ctx, req.ChannelID, messageID); err != nil {
		return nil, apperrors.NewDiscordAPIError("attach entry reaction", err)
	}

	giveaway := &models.Giveaway{
		ID:           messageID,
		GuildID:      req.GuildID,
		ChannelID:    req.ChannelID,
		Prize:        req.Prize,
		WinnerCount:  req.WinnerCount,
		EndTime:      endTime,
		HostID:       req.HostID,
		Participants: []string{},
	}
	if err := s.repo.Create(ctx, giveaway); err != nil {
		return nil, apperrors.NewStorageError("store giveaway", err)
	}

	s.log.Info().
		Str("giveaway_id", giveaway.ID).
		Str("guild_id", req.GuildID).
		Str("prize", req.Prize).
		Int("winners", req.WinnerCount).
		Time("ends_at", giveaway.EndsAt()).
		Msg("Giveaway created")
	return giveaway, nil
}

func (s *giveawayService) End(ctx context.Context, giveawayID string) ([]string, error) {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if errors.Is(err, repository.ErrGiveawayNotFound) {
		// Already processed or removed externally.
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("load giveaway", err)
	}

	if err := s.chat.MessageExists(ctx, giveaway.ChannelID, giveawayID); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			// Announcement was deleted out from under us, nothing left to
			// conclude.
			s.log.Warn().
				Str("giveaway_id", giveawayID).
				Msg("Giveaway message gone, dropping record")
			return nil, s.deleteRecord(ctx, giveawayID)
		}
		return nil, apperrors.NewDiscordAPIError("fetch giveaway message", err)
	}

	participants, err := s.eligibleReactors(ctx, giveaway.ChannelID, giveawayID)
	if err != nil {
		return nil, err
	}

	if len(participants) == 0 {
		s.announce(ctx, giveaway.ChannelID, &Announcement{
			Title: "Aww, no winners!",
			Description: fmt.Sprintf(
				"The giveaway for **%s** ended with no participants. Better luck next time!",
				giveaway.Prize,
			),
			Color: colorNoWinners,
		})
		return []string{}, s.deleteRecord(ctx, giveawayID)
	}

	winners, err := random.Sample(participants, giveaway.WinnerCount)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to draw winners")
	}

	mentions := make([]string, len(winners))
	for i, id := range winners {
		mentions[i] = s.chat.Mention(id)
	}
	s.announce(ctx, giveaway.ChannelID, &Announcement{
		Title: "🎉 Giveaway Ended! 🎉",
		Description: fmt.Sprintf(
			"The giveaway for **%s** has concluded!\n\n**Winners:** %s!\n\nCongratulations!",
			giveaway.Prize, strings.Join(mentions, ", "),
		),
		Color: colorEnded,
	})

	for _, winnerID := range winners {
		joinedAt := s.chat.MemberJoinedAt(ctx, giveaway.GuildID, winnerID)
		if err := s.members.RecordWin(ctx, giveaway.GuildID, winnerID, joinedAt); err != nil {
			s.log.Error().Err(err).
				Str("giveaway_id", giveawayID).
				Str("user_id", winnerID).
				Msg("Failed to record win")
		}
	}

	s.log.Info().
		Str("giveaway_id", giveawayID).
		Int("participants", len(participants)).
		Int("winners", len(winners)).
		Msg("Giveaway concluded")
	return winners, s.deleteRecord(ctx, giveawayID)
}

func (s *giveawayService) Reroll(ctx context.Context, guildID, channelID, messageID string) (string, error) {
	if err := s.chat.MessageExists(ctx, channelID, messageID); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return "", apperrors.NewMessageNotFoundError(messageID)
		}
		return "", apperrors.NewDiscordAPIError("fetch giveaway message", err)
	}

	participants, err := s.eligibleReactors(ctx, channelID, messageID)
	if err != nil {
		return "", err
	}
	if len(participants) == 0 {
		return "", apperrors.New(apperrors.ErrCodeNoParticipants, "No participants found to reroll from").
			WithDetail("message_id", messageID)
	}

	winner, err := random.PickOne(participants)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to draw winner")
	}

	joinedAt := s.chat.MemberJoinedAt(ctx, guildID, winner)
	if err := s.members.RecordWin(ctx, guildID, winner, joinedAt); err != nil {
		return "", err
	}

	s.announce(ctx, channelID, &Announcement{
		Title: "🍀 Reroll! 🍀",
		Description: fmt.Sprintf(
			"A new winner has been chosen for the giveaway! Congrats to %s!",
			s.chat.Mention(winner),
		),
		Color: colorReroll,
	})

	s.log.Info().
		Str("message_id", messageID).
		Str("winner_id", winner).
		Int("participants", len(participants)).
		Msg("Giveaway rerolled")
	return winner, nil
}

func (s *giveawayService) TrackEntry(ctx context.Context, messageID, userID string) error {
	err := s.repo.AddParticipant(ctx, messageID, userID)
	if errors.Is(err, repository.ErrGiveawayNotFound) {
		// Reaction on some unrelated message.
		return nil
	}
	return err
}

func (s *giveawayService) UntrackEntry(ctx context.Context, messageID, userID string) error {
	err := s.repo.RemoveParticipant(ctx, messageID, userID)
	if errors.Is(err, repository.ErrGiveawayNotFound) {
		return nil
	}
	return err
}

// eligibleReactors reads the live reaction state and filters out bots.
// Enumeration gets a bounded retry, Discord reaction pagination is the
// flakiest call the engine makes.
func (s *giveawayService) eligibleReactors(ctx context.Context, channelID, messageID string) ([]string, error) {
	var reactors []Reactor
	var lastErr error
	for attempt := 1; attempt <= maxEnumerateRetries; attempt++ {
		reactors, lastErr = s.chat.EnumerateReactors(ctx, channelID, messageID)
		if lastErr == nil {
			break
		}
		s.log.Warn().Err(lastErr).
			Str("message_id", messageID).
			Int("attempt", attempt).
			Msg("Reactor enumeration failed")
		if attempt < maxEnumerateRetries {
			time.Sleep(retryInterval * time.Duration(attempt))
		}
	}
	if lastErr != nil {
		return nil, apperrors.NewDiscordAPIError("enumerate reactors", lastErr)
	}

	eligible := make([]string, 0, len(reactors))
	for _, r := range reactors {
		if !r.IsBot {
			eligible = append(eligible, r.ID)
		}
	}
	return eligible, nil
}

// announce is best-effort: a failed result announcement is logged but must
// not block the bookkeeping that follows winner computation.
func (s *giveawayService) announce(ctx context.Context, channelID string, a *Announcement) {
	if _, err := s.chat.PostAnnouncement(ctx, channelID, a); err != nil {
		s.log.Error().Err(err).
			Str("channel_id", channelID).
			Str("title", a.Title).
			Msg("Failed to post announcement")
	}
}

func (s *giveawayService) deleteRecord(ctx context.Context, giveawayID string) error {
	err := s.repo.Delete(ctx, giveawayID)
	if err != nil && !errors.Is(err, repository.ErrGiveawayNotFound) {
		return apperrors.NewStorageError("delete giveaway", err)
	}
	return nil
}
