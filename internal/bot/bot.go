package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"discord-giveaway-bot/internal/common/config"
	"discord-giveaway-bot/internal/common/logger"
	giveawayservice "discord-giveaway-bot/internal/features/giveaway/service"
	memberservice "discord-giveaway-bot/internal/features/member/service"
	"discord-giveaway-bot/internal/features/music"
)

// Bot owns the gateway session and maps Discord events onto the
// services.
type Bot struct {
	session   *discordgo.Session
	cfg       *config.Config
	giveaways giveawayservice.GiveawayService
	members   memberservice.MemberService
	player    *music.Player
	log       zerolog.Logger
}

func New(session *discordgo.Session, cfg *config.Config, giveaways giveawayservice.GiveawayService, members memberservice.MemberService, player *music.Player) *Bot {
	return &Bot{
		session:   session,
		cfg:       cfg,
		giveaways: giveaways,
		members:   members,
		player:    player,
		log:       logger.Component("bot"),
	}
}

// NewSession builds a gateway session with the intents the bot needs:
// guilds for channels, members for join tracking, reactions for giveaway
// entries and voice states for music.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates
	return session, nil
}

// Start connects to the gateway and registers the slash commands.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onReactionAdd)
	b.session.AddHandler(b.onReactionRemove)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", commandDefinitions()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	b.log.Info().Int("commands", len(commandDefinitions())).Msg("Slash commands registered")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.log.Info().
		Str("username", s.State.User.Username).
		Int("guilds", len(s.State.Guilds)).
		Msg("Bot is ready")

	if err := s.UpdateListeningStatus("SoundCloud tunes 🎶"); err != nil {
		b.log.Warn().Err(err).Msg("Failed to set presence")
	}
}

func (b *Bot) onGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	joinedAt := m.JoinedAt.Format(time.RFC3339)
	if err := b.members.RecordJoin(context.Background(), m.GuildID, m.User.ID, joinedAt); err != nil {
		b.log.Error().Err(err).
			Str("guild_id", m.GuildID).
			Str("user_id", m.User.ID).
			Msg("Failed to record member join")
	}
}

func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.Emoji.Name != b.cfg.Discord.EntryEmoji || r.UserID == s.State.User.ID {
		return
	}
	if err := b.giveaways.TrackEntry(context.Background(), r.MessageID, r.UserID); err != nil {
		b.log.Error().Err(err).
			Str("message_id", r.MessageID).
			Msg("Failed to track giveaway entry")
	}
}

func (b *Bot) onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.Emoji.Name != b.cfg.Discord.EntryEmoji || r.UserID == s.State.User.ID {
		return
	}
	if err := b.giveaways.UntrackEntry(context.Background(), r.MessageID, r.UserID); err != nil {
		b.log.Error().Err(err).
			Str("message_id", r.MessageID).
			Msg("Failed to untrack giveaway entry")
	}
}
