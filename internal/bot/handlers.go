package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	apperrors "discord-giveaway-bot/internal/common/errors"
	giveawayservice "discord-giveaway-bot/internal/features/giveaway/service"
	"discord-giveaway-bot/internal/features/music"
)

const (
	colorProfile = 0xFFDF00
	colorStats   = 0xB4B4FF
	colorMusic   = 0xFFC0CB
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	handler, ok := map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"giveaway":   b.handleGiveaway,
		"reroll":     b.handleReroll,
		"myprofile":  b.handleMyProfile,
		"guildstats": b.handleGuildStats,
		"play":       b.handlePlay,
		"stop":       b.handleStop,
		"pause":      b.handlePause,
		"resume":     b.handleResume,
	}[name]
	if !ok {
		return
	}

	b.log.Debug().Str("command", name).Str("guild_id", i.GuildID).Msg("Handling command")
	handler(s, i)
}

// defer acknowledges the interaction so handlers get more than the
// three-second response window.
func (b *Bot) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to defer interaction")
		return false
	}
	return true
}

func (b *Bot) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: content}); err != nil {
		b.log.Error().Err(err).Msg("Failed to send follow-up")
	}
}

func (b *Bot) followUpEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		b.log.Error().Err(err).Msg("Failed to send follow-up embed")
	}
}

// replyError maps the closed error taxonomy onto user-facing messages.
// Validation and not-found errors carry their own text; anything else is
// logged and reported generically.
func (b *Bot) replyError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		switch {
		case appErr.IsValidation():
			b.followUp(s, i, appErr.Message+" ⏳")
			return
		case appErr.Code == apperrors.ErrCodeMessageNotFound:
			b.followUp(s, i, "Couldn't find a giveaway message with that ID. Are you sure it's the right one? 🤔")
			return
		case appErr.Code == apperrors.ErrCodeNoParticipants:
			b.followUp(s, i, "No participants found to reroll from! 😔")
			return
		case appErr.IsNotFound():
			b.followUp(s, i, appErr.Message)
			return
		}
	}

	b.log.Error().Err(err).Str("command", i.ApplicationCommandData().Name).Msg("Command failed")
	b.followUp(s, i, "Oh dear! An unexpected error happened. Please try again later! 🥺")
}

func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

func hasManageGuild(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionManageServer != 0
}

// interactionUser resolves the invoking user. Member carries it for
// guild interactions, User for DMs.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func displayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	return interactionUser(i).Username
}

func (b *Bot) handleGiveaway(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferReply(s, i) {
		return
	}
	if !hasManageGuild(i) {
		b.followUp(s, i, "You don't have permission to use that command! 🚫 (Requires `Manage Server`)")
		return
	}

	opts := commandOptions(i)
	_, err := b.giveaways.Create(context.Background(), giveawayservice.CreateRequest{
		GuildID:      i.GuildID,
		ChannelID:    i.ChannelID,
		HostID:       interactionUser(i).ID,
		HostName:     displayName(i),
		DurationSpec: opts["duration"].StringValue(),
		WinnerCount:  int(opts["winners"].IntValue()),
		Prize:        opts["prize"].StringValue(),
	})
	if err != nil {
		b.replyError(s, i, err)
		return
	}
	b.followUp(s, i, "Giveaway started! 🎉")
}

func (b *Bot) handleReroll(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferReply(s, i) {
		return
	}
	if !hasManageGuild(i) {
		b.followUp(s, i, "You don't have permission to use that command! 🚫 (Requires `Manage Server`)")
		return
	}

	messageID := commandOptions(i)["message_id"].StringValue()
	if _, err := b.giveaways.Reroll(context.Background(), i.GuildID, i.ChannelID, messageID); err != nil {
		b.replyError(s, i, err)
		return
	}
	b.followUp(s, i, "Rerolled! 🍀")
}

func (b *Bot) handleMyProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferReply(s, i) {
		return
	}

	profile, err := b.members.GetProfile(context.Background(), i.GuildID, interactionUser(i).ID)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.IsNotFound() {
			b.followUp(s, i, "I don't have your profile data yet! It populates when you join the server or win a giveaway. 🥺")
			return
		}
		b.replyError(s, i, err)
		return
	}

	joinedText := profile.JoinedAt
	if joined, err := time.Parse(time.RFC3339, profile.JoinedAt); err == nil {
		joinedText = fmt.Sprintf("<t:%d:F>", joined.Unix())
	}

	b.followUpEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🌸 %s's Profile 🌸", displayName(i)),
		Description: fmt.Sprintf("Joined the server: **%s**\nGiveaways won: **%d** 🎉", joinedText, profile.GiveawaysWon),
		Color:       colorProfile,
	})
}

func (b *Bot) handleGuildStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferReply(s, i) {
		return
	}
	if !hasManageGuild(i) {
		b.followUp(s, i, "You don't have permission to use that command! 🚫 (Requires `Manage Server`)")
		return
	}

	stats, err := b.members.GuildStats(context.Background(), i.GuildID)
	if err != nil {
		b.replyError(s, i, err)
		return
	}

	guildName := i.GuildID
	memberCount := 0
	if guild, err := s.State.Guild(i.GuildID); err == nil {
		guildName = guild.Name
		memberCount = guild.MemberCount
	}

	b.followUpEmbed(s, i, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 %s's Stats 📊", guildName),
		Description: fmt.Sprintf(
			"Total Members: **%d** 👥\nTotal Giveaways Won by Members: **%d** 🏆",
			memberCount, stats.TotalGiveawaysWon,
		),
		Color: colorStats,
	})
}

func (b *Bot) handlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferReply(s, i) {
		return
	}

	voiceState, err := s.State.VoiceState(i.GuildID, interactionUser(i).ID)
	if err != nil || voiceState == nil || voiceState.ChannelID == "" {
		b.followUp(s, i, "You're not in a voice channel! Please join one first. 🥺")
		return
	}

	query := commandOptions(i)["query"].StringValue()
	track, err := b.player.Play(context.Background(), i.GuildID, voiceState.ChannelID, query)
	if err != nil {
		b.log.Error().Err(err).Str("query", query).Msg("Playback failed to start")
		b.followUp(s, i, "Couldn't play that song from SoundCloud. 💔 Please try a different link or search query!")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎶 Now Playing on SoundCloud! ✨",
		Description: fmt.Sprintf("**[%s](%s)**", track.Title, track.WebpageURL),
		Color:       colorMusic,
	}
	footer := fmt.Sprintf("Requested by %s", displayName(i))
	if track.Duration > 0 {
		total := int(track.Duration)
		footer = fmt.Sprintf("Duration: %d:%02d | %s", total/60, total%60, footer)
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}

	b.followUpEmbed(s, i, embed)
}

func (b *Bot) handleStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferReply(s, i) {
		return
	}
	if err := b.player.Stop(i.GuildID); err != nil {
		if errors.Is(err, music.ErrNotPlaying) {
			b.followUp(s, i, "I'm not playing anything right now! 🤫")
			return
		}
		b.replyError(s, i, err)
		return
	}
	b.followUp(s, i, "Music stopped! Bye-bye for now! 👋")
}

func (b *Bot) handlePause(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferReply(s, i) {
		return
	}
	if err := b.player.Pause(i.GuildID); err != nil {
		b.followUp(s, i, "I'm not playing anything to pause! 🎶")
		return
	}
	b.followUp(s, i, "Music paused! Take a little break. ⏸️")
}

func (b *Bot) handleResume(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferReply(s, i) {
		return
	}
	if err := b.player.Resume(i.GuildID); err != nil {
		b.followUp(s, i, "I'm not paused right now! 🎶")
		return
	}
	b.followUp(s, i, "Music resumed! ▶️")
}
