// Package discord adapts a discordgo session to the narrow chat-platform
// surface the giveaway engine consumes.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	giveawayservice "discord-giveaway-bot/internal/features/giveaway/service"
)

// Discord caps reaction listing at 100 users per page.
const reactionPageSize = 100

type Client struct {
	session    *discordgo.Session
	entryEmoji string
}

func NewClient(session *discordgo.Session, entryEmoji string) *Client {
	return &Client{session: session, entryEmoji: entryEmoji}
}

func (c *Client) PostAnnouncement(ctx context.Context, channelID string, a *giveawayservice.Announcement) (string, error) {
	embed := &discordgo.MessageEmbed{
		Title:       a.Title,
		Description: a.Description,
		Color:       a.Color,
	}
	if a.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: a.Footer}
	}

	msg, err := c.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send announcement to channel %s: %w", channelID, err)
	}
	return msg.ID, nil
}

func (c *Client) AttachEntryMarker(ctx context.Context, channelID, messageID string) error {
	if err := c.session.MessageReactionAdd(channelID, messageID, c.entryEmoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add entry reaction to message %s: %w", messageID, err)
	}
	return nil
}

func (c *Client) MessageExists(ctx context.Context, channelID, messageID string) error {
	_, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if isUnknownMessage(err) {
		return giveawayservice.ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}
	return nil
}

func (c *Client) EnumerateReactors(ctx context.Context, channelID, messageID string) ([]giveawayservice.Reactor, error) {
	var reactors []giveawayservice.Reactor

	afterID := ""
	for {
		users, err := c.session.MessageReactions(
			channelID, messageID, c.entryEmoji,
			reactionPageSize, "", afterID,
			discordgo.WithContext(ctx),
		)
		if isUnknownMessage(err) {
			return nil, giveawayservice.ErrMessageNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list reactions on message %s: %w", messageID, err)
		}

		for _, u := range users {
			reactors = append(reactors, giveawayservice.Reactor{ID: u.ID, IsBot: u.Bot})
		}
		if len(users) < reactionPageSize {
			return reactors, nil
		}
		afterID = users[len(users)-1].ID
	}
}

func (c *Client) Mention(userID string) string {
	return "<@" + userID + ">"
}

func (c *Client) MemberJoinedAt(ctx context.Context, guildID, userID string) string {
	member, err := c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil || member.JoinedAt.IsZero() {
		return ""
	}
	return member.JoinedAt.Format(time.RFC3339)
}

// isUnknownMessage reports whether the API said the message is gone.
func isUnknownMessage(err error) bool {
	if err == nil {
		return false
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
