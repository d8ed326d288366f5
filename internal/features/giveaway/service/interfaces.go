package service

import (
	"context"
	"errors"
)

// ErrMessageNotFound is returned by ChatClient implementations when the
// referenced message no longer exists (deleted, or wrong channel).
var ErrMessageNotFound = errors.New("message not found")

// Reactor is one user attached to the entry reaction.
type Reactor struct {
	ID    string
	IsBot bool
}

// Announcement is a platform-neutral rich message.
type Announcement struct {
	Title       string
	Description string
	Footer      string
	Color       int
}

// ChatClient is the narrow slice of the chat platform the giveaway engine
// talks to. The production implementation lives in platform/discord.
type ChatClient interface {
	// PostAnnouncement sends the announcement and returns the new
	// message's ID.
	PostAnnouncement(ctx context.Context, channelID string, a *Announcement) (string, error)
	// AttachEntryMarker adds the entry reaction to a message.
	AttachEntryMarker(ctx context.Context, channelID, messageID string) error
	// MessageExists checks that a message is still present. Returns
	// ErrMessageNotFound when it is gone.
	MessageExists(ctx context.Context, channelID, messageID string) error
	// EnumerateReactors lists every user attached to the entry reaction,
	// bots included; the engine filters.
	EnumerateReactors(ctx context.Context, channelID, messageID string) ([]Reactor, error)
	// Mention renders a user ID as a platform mention.
	Mention(userID string) string
	// MemberJoinedAt returns the user's guild join timestamp in ISO-8601,
	// or "" when unknown.
	MemberJoinedAt(ctx context.Context, guildID, userID string) string
}
