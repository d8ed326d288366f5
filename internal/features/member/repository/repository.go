package repository

import (
	"context"
	"errors"

	"discord-giveaway-bot/internal/features/member/models"
)

var ErrMemberNotFound = errors.New("member not found")

// MemberRepository owns the persisted member records, one per
// (guild, user) pair.
type MemberRepository interface {
	// Upsert writes the record for the pair, replacing any existing one.
	Upsert(ctx context.Context, guildID, userID string, member *models.Member) error
	Get(ctx context.Context, guildID, userID string) (*models.Member, error)
	// GuildMembers returns all records of a guild keyed by user ID.
	GuildMembers(ctx context.Context, guildID string) (map[string]*models.Member, error)
}
