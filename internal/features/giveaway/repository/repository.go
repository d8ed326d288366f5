package repository

import (
	"context"
	"errors"

	"discord-giveaway-bot/internal/features/giveaway/models"
)

var ErrGiveawayNotFound = errors.New("giveaway not found")

// GiveawayRepository owns the persisted giveaway records. A record exists
// exactly while its giveaway is open; completion deletes it.
type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)
	Delete(ctx context.Context, id string) error
	// GetExpired returns the IDs of giveaways whose end_time is at or
	// before now (unix seconds).
	GetExpired(ctx context.Context, now int64) ([]string, error)
	AddParticipant(ctx context.Context, id, userID string) error
	RemoveParticipant(ctx context.Context, id, userID string) error
}
