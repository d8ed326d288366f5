package file

import (
	"context"
	"fmt"
	"sync"

	"discord-giveaway-bot/internal/features/giveaway/models"
	"discord-giveaway-bot/internal/features/giveaway/repository"
	"discord-giveaway-bot/internal/platform/filestore"
)

// fileRepository keeps all giveaway records in memory and rewrites the
// whole JSON file after every mutation, matching the flat-file contract
// of the store. The mutex is the only concurrency control; the file is
// not shared between processes.
type fileRepository struct {
	mu        sync.Mutex
	path      string
	giveaways map[string]*models.Giveaway
}

func NewFileGiveawayRepository(path string) (repository.GiveawayRepository, error) {
	giveaways := make(map[string]*models.Giveaway)
	if err := filestore.Load(path, &giveaways); err != nil {
		return nil, fmt.Errorf("failed to load giveaway store: %w", err)
	}
	for id, g := range giveaways {
		g.ID = id
	}
	return &fileRepository{path: path, giveaways: giveaways}, nil
}

func (r *fileRepository) persist() error {
	return filestore.Save(r.path, r.giveaways)
}

func (r *fileRepository) Create(_ context.Context, giveaway *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.giveaways[giveaway.ID]; exists {
		return fmt.Errorf("giveaway %s already exists", giveaway.ID)
	}
	r.giveaways[giveaway.ID] = giveaway
	return r.persist()
}

func (r *fileRepository) GetByID(_ context.Context, id string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	copy := *g
	copy.Participants = append([]string(nil), g.Participants...)
	return &copy, nil
}

func (r *fileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.giveaways[id]; !ok {
		return repository.ErrGiveawayNotFound
	}
	delete(r.giveaways, id)
	return r.persist()
}

func (r *fileRepository) GetExpired(_ context.Context, now int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []string
	for id, g := range r.giveaways {
		if g.EndTime <= now {
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (r *fileRepository) AddParticipant(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	if g.HasParticipant(userID) {
		return nil
	}
	g.Participants = append(g.Participants, userID)
	return r.persist()
}

func (r *fileRepository) RemoveParticipant(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	if !g.HasParticipant(userID) {
		return nil
	}
	g.RemoveParticipant(userID)
	return r.persist()
}
