package file

import (
	"context"
	"fmt"
	"sync"

	"discord-giveaway-bot/internal/features/member/models"
	"discord-giveaway-bot/internal/features/member/repository"
	"discord-giveaway-bot/internal/platform/filestore"
)

// fileRepository mirrors the member file layout: guild ID to user ID to
// record. Full rewrite on every mutation, same as the giveaway store.
type fileRepository struct {
	mu      sync.Mutex
	path    string
	members map[string]map[string]*models.Member
}

func NewFileMemberRepository(path string) (repository.MemberRepository, error) {
	members := make(map[string]map[string]*models.Member)
	if err := filestore.Load(path, &members); err != nil {
		return nil, fmt.Errorf("failed to load member store: %w", err)
	}
	return &fileRepository{path: path, members: members}, nil
}

func (r *fileRepository) persist() error {
	return filestore.Save(r.path, r.members)
}

func (r *fileRepository) Upsert(_ context.Context, guildID, userID string, member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	guild, ok := r.members[guildID]
	if !ok {
		guild = make(map[string]*models.Member)
		r.members[guildID] = guild
	}
	m := *member
	guild[userID] = &m
	return r.persist()
}

func (r *fileRepository) Get(_ context.Context, guildID, userID string) (*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[guildID][userID]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	copy := *m
	return &copy, nil
}

func (r *fileRepository) GuildMembers(_ context.Context, guildID string) (map[string]*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]*models.Member, len(r.members[guildID]))
	for userID, m := range r.members[guildID] {
		copy := *m
		out[userID] = &copy
	}
	return out, nil
}
