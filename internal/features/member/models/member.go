package models

// JoinedAtUnknown is recorded when a member first appears through a win
// rather than a join event, so their join date was never observed.
const JoinedAtUnknown = "Unknown"

// Member is the per-guild record of one user.
type Member struct {
	// ISO-8601 join timestamp, or JoinedAtUnknown.
	JoinedAt     string `json:"joined_at"`
	GiveawaysWon int    `json:"giveaways_won"`
}

// GuildStats aggregates a guild's member records.
type GuildStats struct {
	TrackedMembers    int `json:"tracked_members"`
	TotalGiveawaysWon int `json:"total_giveaways_won"`
}
