package domain

import "time"

// Member is a guild member profile. RankID is nullable: a member with no
// rank resolves to a 0% payout until one is assigned.
type Member struct {
	ID        string    `json:"member_id" db:"member_id"`
	Name      string    `json:"name" db:"name"`
	DiscordID *string   `json:"discord_id,omitempty" db:"discord_id"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	RankID    *string   `json:"rank_id,omitempty" db:"rank_id"`
	BonusTier bool      `json:"bonus_tier" db:"bonus_tier"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
