package domain

import "time"

// Item is a catalog entry for a lootable object type.
// The ID is a slug derived from the name at creation time and never changes.
type Item struct {
	ID          string    `json:"item_id" db:"item_id"`
	Name        string    `json:"name" db:"name"`
	BaseValue   int64     `json:"base_value" db:"base_value"`
	Payable     bool      `json:"payable" db:"payable"`
	PctOverride *float64  `json:"pct_override,omitempty" db:"pct_override"` // Nullable: item-level payout override, wins over rank
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
