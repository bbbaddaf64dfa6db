package domain

import "time"

// InventoryEntry is the current on-hand count of one item for one member.
// There is at most one entry per (member, item) pair; registry submissions
// increment it and entries are deleted when the quantity reaches zero.
// ItemName is a copy of the catalog name so statements survive catalog
// deletions.
type InventoryEntry struct {
	MemberID  string    `json:"member_id" db:"member_id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	ItemName  string    `json:"item_name" db:"item_name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
