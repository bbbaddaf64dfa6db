package domain

import "time"

// RegistryLine is a frozen snapshot of one submitted line: the item's name,
// base value and override percentage are copied at submission time so later
// catalog edits never change what a historical registry pays.
type RegistryLine struct {
	ItemID      string   `json:"item_id"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	BaseValue   int64    `json:"base_value"`
	Payable     bool     `json:"payable"`
	PctOverride *float64 `json:"pct_override,omitempty"`
}

// Registry is one append-only audit record of a loot grant. Line snapshots
// are never mutated after creation; only the processing fields change once
// the notification attempt resolves.
type Registry struct {
	ID               string         `json:"registry_id" db:"registry_id"`
	AuthorID         string         `json:"author_id" db:"author_id"`
	AuthorName       string         `json:"author_name" db:"author_name"`
	MemberID         string         `json:"member_id" db:"member_id"`
	MemberName       string         `json:"member_name" db:"member_name"`
	Activity         string         `json:"activity" db:"activity"`
	Lines            []RegistryLine `json:"lines" db:"lines"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	Processed        bool           `json:"processed" db:"processed"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty" db:"processed_at"`
	ProcessError     *string        `json:"process_error,omitempty" db:"process_error"`
	NotifierResponse *string        `json:"notifier_response,omitempty" db:"notifier_response"`
}
