package repository

import (
	"context"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// Inventory defines the interface for inventory-entry persistence.
type Inventory interface {
	GetAllEntries(ctx context.Context) ([]domain.InventoryEntry, error)
	GetEntriesByMember(ctx context.Context, memberID string) ([]domain.InventoryEntry, error)

	// IncrementEntry atomically adds quantity to the (member, item) entry,
	// creating it when absent. The increment is a single upsert statement so
	// concurrent submissions for the same member cannot lose updates.
	IncrementEntry(ctx context.Context, memberID, itemID, itemName string, quantity int) error

	// DecrementEntry subtracts quantity, deleting the entry when it reaches
	// zero. Returns the remaining quantity.
	DecrementEntry(ctx context.Context, memberID, itemID string, quantity int) (int, error)

	DeleteEntriesByMember(ctx context.Context, memberID string) error
}
