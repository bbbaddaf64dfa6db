package repository

import (
	"context"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// Item defines the interface for catalog persistence
type Item interface {
	GetAllItems(ctx context.Context) ([]domain.Item, error)
	GetItemByID(ctx context.Context, itemID string) (*domain.Item, error)
	GetItemsByIDs(ctx context.Context, itemIDs []string) ([]domain.Item, error)
	CreateItem(ctx context.Context, item *domain.Item) error
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, itemID string) error
}
