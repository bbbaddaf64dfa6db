// Package postgres implements the repository interfaces over pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/repository"
)

// ItemRepository implements repository.Item for PostgreSQL
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(pool *pgxpool.Pool) repository.Item {
	return &ItemRepository{pool: pool}
}

const itemColumns = "item_id, item_name, base_value, payable, pct_override, image_url, created_at, updated_at"

func scanItem(row pgx.Row) (*domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.Name, &it.BaseValue, &it.Payable, &it.PctOverride, &it.ImageURL, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// GetAllItems retrieves the full catalog ordered by ID
func (r *ItemRepository) GetAllItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+itemColumns+" FROM items ORDER BY item_id")
	if err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// GetItemByID retrieves an item by ID, nil when absent
func (r *ItemRepository) GetItemByID(ctx context.Context, itemID string) (*domain.Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM items WHERE item_id = $1", itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// GetItemsByIDs retrieves the items matching the given IDs. Missing IDs are
// simply absent from the result.
func (r *ItemRepository) GetItemsByIDs(ctx context.Context, itemIDs []string) ([]domain.Item, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		"SELECT "+itemColumns+" FROM items WHERE item_id = ANY($1)", itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get items by ids: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// CreateItem inserts a new catalog item
func (r *ItemRepository) CreateItem(ctx context.Context, item *domain.Item) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO items (item_id, item_name, base_value, payable, pct_override, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		item.ID, item.Name, item.BaseValue, item.Payable, item.PctOverride, item.ImageURL,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// UpdateItem replaces an item's attributes; the ID is immutable
func (r *ItemRepository) UpdateItem(ctx context.Context, item *domain.Item) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE items
		SET item_name = $2, base_value = $3, payable = $4, pct_override = $5, image_url = $6, updated_at = NOW()
		WHERE item_id = $1
		RETURNING updated_at`,
		item.ID, item.Name, item.BaseValue, item.Payable, item.PctOverride, item.ImageURL,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// DeleteItem removes an item from the catalog
func (r *ItemRepository) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM items WHERE item_id = $1", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}
