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

// InventoryRepository implements repository.Inventory for PostgreSQL
type InventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(pool *pgxpool.Pool) repository.Inventory {
	return &InventoryRepository{pool: pool}
}

const entryColumns = "member_id, item_id, item_name, quantity, created_at, updated_at"

func scanEntry(row pgx.Row) (*domain.InventoryEntry, error) {
	var e domain.InventoryEntry
	err := row.Scan(&e.MemberID, &e.ItemID, &e.ItemName, &e.Quantity, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetAllEntries retrieves every inventory entry
func (r *InventoryRepository) GetAllEntries(ctx context.Context) ([]domain.InventoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+entryColumns+" FROM inventory_entries ORDER BY member_id, item_id")
	if err != nil {
		return nil, fmt.Errorf("failed to get all inventory entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.InventoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetEntriesByMember retrieves one member's entries
func (r *InventoryRepository) GetEntriesByMember(ctx context.Context, memberID string) ([]domain.InventoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+entryColumns+" FROM inventory_entries WHERE member_id = $1 ORDER BY item_id", memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.InventoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// IncrementEntry adds quantity to the (member, item) entry in one upsert.
// The single statement is what makes concurrent submissions safe: two
// increments serialize on the row instead of one overwriting the other.
func (r *InventoryRepository) IncrementEntry(ctx context.Context, memberID, itemID, itemName string, quantity int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO inventory_entries (member_id, item_id, item_name, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (member_id, item_id) DO UPDATE
		SET quantity = inventory_entries.quantity + EXCLUDED.quantity,
		    item_name = EXCLUDED.item_name,
		    updated_at = NOW()`,
		memberID, itemID, itemName, quantity)
	if err != nil {
		return fmt.Errorf("failed to increment inventory entry: %w", err)
	}
	return nil
}

// DecrementEntry subtracts quantity, deletes the row at zero or below, and
// returns the remaining count. The floor at zero is applied in SQL so a
// concurrent decrement cannot drive the count negative.
func (r *InventoryRepository) DecrementEntry(ctx context.Context, memberID, itemID string, quantity int) (int, error) {
	var remaining int
	err := r.pool.QueryRow(ctx, `
		UPDATE inventory_entries
		SET quantity = GREATEST(quantity - $3, 0), updated_at = NOW()
		WHERE member_id = $1 AND item_id = $2
		RETURNING quantity`,
		memberID, itemID, quantity,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to decrement inventory entry: %w", err)
	}

	if remaining == 0 {
		if _, err := r.pool.Exec(ctx,
			"DELETE FROM inventory_entries WHERE member_id = $1 AND item_id = $2 AND quantity = 0",
			memberID, itemID); err != nil {
			return 0, fmt.Errorf("failed to remove drained inventory entry: %w", err)
		}
	}
	return remaining, nil
}

// DeleteEntriesByMember removes every entry a member holds
func (r *InventoryRepository) DeleteEntriesByMember(ctx context.Context, memberID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM inventory_entries WHERE member_id = $1", memberID)
	if err != nil {
		return fmt.Errorf("failed to delete inventory entries: %w", err)
	}
	return nil
}
