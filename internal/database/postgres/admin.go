package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmguild/lootkeeper/internal/repository"
)

// AdminRepository implements repository.Admin for PostgreSQL
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(pool *pgxpool.Pool) repository.Admin {
	return &AdminRepository{pool: pool}
}

// IsAdmin reports whether the ID is in the admins table
func (r *AdminRepository) IsAdmin(ctx context.Context, adminID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM admins WHERE admin_id = $1)", adminID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	return exists, nil
}
