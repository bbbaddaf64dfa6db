package repository

import "context"

// Admin defines the permission-check lookup gating every mutating call.
type Admin interface {
	IsAdmin(ctx context.Context, adminID string) (bool, error)
}
