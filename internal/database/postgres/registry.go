package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/repository"
)

// RegistryRepository implements repository.Registry for PostgreSQL.
// Line snapshots live in a JSONB column: they are written once, read
// whole and never queried field-by-field.
type RegistryRepository struct {
	pool *pgxpool.Pool
}

// NewRegistryRepository creates a new RegistryRepository
func NewRegistryRepository(pool *pgxpool.Pool) repository.Registry {
	return &RegistryRepository{pool: pool}
}

const registryColumns = "registry_id, author_id, author_name, member_id, member_name, activity, lines, created_at, processed, processed_at, process_error, notifier_response"

func scanRegistry(row pgx.Row) (*domain.Registry, error) {
	var reg domain.Registry
	var lines []byte
	err := row.Scan(&reg.ID, &reg.AuthorID, &reg.AuthorName, &reg.MemberID, &reg.MemberName,
		&reg.Activity, &lines, &reg.CreatedAt, &reg.Processed, &reg.ProcessedAt,
		&reg.ProcessError, &reg.NotifierResponse)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lines, &reg.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode registry lines: %w", err)
	}
	return &reg, nil
}

// CreateRegistry inserts a new registry with its frozen line snapshots
func (r *RegistryRepository) CreateRegistry(ctx context.Context, registry *domain.Registry) error {
	lines, err := json.Marshal(registry.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode registry lines: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO registries (registry_id, author_id, author_name, member_id, member_name, activity, lines, created_at, processed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		registry.ID, registry.AuthorID, registry.AuthorName, registry.MemberID, registry.MemberName,
		registry.Activity, lines, registry.CreatedAt, registry.Processed)
	if err != nil {
		return fmt.Errorf("failed to create registry: %w", err)
	}
	return nil
}

// GetRegistryByID retrieves a registry by ID, nil when absent
func (r *RegistryRepository) GetRegistryByID(ctx context.Context, registryID string) (*domain.Registry, error) {
	reg, err := scanRegistry(r.pool.QueryRow(ctx,
		"SELECT "+registryColumns+" FROM registries WHERE registry_id = $1", registryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registry: %w", err)
	}
	return reg, nil
}

// GetRegistriesByMember retrieves a member's registries, oldest first
func (r *RegistryRepository) GetRegistriesByMember(ctx context.Context, memberID string) ([]domain.Registry, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+registryColumns+" FROM registries WHERE member_id = $1 ORDER BY created_at", memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registries: %w", err)
	}
	defer rows.Close()

	return collectRegistries(rows)
}

// GetUnprocessedRegistries retrieves registries awaiting notification,
// oldest first. A limit of 0 means no limit.
func (r *RegistryRepository) GetUnprocessedRegistries(ctx context.Context, limit int) ([]domain.Registry, error) {
	query := "SELECT " + registryColumns + " FROM registries WHERE NOT processed ORDER BY created_at"
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed registries: %w", err)
	}
	defer rows.Close()

	return collectRegistries(rows)
}

func collectRegistries(rows pgx.Rows) ([]domain.Registry, error) {
	var regs []domain.Registry
	for rows.Next() {
		reg, err := scanRegistry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registry: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// MarkProcessed flags a registry as notified and stores the webhook response
func (r *RegistryRepository) MarkProcessed(ctx context.Context, registryID, notifierResponse string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE registries
		SET processed = TRUE, processed_at = NOW(), process_error = NULL, notifier_response = $2
		WHERE registry_id = $1`,
		registryID, notifierResponse)
	if err != nil {
		return fmt.Errorf("failed to mark registry processed: %w", err)
	}
	return nil
}

// MarkProcessError records a failed processing attempt, leaving the
// registry unprocessed for the catch-up run.
func (r *RegistryRepository) MarkProcessError(ctx context.Context, registryID, errText string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE registries
		SET processed = FALSE, process_error = $2
		WHERE registry_id = $1`,
		registryID, errText)
	if err != nil {
		return fmt.Errorf("failed to mark registry error: %w", err)
	}
	return nil
}
