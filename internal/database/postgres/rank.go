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

// RankRepository implements repository.Rank for PostgreSQL
type RankRepository struct {
	pool *pgxpool.Pool
}

// NewRankRepository creates a new RankRepository
func NewRankRepository(pool *pgxpool.Pool) repository.Rank {
	return &RankRepository{pool: pool}
}

// GetAllRanks retrieves all ranks, most senior first
func (r *RankRepository) GetAllRanks(ctx context.Context) ([]domain.Rank, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rank_id, rank_level, color, base_pct, bonus_pct
		FROM ranks ORDER BY rank_level DESC, rank_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all ranks: %w", err)
	}
	defer rows.Close()

	var ranks []domain.Rank
	for rows.Next() {
		var rk domain.Rank
		if err := rows.Scan(&rk.ID, &rk.Level, &rk.Color, &rk.BasePct, &rk.BonusPct); err != nil {
			return nil, fmt.Errorf("failed to scan rank: %w", err)
		}
		ranks = append(ranks, rk)
	}
	return ranks, rows.Err()
}

// GetRankByID retrieves a rank by ID, nil when absent
func (r *RankRepository) GetRankByID(ctx context.Context, rankID string) (*domain.Rank, error) {
	var rk domain.Rank
	err := r.pool.QueryRow(ctx, `
		SELECT rank_id, rank_level, color, base_pct, bonus_pct
		FROM ranks WHERE rank_id = $1`, rankID,
	).Scan(&rk.ID, &rk.Level, &rk.Color, &rk.BasePct, &rk.BonusPct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rank: %w", err)
	}
	return &rk, nil
}

// UpsertRank inserts or replaces a rank
func (r *RankRepository) UpsertRank(ctx context.Context, rank *domain.Rank) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ranks (rank_id, rank_level, color, base_pct, bonus_pct)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (rank_id) DO UPDATE
		SET rank_level = EXCLUDED.rank_level,
		    color = EXCLUDED.color,
		    base_pct = EXCLUDED.base_pct,
		    bonus_pct = EXCLUDED.bonus_pct`,
		rank.ID, rank.Level, rank.Color, rank.BasePct, rank.BonusPct)
	if err != nil {
		return fmt.Errorf("failed to upsert rank: %w", err)
	}
	return nil
}

// DeleteRank removes a rank; the members FK is ON DELETE SET NULL so
// holders are detached in the same statement.
func (r *RankRepository) DeleteRank(ctx context.Context, rankID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM ranks WHERE rank_id = $1", rankID)
	if err != nil {
		return fmt.Errorf("failed to delete rank: %w", err)
	}
	return nil
}
