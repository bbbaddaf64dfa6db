package repository

import (
	"context"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// Rank defines the interface for rank persistence
type Rank interface {
	GetAllRanks(ctx context.Context) ([]domain.Rank, error)
	GetRankByID(ctx context.Context, rankID string) (*domain.Rank, error)
	UpsertRank(ctx context.Context, rank *domain.Rank) error
	DeleteRank(ctx context.Context, rankID string) error
}
