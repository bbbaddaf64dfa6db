// Package rank manages the guild rank ladder and its payout percentages.
package rank

import (
	"context"
	"fmt"
	"strings"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
	"github.com/lmguild/lootkeeper/internal/utils"
)

// SaveInput carries a rank create or update.
type SaveInput struct {
	ID       string   `json:"id"`
	Level    int      `json:"level" validate:"gte=0"`
	Color    string   `json:"color"`
	BasePct  float64  `json:"base_pct" validate:"gte=0,lte=1"`
	BonusPct *float64 `json:"bonus_pct,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Service defines the rank operations
type Service interface {
	List(ctx context.Context) ([]domain.Rank, error)
	GetByID(ctx context.Context, rankID string) (*domain.Rank, error)
	Save(ctx context.Context, input SaveInput) (*domain.Rank, error)
	Delete(ctx context.Context, rankID string) error
}

type service struct {
	repo  repository.Rank
	store *refdata.Store
}

// NewService creates a rank service.
func NewService(repo repository.Rank, store *refdata.Store) Service {
	return &service{repo: repo, store: store}
}

func (s *service) List(ctx context.Context) ([]domain.Rank, error) {
	ranks, err := s.repo.GetAllRanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return ranks, nil
}

func (s *service) GetByID(ctx context.Context, rankID string) (*domain.Rank, error) {
	rank, err := s.repo.GetRankByID(ctx, rankID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if rank == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRankNotFound, rankID)
	}
	return rank, nil
}

// Save creates or replaces a rank. Percentages are fractions in [0, 1];
// a nil bonus pct means bonus-tier members fall back to the base pct.
func (s *service) Save(ctx context.Context, input SaveInput) (*domain.Rank, error) {
	log := logger.FromContext(ctx)

	id := utils.Slugify(strings.TrimSpace(input.ID))
	if id == "" {
		return nil, fmt.Errorf("%w: rank id is required", domain.ErrValidation)
	}
	if input.Level < 0 {
		return nil, fmt.Errorf("%w: rank level must not be negative", domain.ErrValidation)
	}
	if input.BasePct < 0 || input.BasePct > 1 {
		return nil, fmt.Errorf("%w: base pct must be within [0, 1]", domain.ErrValidation)
	}
	if input.BonusPct != nil && (*input.BonusPct < 0 || *input.BonusPct > 1) {
		return nil, fmt.Errorf("%w: bonus pct must be within [0, 1]", domain.ErrValidation)
	}

	rank := &domain.Rank{
		ID:       id,
		Level:    input.Level,
		Color:    strings.TrimSpace(input.Color),
		BasePct:  input.BasePct,
		BonusPct: input.BonusPct,
	}
	if err := s.repo.UpsertRank(ctx, rank); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.refresh(ctx)
	log.Info("Rank saved", "rank", rank.ID, "level", rank.Level, "base_pct", rank.BasePct)
	return rank, nil
}

// Delete removes a rank. Members holding it are detached server-side and
// price at 0% until reassigned.
func (s *service) Delete(ctx context.Context, rankID string) error {
	log := logger.FromContext(ctx)

	existing, err := s.repo.GetRankByID(ctx, rankID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", domain.ErrRankNotFound, rankID)
	}

	if err := s.repo.DeleteRank(ctx, rankID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.refresh(ctx)
	log.Info("Rank deleted", "rank", rankID)
	return nil
}

func (s *service) refresh(ctx context.Context) {
	if err := s.store.Refresh(ctx); err != nil {
		logger.FromContext(ctx).Warn("Snapshot refresh after rank change failed", "error", err)
	}
}
