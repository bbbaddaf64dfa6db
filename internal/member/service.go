// Package member manages the guild roster.
package member

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
	"github.com/lmguild/lootkeeper/internal/utils"
)

const (
	cacheSize = 256
	cacheTTL  = 5 * time.Minute

	searchLimit = 50
)

// SaveInput carries a member create or update. An empty ID means create;
// the ID is then derived from the name.
type SaveInput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name" validate:"required"`
	DiscordID *string `json:"discord_id,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	RankID    *string `json:"rank_id,omitempty"`
	BonusTier bool    `json:"bonus_tier"`
}

// Service defines the roster operations
type Service interface {
	List(ctx context.Context) ([]domain.Member, error)
	GetByID(ctx context.Context, memberID string) (*domain.Member, error)
	Search(ctx context.Context, name string) ([]domain.Member, error)
	Save(ctx context.Context, input SaveInput) (*domain.Member, error)
	Delete(ctx context.Context, memberID string) error
}

type service struct {
	repo  repository.Member
	ranks repository.Rank
	store *refdata.Store
	cache *memberCache
}

// NewService creates a member service.
func NewService(repo repository.Member, ranks repository.Rank, store *refdata.Store) Service {
	return &service{
		repo:  repo,
		ranks: ranks,
		store: store,
		cache: newMemberCache(cacheSize, cacheTTL),
	}
}

func (s *service) List(ctx context.Context) ([]domain.Member, error) {
	members, err := s.repo.GetAllMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return members, nil
}

func (s *service) GetByID(ctx context.Context, memberID string) (*domain.Member, error) {
	if member, ok := s.cache.Get(memberID); ok {
		return member, nil
	}

	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}

	s.cache.Set(member)
	return member, nil
}

func (s *service) Search(ctx context.Context, name string) ([]domain.Member, error) {
	members, err := s.repo.SearchMembersByName(ctx, strings.TrimSpace(name), searchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return members, nil
}

// Save creates or updates a member. The rank reference is checked so a
// member can never point at a rank that does not exist.
func (s *service) Save(ctx context.Context, input SaveInput) (*domain.Member, error) {
	log := logger.FromContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: member name is required", domain.ErrValidation)
	}

	if input.RankID != nil && *input.RankID != "" {
		rank, err := s.ranks.GetRankByID(ctx, *input.RankID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if rank == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrRankNotFound, *input.RankID)
		}
	}

	id := input.ID
	if id == "" {
		id = utils.Slugify(name)
		if id == "" {
			return nil, fmt.Errorf("%w: member name yields an empty identifier", domain.ErrValidation)
		}
	}

	rankID := input.RankID
	if rankID != nil && *rankID == "" {
		rankID = nil
	}

	member := &domain.Member{
		ID:        id,
		Name:      name,
		DiscordID: input.DiscordID,
		AvatarURL: input.AvatarURL,
		RankID:    rankID,
		BonusTier: input.BonusTier,
	}
	if err := s.repo.UpsertMember(ctx, member); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.cache.Invalidate(member.ID)
	if err := s.store.Refresh(ctx); err != nil {
		log.Warn("Snapshot refresh after member save failed", "error", err)
	}

	log.Info("Member saved", "member", member.ID, "rank", rankID, "bonus_tier", member.BonusTier)
	return member, nil
}

// Delete removes a member; their inventory entries go with them.
func (s *service) Delete(ctx context.Context, memberID string) error {
	log := logger.FromContext(ctx)

	existing, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}

	if err := s.repo.DeleteMember(ctx, memberID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.cache.Invalidate(memberID)
	if err := s.store.Refresh(ctx); err != nil {
		log.Warn("Snapshot refresh after member delete failed", "error", err)
	}

	log.Info("Member deleted", "member", memberID)
	return nil
}
