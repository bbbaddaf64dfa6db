// Package catalog manages the loot item catalog.
package catalog

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

// SaveInput carries an item create or update.
type SaveInput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	BaseValue   int64    `json:"base_value" validate:"gte=0"`
	Payable     bool     `json:"payable"`
	PctOverride *float64 `json:"pct_override,omitempty" validate:"omitempty,gte=0,lte=1"`
	ImageURL    *string  `json:"image_url,omitempty"`
}

// Service defines the catalog operations
type Service interface {
	List(ctx context.Context) ([]domain.Item, error)
	GetByID(ctx context.Context, itemID string) (*domain.Item, error)
	Create(ctx context.Context, input SaveInput) (*domain.Item, error)
	Update(ctx context.Context, itemID string, input SaveInput) (*domain.Item, error)
	Delete(ctx context.Context, itemID string) error
}

type service struct {
	repo  repository.Item
	store *refdata.Store
}

// NewService creates a catalog service.
func NewService(repo repository.Item, store *refdata.Store) Service {
	return &service{repo: repo, store: store}
}

func (s *service) List(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.GetAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return items, nil
}

func (s *service) GetByID(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	return item, nil
}

// Create adds a new item. The ID is derived from the name unless given
// explicitly, and an existing ID is a validation error rather than a
// silent overwrite.
func (s *service) Create(ctx context.Context, input SaveInput) (*domain.Item, error) {
	log := logger.FromContext(ctx)

	item, err := itemFromInput(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetItemByID(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: item %q already exists", domain.ErrValidation, item.ID)
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.refresh(ctx)
	log.Info("Item created", "item", item.ID, "base_value", item.BaseValue, "payable", item.Payable)
	return item, nil
}

// Update replaces an existing item's attributes. The ID never changes:
// registries hold frozen snapshots keyed by it.
func (s *service) Update(ctx context.Context, itemID string, input SaveInput) (*domain.Item, error) {
	log := logger.FromContext(ctx)

	existing, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}

	input.ID = itemID
	item, err := itemFromInput(input)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.refresh(ctx)
	log.Info("Item updated", "item", item.ID)
	return item, nil
}

// Delete removes an item from the catalog. Existing inventory entries and
// registry snapshots keep the stale ID; pricing treats it as an orphan.
func (s *service) Delete(ctx context.Context, itemID string) error {
	log := logger.FromContext(ctx)

	existing, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.refresh(ctx)
	log.Info("Item deleted", "item", itemID)
	return nil
}

func (s *service) refresh(ctx context.Context) {
	if err := s.store.Refresh(ctx); err != nil {
		logger.FromContext(ctx).Warn("Snapshot refresh after catalog change failed", "error", err)
	}
}

func itemFromInput(input SaveInput) (*domain.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", domain.ErrValidation)
	}
	if input.BaseValue < 0 {
		return nil, fmt.Errorf("%w: base value must not be negative", domain.ErrValidation)
	}
	if input.PctOverride != nil && (*input.PctOverride < 0 || *input.PctOverride > 1) {
		return nil, fmt.Errorf("%w: pct override must be within [0, 1]", domain.ErrValidation)
	}

	id := input.ID
	if id == "" {
		id = utils.Slugify(name)
		if id == "" {
			return nil, fmt.Errorf("%w: item name yields an empty identifier", domain.ErrValidation)
		}
	}

	return &domain.Item{
		ID:          id,
		Name:        name,
		BaseValue:   input.BaseValue,
		Payable:     input.Payable,
		PctOverride: input.PctOverride,
		ImageURL:    input.ImageURL,
	}, nil
}
