package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/metrics"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
)

// Service exposes inventory statements, search and the manual corrections
// an admin can make outside the registry flow.
type Service interface {
	GetStatement(ctx context.Context, memberID string) (Statement, error)
	SearchStatements(ctx context.Context, query string) ([]Statement, error)
	GetItemOwners(ctx context.Context, itemID string) ([]domain.Member, error)
	AdjustEntry(ctx context.Context, memberID, itemID string, delta int) (int, error)
	ClearMemberInventory(ctx context.Context, memberID string) error
}

type service struct {
	store *refdata.Store
	repo  repository.Inventory
}

// NewService creates an inventory service over the snapshot store and the
// inventory repository.
func NewService(store *refdata.Store, repo repository.Inventory) Service {
	return &service{store: store, repo: repo}
}

// GetStatement returns the priced statement for one member.
func (s *service) GetStatement(ctx context.Context, memberID string) (Statement, error) {
	snap := s.store.Snapshot()
	if _, ok := snap.Member(memberID); !ok {
		return Statement{}, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}
	return Aggregate(memberID, snap), nil
}

// SearchStatements matches members by name or by an item they hold, the
// union the inventory screen searches with. An empty query returns every
// member's statement.
func (s *service) SearchStatements(ctx context.Context, query string) ([]Statement, error) {
	snap := s.store.Snapshot()
	q := strings.ToLower(strings.TrimSpace(query))

	matched := make(map[string]bool)
	for id, m := range snap.Members {
		if q == "" || strings.Contains(strings.ToLower(m.Name), q) {
			matched[id] = true
		}
	}
	if q != "" {
		for _, entry := range snap.Inventory {
			if entry.Quantity > 0 && strings.Contains(strings.ToLower(entry.ItemName), q) {
				matched[entry.MemberID] = true
			}
		}
	}

	ids := make([]string, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	statements := make([]Statement, 0, len(ids))
	for _, id := range ids {
		statements = append(statements, Aggregate(id, snap))
	}
	return statements, nil
}

// GetItemOwners returns the members currently holding an item, sorted by
// name. The item need not still exist in the catalog.
func (s *service) GetItemOwners(ctx context.Context, itemID string) ([]domain.Member, error) {
	return OwnersOf(itemID, s.store.Snapshot()), nil
}

// AdjustEntry applies a manual correction to one (member, item) entry.
// Positive deltas increment, negative decrement; hitting zero deletes the
// entry. Returns the remaining quantity.
func (s *service) AdjustEntry(ctx context.Context, memberID, itemID string, delta int) (int, error) {
	log := logger.FromContext(ctx)

	if delta == 0 {
		return 0, fmt.Errorf("%w: delta must be non-zero", domain.ErrValidation)
	}

	snap := s.store.Snapshot()
	member, ok := snap.Member(memberID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}

	var remaining int
	if delta > 0 {
		name := itemID
		if item, ok := snap.Item(itemID); ok {
			name = item.Name
		}
		if err := s.repo.IncrementEntry(ctx, memberID, itemID, name, delta); err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		remaining = -1 // unknown without a re-read; refreshed below
	} else {
		var err error
		remaining, err = s.repo.DecrementEntry(ctx, memberID, itemID, -delta)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
	}

	if err := s.store.Refresh(ctx); err != nil {
		log.Warn("Snapshot refresh after adjustment failed", "error", err)
	}
	if remaining < 0 {
		remaining = 0
		for _, entry := range s.store.Snapshot().Inventory {
			if entry.MemberID == memberID && entry.ItemID == itemID {
				remaining = entry.Quantity
			}
		}
	}

	metrics.InventoryAdjusts.Inc()
	log.Info("Inventory adjusted", "member", member.ID, "item", itemID, "delta", delta, "remaining", remaining)
	return remaining, nil
}

// ClearMemberInventory removes every entry a member holds.
func (s *service) ClearMemberInventory(ctx context.Context, memberID string) error {
	if _, ok := s.store.Snapshot().Member(memberID); !ok {
		return fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}
	if err := s.repo.DeleteEntriesByMember(ctx, memberID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if err := s.store.Refresh(ctx); err != nil {
		logger.FromContext(ctx).Warn("Snapshot refresh after clear failed", "error", err)
	}
	return nil
}
