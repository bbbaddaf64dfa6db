// Package refdata owns the in-memory copy of the reference data (catalog,
// ranks, members, inventories). Callers never share mutable state: every
// read goes through Snapshot(), which hands out the last refreshed,
// immutable view.
package refdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/metrics"
	"github.com/lmguild/lootkeeper/internal/repository"
)

// Store loads and caches reference data and keeps it fresh with a polling
// watcher. Watch is idempotent: starting it twice does not spawn a second
// loop.
type Store struct {
	items     repository.Item
	ranks     repository.Rank
	members   repository.Member
	inventory repository.Inventory

	mu       sync.RWMutex
	current  *Snapshot
	watching bool
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewStore creates a Store over the given repositories.
func NewStore(items repository.Item, ranks repository.Rank, members repository.Member, inventory repository.Inventory) *Store {
	return &Store{
		items:     items,
		ranks:     ranks,
		members:   members,
		inventory: inventory,
	}
}

// Refresh reloads all reference data and swaps in a new snapshot.
func (s *Store) Refresh(ctx context.Context) error {
	items, err := s.items.GetAllItems(ctx)
	if err != nil {
		return fmt.Errorf("%w: load catalog: %v", domain.ErrPersistence, err)
	}
	ranks, err := s.ranks.GetAllRanks(ctx)
	if err != nil {
		return fmt.Errorf("%w: load ranks: %v", domain.ErrPersistence, err)
	}
	members, err := s.members.GetAllMembers(ctx)
	if err != nil {
		return fmt.Errorf("%w: load members: %v", domain.ErrPersistence, err)
	}
	entries, err := s.inventory.GetAllEntries(ctx)
	if err != nil {
		return fmt.Errorf("%w: load inventories: %v", domain.ErrPersistence, err)
	}

	snap := &Snapshot{
		Items:     make(map[string]domain.Item, len(items)),
		Ranks:     make(map[string]domain.Rank, len(ranks)),
		Members:   make(map[string]domain.Member, len(members)),
		Inventory: entries,
		TakenAt:   time.Now(),
	}
	for _, it := range items {
		snap.Items[it.ID] = it
	}
	for _, r := range ranks {
		snap.Ranks[r.ID] = r
	}
	for _, m := range members {
		snap.Members[m.ID] = m
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	metrics.SnapshotRefreshes.Inc()
	return nil
}

// Snapshot returns the last refreshed view. Nil until the first Refresh
// succeeds; callers treat that as an empty dataset.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return &Snapshot{}
	}
	return s.current
}

// Watch refreshes on the given interval until Stop or context cancellation.
// Repeated calls are no-ops, only one poller runs per store. A stopped
// store can be watched again.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return
	}
	s.watching = true
	// Fresh channel per cycle so a Watch after Stop gets a live poller.
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log := logger.FromContext(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					log.Warn("Reference data refresh failed", "error", err)
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the watcher and waits for it to exit.
func (s *Store) Stop() {
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		return
	}
	s.watching = false
	stop := s.stop
	s.mu.Unlock()

	close(stop)
	s.wg.Wait()
}
