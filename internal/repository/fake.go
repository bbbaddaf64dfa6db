package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// FakeRepository is a stateful in-memory implementation of every
// repository interface, for integration-style unit tests. A copy
// semantics note: getters return copies so tests cannot mutate stored
// state by accident.
//
// Set FailWith to force every call to return that error. FailInventoryWith
// fails only the inventory methods, for exercising paths where earlier
// writes (the registry row) must survive a later inventory failure.
type FakeRepository struct {
	mu sync.Mutex

	FailWith          error
	FailInventoryWith error

	items      map[string]domain.Item
	ranks      map[string]domain.Rank
	members    map[string]domain.Member
	entries    map[string]domain.InventoryEntry // keyed memberID+"/"+itemID
	registries map[string]domain.Registry
	admins     map[string]bool

	registryOrder []string // creation order, oldest first
}

// NewFakeRepository creates an empty fake.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		items:      make(map[string]domain.Item),
		ranks:      make(map[string]domain.Rank),
		members:    make(map[string]domain.Member),
		entries:    make(map[string]domain.InventoryEntry),
		registries: make(map[string]domain.Registry),
		admins:     make(map[string]bool),
	}
}

func entryKey(memberID, itemID string) string {
	return memberID + "/" + itemID
}

// --- Item ---

func (f *FakeRepository) GetAllItems(ctx context.Context) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	items := make([]domain.Item, 0, len(f.items))
	for _, it := range f.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (f *FakeRepository) GetItemByID(ctx context.Context, itemID string) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	it, ok := f.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (f *FakeRepository) GetItemsByIDs(ctx context.Context, itemIDs []string) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	items := make([]domain.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		if it, ok := f.items[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (f *FakeRepository) CreateItem(ctx context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	f.items[item.ID] = *item
	return nil
}

func (f *FakeRepository) UpdateItem(ctx context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	item.UpdatedAt = time.Now()
	f.items[item.ID] = *item
	return nil
}

func (f *FakeRepository) DeleteItem(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	delete(f.items, itemID)
	return nil
}

// --- Rank ---

func (f *FakeRepository) GetAllRanks(ctx context.Context) ([]domain.Rank, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	ranks := make([]domain.Rank, 0, len(f.ranks))
	for _, r := range f.ranks {
		ranks = append(ranks, r)
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i].Level > ranks[j].Level })
	return ranks, nil
}

func (f *FakeRepository) GetRankByID(ctx context.Context, rankID string) (*domain.Rank, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	r, ok := f.ranks[rankID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *FakeRepository) UpsertRank(ctx context.Context, rank *domain.Rank) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.ranks[rank.ID] = *rank
	return nil
}

func (f *FakeRepository) DeleteRank(ctx context.Context, rankID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	delete(f.ranks, rankID)
	for id, m := range f.members {
		if m.RankID != nil && *m.RankID == rankID {
			m.RankID = nil
			f.members[id] = m
		}
	}
	return nil
}

// --- Member ---

func (f *FakeRepository) GetAllMembers(ctx context.Context) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	members := make([]domain.Member, 0, len(f.members))
	for _, m := range f.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (f *FakeRepository) GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	m, ok := f.members[memberID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *FakeRepository) SearchMembersByName(ctx context.Context, namePrefix string, limit int) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	prefix := strings.ToLower(namePrefix)
	var members []domain.Member
	for _, m := range f.members {
		if strings.HasPrefix(strings.ToLower(m.Name), prefix) {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

func (f *FakeRepository) UpsertMember(ctx context.Context, member *domain.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	if existing, ok := f.members[member.ID]; ok {
		member.CreatedAt = existing.CreatedAt
	} else {
		member.CreatedAt = time.Now()
	}
	member.UpdatedAt = time.Now()
	f.members[member.ID] = *member
	return nil
}

func (f *FakeRepository) DeleteMember(ctx context.Context, memberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	delete(f.members, memberID)
	// Mirror the ON DELETE CASCADE on inventory entries.
	for key, e := range f.entries {
		if e.MemberID == memberID {
			delete(f.entries, key)
		}
	}
	return nil
}

// --- Inventory ---

// inventoryErr combines the global and inventory-only failure hooks.
// Caller holds the mutex.
func (f *FakeRepository) inventoryErr() error {
	if f.FailWith != nil {
		return f.FailWith
	}
	return f.FailInventoryWith
}

func (f *FakeRepository) GetAllEntries(ctx context.Context) ([]domain.InventoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.inventoryErr(); err != nil {
		return nil, err
	}
	entries := make([]domain.InventoryEntry, 0, len(f.entries))
	for _, e := range f.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].MemberID != entries[j].MemberID {
			return entries[i].MemberID < entries[j].MemberID
		}
		return entries[i].ItemID < entries[j].ItemID
	})
	return entries, nil
}

func (f *FakeRepository) GetEntriesByMember(ctx context.Context, memberID string) ([]domain.InventoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.inventoryErr(); err != nil {
		return nil, err
	}
	var entries []domain.InventoryEntry
	for _, e := range f.entries {
		if e.MemberID == memberID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ItemID < entries[j].ItemID })
	return entries, nil
}

func (f *FakeRepository) IncrementEntry(ctx context.Context, memberID, itemID, itemName string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.inventoryErr(); err != nil {
		return err
	}
	key := entryKey(memberID, itemID)
	e, ok := f.entries[key]
	if !ok {
		e = domain.InventoryEntry{MemberID: memberID, ItemID: itemID, ItemName: itemName, CreatedAt: time.Now()}
	}
	e.ItemName = itemName
	e.Quantity += quantity
	e.UpdatedAt = time.Now()
	f.entries[key] = e
	return nil
}

func (f *FakeRepository) DecrementEntry(ctx context.Context, memberID, itemID string, quantity int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.inventoryErr(); err != nil {
		return 0, err
	}
	key := entryKey(memberID, itemID)
	e, ok := f.entries[key]
	if !ok {
		return 0, nil
	}
	e.Quantity -= quantity
	if e.Quantity <= 0 {
		delete(f.entries, key)
		return 0, nil
	}
	e.UpdatedAt = time.Now()
	f.entries[key] = e
	return e.Quantity, nil
}

func (f *FakeRepository) DeleteEntriesByMember(ctx context.Context, memberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.inventoryErr(); err != nil {
		return err
	}
	for key, e := range f.entries {
		if e.MemberID == memberID {
			delete(f.entries, key)
		}
	}
	return nil
}

// --- Registry ---

func (f *FakeRepository) CreateRegistry(ctx context.Context, registry *domain.Registry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.registries[registry.ID] = *registry
	f.registryOrder = append(f.registryOrder, registry.ID)
	return nil
}

func (f *FakeRepository) GetRegistryByID(ctx context.Context, registryID string) (*domain.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	r, ok := f.registries[registryID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *FakeRepository) GetRegistriesByMember(ctx context.Context, memberID string) ([]domain.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	var regs []domain.Registry
	for _, id := range f.registryOrder {
		if r, ok := f.registries[id]; ok && r.MemberID == memberID {
			regs = append(regs, r)
		}
	}
	return regs, nil
}

func (f *FakeRepository) GetUnprocessedRegistries(ctx context.Context, limit int) ([]domain.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	var regs []domain.Registry
	for _, id := range f.registryOrder {
		if r, ok := f.registries[id]; ok && !r.Processed {
			regs = append(regs, r)
			if limit > 0 && len(regs) == limit {
				break
			}
		}
	}
	return regs, nil
}

func (f *FakeRepository) MarkProcessed(ctx context.Context, registryID, notifierResponse string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	r, ok := f.registries[registryID]
	if !ok {
		return nil
	}
	now := time.Now()
	r.Processed = true
	r.ProcessedAt = &now
	r.ProcessError = nil
	r.NotifierResponse = &notifierResponse
	f.registries[registryID] = r
	return nil
}

func (f *FakeRepository) MarkProcessError(ctx context.Context, registryID, errText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	r, ok := f.registries[registryID]
	if !ok {
		return nil
	}
	r.Processed = false
	r.ProcessError = &errText
	f.registries[registryID] = r
	return nil
}

// --- Admin ---

func (f *FakeRepository) IsAdmin(ctx context.Context, adminID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return false, f.FailWith
	}
	return f.admins[adminID], nil
}

// AddAdmin registers an admin ID for tests.
func (f *FakeRepository) AddAdmin(adminID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins[adminID] = true
}
