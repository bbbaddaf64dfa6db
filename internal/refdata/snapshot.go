package refdata

import (
	"time"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// Snapshot is an immutable view of the reference data one computation runs
// against: the catalog, the ranks, the member roster and every inventory
// entry. Pricing and aggregation read only from a snapshot, so a refresh
// landing mid-computation cannot change a result halfway through.
type Snapshot struct {
	Items     map[string]domain.Item
	Ranks     map[string]domain.Rank
	Members   map[string]domain.Member
	Inventory []domain.InventoryEntry
	TakenAt   time.Time
}

// RankFor resolves a member's rank from the snapshot. Nil when the member
// has no rank or the rank was deleted.
func (s *Snapshot) RankFor(member *domain.Member) *domain.Rank {
	if member == nil || member.RankID == nil {
		return nil
	}
	if rank, ok := s.Ranks[*member.RankID]; ok {
		return &rank
	}
	return nil
}

// Member looks up a member by ID.
func (s *Snapshot) Member(memberID string) (*domain.Member, bool) {
	m, ok := s.Members[memberID]
	if !ok {
		return nil, false
	}
	return &m, true
}

// Item looks up a catalog item by ID.
func (s *Snapshot) Item(itemID string) (*domain.Item, bool) {
	it, ok := s.Items[itemID]
	if !ok {
		return nil, false
	}
	return &it, true
}
