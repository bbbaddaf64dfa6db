// Package inventory computes priced inventory statements and the
// search-by-item ownership index. All aggregation is pure over a refdata
// snapshot: same snapshot in, same statement out.
package inventory

import (
	"sort"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/pricing"
	"github.com/lmguild/lootkeeper/internal/refdata"
)

// StatementLine is one priced row of a member's inventory.
type StatementLine struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
	Total     int64   `json:"total"`
	PctUsed   float64 `json:"pct_used"`
}

// Statement is a member's full inventory with payout totals.
type Statement struct {
	MemberID   string          `json:"member_id"`
	MemberName string          `json:"member_name"`
	RankID     *string         `json:"rank_id,omitempty"`
	Lines      []StatementLine `json:"lines"`
	TotalValue int64           `json:"total_value"`
}

// Aggregate builds the priced statement for one member from a snapshot.
// Entries whose catalog item was deleted keep their stored name and price
// at 0 (no base value left to price them with). Lines are ordered by item
// ID for stable output.
func Aggregate(memberID string, snap *refdata.Snapshot) Statement {
	stmt := Statement{MemberID: memberID, Lines: []StatementLine{}}

	member, ok := snap.Member(memberID)
	if !ok {
		return stmt
	}
	stmt.MemberName = member.Name
	stmt.RankID = member.RankID
	rank := snap.RankFor(member)

	for _, entry := range snap.Inventory {
		if entry.MemberID != memberID || entry.Quantity <= 0 {
			continue
		}

		line := StatementLine{
			ItemID:   entry.ItemID,
			Name:     entry.ItemName,
			Quantity: entry.Quantity,
		}
		if item, ok := snap.Item(entry.ItemID); ok {
			line.Name = item.Name
			line.PctUsed = pricing.EffectivePct(item, member, rank)
			line.UnitPrice = pricing.ResolveUnitPrice(item, member, rank)
			line.Total = pricing.LineTotal(line.UnitPrice, entry.Quantity)
		}
		stmt.TotalValue += line.Total
		stmt.Lines = append(stmt.Lines, line)
	}

	sort.Slice(stmt.Lines, func(i, j int) bool { return stmt.Lines[i].ItemID < stmt.Lines[j].ItemID })
	return stmt
}

// OwnersOf returns the members holding at least one unit of the item,
// recomputed from the snapshot on every call. Result is ordered by member
// name.
func OwnersOf(itemID string, snap *refdata.Snapshot) []domain.Member {
	seen := make(map[string]bool)
	var owners []domain.Member

	for _, entry := range snap.Inventory {
		if entry.ItemID != itemID || entry.Quantity <= 0 || seen[entry.MemberID] {
			continue
		}
		if member, ok := snap.Member(entry.MemberID); ok {
			seen[entry.MemberID] = true
			owners = append(owners, *member)
		}
	}

	sort.Slice(owners, func(i, j int) bool { return owners[i].Name < owners[j].Name })
	return owners
}
