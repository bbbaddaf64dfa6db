// Package pricing resolves the effective payout for a loot line.
//
// The precedence order is the single source of truth for every place that
// prices a line (submission summaries, inventory statements, the catch-up
// processor):
//
//  1. a non-payable item is worth 0, always
//  2. an item-level percentage override wins over anything rank-derived
//  3. otherwise the member's rank decides: bonus percentage when the member
//     has bonus-tier status and the rank defines one, base percentage
//     otherwise, 0 with no rank at all
//
// Unit prices round to the nearest integer, halves away from zero
// (math.Round). All functions are total: malformed input (negative base
// value, NaN percentage) degrades to a 0 contribution instead of failing.
package pricing

import (
	"math"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// EffectivePct returns the payout percentage applied to an item for a
// member of the given rank. Rank may be nil (member has no rank).
func EffectivePct(item *domain.Item, member *domain.Member, rank *domain.Rank) float64 {
	if item == nil || !item.Payable {
		return 0
	}
	if item.PctOverride != nil {
		return sanitizePct(*item.PctOverride)
	}
	bonusTier := member != nil && member.BonusTier
	return sanitizePct(rank.EffectivePct(bonusTier))
}

// ResolveUnitPrice computes the per-unit payout of an item for a member.
func ResolveUnitPrice(item *domain.Item, member *domain.Member, rank *domain.Rank) int64 {
	pct := EffectivePct(item, member, rank)
	if pct == 0 || item.BaseValue <= 0 {
		return 0
	}
	return int64(math.Round(float64(item.BaseValue) * pct))
}

// LineUnitPrice prices a frozen registry line snapshot. The snapshot carries
// its own base value and override so historical lines pay what they paid at
// submission time, regardless of later catalog edits.
func LineUnitPrice(line domain.RegistryLine, member *domain.Member, rank *domain.Rank) int64 {
	item := domain.Item{
		ID:          line.ItemID,
		Name:        line.Name,
		BaseValue:   line.BaseValue,
		Payable:     line.Payable,
		PctOverride: line.PctOverride,
	}
	return ResolveUnitPrice(&item, member, rank)
}

// LineTotal is the unit price times the quantity. A zero or negative
// quantity contributes nothing.
func LineTotal(unitPrice int64, quantity int) int64 {
	if quantity <= 0 || unitPrice <= 0 {
		return 0
	}
	return unitPrice * int64(quantity)
}

// sanitizePct guards against partially configured catalogs: NaN, infinite
// or negative percentages contribute 0 rather than corrupting a total.
func sanitizePct(pct float64) float64 {
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 {
		return 0
	}
	return pct
}
