package domain

// Rank is a member tier carrying the payout percentages.
// Level only orders ranks for display, higher is more senior.
type Rank struct {
	ID       string   `json:"rank_id" db:"rank_id"`
	Level    int      `json:"level" db:"level"`
	Color    string   `json:"color" db:"color"`
	BasePct  float64  `json:"base_pct" db:"base_pct"`
	BonusPct *float64 `json:"bonus_pct,omitempty" db:"bonus_pct"` // Nullable: bonus-tier members fall back to BasePct
}

// EffectivePct returns the percentage a member of this rank earns.
// A bonus-tier member uses BonusPct when the rank defines one.
func (r *Rank) EffectivePct(bonusTier bool) float64 {
	if r == nil {
		return 0
	}
	if bonusTier && r.BonusPct != nil {
		return *r.BonusPct
	}
	return r.BasePct
}
