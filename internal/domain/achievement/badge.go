package achievement

import (
	"math"
	"sort"
)

// UserBadge is a Model applied to one user. It is derived and never mutated.
type UserBadge struct {
	Model    *Model
	User     string
	Progress float64
	Tier     Tier
}

// Unlocked reports whether the user reached at least the default tier.
func (b UserBadge) Unlocked() bool {
	return b.Tier > Locked
}

// NextTier returns the tier after the current one, false when already terminal.
func (b UserBadge) NextTier() (Tier, bool) {
	return b.Tier.Next()
}

// TotalProgress is progress relative to the best user, in [0,1].
// An empty population yields 0.
func (b UserBadge) TotalProgress() float64 {
	return ratio(b.Progress, b.Model.Tiers[Platinum].MinScore)
}

// CurrentGradeProgress is GradeProgress for the user's own tier.
func (b UserBadge) CurrentGradeProgress() float64 {
	return b.GradeProgress(b.Tier)
}

// GradeProgress is how far the user's progress fills tier t toward the next one,
// in [0,1]. The terminal tier measures against platinum; the default tier and the
// locked floor use 0 as their lower bound.
func (b UserBadge) GradeProgress(t Tier) float64 {
	tiers := b.Model.Tiers
	next, ok := t.Next()
	if !ok {
		return ratio(b.Progress, tiers[Platinum].MinScore)
	}
	upper := tiers[next].MinScore
	if t <= Default {
		return ratio(b.Progress, upper)
	}
	lower := tiers[t].MinScore
	switch {
	case math.IsInf(upper, 1) || math.IsNaN(upper):
		return 0
	case b.Progress >= upper:
		return 1
	case upper <= lower:
		return 0
	}
	return clamp01((b.Progress - lower) / (upper - lower))
}

// ratio returns clamp(num/den) and 0 for unusable denominators.
func ratio(num, den float64) float64 {
	if den <= 0 || math.IsInf(den, 0) || math.IsNaN(den) {
		return 0
	}
	return clamp01(num / den)
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// SortBadges orders badges by tier, highest first, then by total progress,
// highest first. Equal badges keep their input order.
func SortBadges(badges []UserBadge) {
	sort.SliceStable(badges, func(i, j int) bool {
		if badges[i].Tier != badges[j].Tier {
			return badges[i].Tier > badges[j].Tier
		}
		return badges[i].TotalProgress() > badges[j].TotalProgress()
	})
}
