// Package achievement grades users against the whole population on a numeric metric.
//
// A Model samples every user's score, derives tier thresholds from percentile anchors
// and assigns tiers to individual users on demand.
package achievement

import (
	"fmt"
	"math"
	"strings"
)

// Tier is an achievement level. Values are ordered from lowest to highest.
type Tier int

// Tier levels in ascending order.
const (
	Locked Tier = iota
	Default
	Bronze
	Silver
	Gold
	Platinum
)

// Order lists all tiers in ascending order.
var Order = []Tier{Locked, Default, Bronze, Silver, Gold, Platinum}

var tierNames = [...]string{"locked", "default", "bronze", "silver", "gold", "platinum"}

var tierLabels = [...]string{"Locked", "New", "Bronze", "Silver", "Golden", "Platinum"}

// String returns the tier key used in tables and payloads.
func (t Tier) String() string {
	if t < Locked || t > Platinum {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Label returns the display prefix of the tier, e.g. "Golden".
func (t Tier) Label() string {
	if t < Locked || t > Platinum {
		return t.String()
	}
	return tierLabels[t]
}

// Next returns the tier above t and false when t is terminal.
func (t Tier) Next() (Tier, bool) {
	if t >= Platinum {
		return Platinum, false
	}
	return t + 1, true
}

// ParseTier resolves a tier key, case-insensitively.
func ParseTier(s string) (Tier, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range tierNames {
		if name == key {
			return Tier(i), nil
		}
	}
	return Locked, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Grade is one tier of a badge: its title and the minimum score to reach it.
// An unreachable tier has MinScore +Inf; the locked floor has MinScore -Inf.
type Grade struct {
	Title    string
	MinScore float64
}

// Reachable reports whether some finite progress can satisfy the grade.
func (g Grade) Reachable() bool {
	return !math.IsInf(g.MinScore, 1) && !math.IsNaN(g.MinScore)
}

// Tiers holds the grade of every tier, indexed by Tier.
type Tiers [len(tierNames)]Grade

// Get returns the grade of tier t.
func (ts Tiers) Get(t Tier) Grade {
	if t < Locked || t > Platinum {
		return Grade{MinScore: math.Inf(1)}
	}
	return ts[t]
}

// AssignTier returns the last tier, scanning in ascending order, whose minimum
// score is met by progress. An unreachable tier ends the scan, so nothing above
// it can be assigned. Progress below the default tier (or NaN) is Locked.
func AssignTier(progress float64, tiers Tiers) Tier {
	if math.IsNaN(progress) || progress < tiers[Default].MinScore {
		return Locked
	}
	assigned := Locked
	for _, t := range Order {
		if !tiers[t].Reachable() {
			break
		}
		if tiers[t].MinScore <= progress {
			assigned = t
		}
	}
	return assigned
}
