package achievement

import (
	"math"
	"sort"
)

// Threshold calculation defaults.
const (
	defaultGoldRank  = 10
	defaultDecay     = 0.33
	defaultTierFloor = 1
	goldSignificant  = 2
	lowerSignificant = 1
	// quotients this many ulps below an integer are float noise, not a fraction
	snapUlps = 4
)

// ThresholdOption configures ComputeTiers.
type ThresholdOption func(*thresholdConfig)

type thresholdConfig struct {
	goldRank  int
	decay     float64
	monotonic bool
}

// WithGoldRank sets the 0-indexed rank whose score anchors the gold tier.
func WithGoldRank(rank int) ThresholdOption {
	return func(c *thresholdConfig) {
		if rank >= 0 {
			c.goldRank = rank
		}
	}
}

// WithDecay sets the factor applied from gold to silver and from silver to bronze.
func WithDecay(decay float64) ThresholdOption {
	return func(c *thresholdConfig) {
		if decay > 0 && decay < 1 {
			c.decay = decay
		}
	}
}

// WithMonotonicTiers raises every tier to at least the tier below it, including
// tables of populations too small to anchor gold.
func WithMonotonicTiers(enabled bool) ThresholdOption {
	return func(c *thresholdConfig) {
		c.monotonic = enabled
	}
}

// Ranked is a sampled user and score in leaderboard order.
type Ranked struct {
	User  string
	Score float64
}

// RankSample orders a sample by descending score, then by user name.
func RankSample(sample map[string]float64) []Ranked {
	out := make([]Ranked, 0, len(sample))
	for user, score := range sample {
		out = append(out, Ranked{User: user, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].User < out[j].User
	})
	return out
}

// ComputeTiers derives the six grades of a badge from its sampled population.
// Ranks missing from the sample make their tier unreachable (+Inf). Once the gold
// anchor exists, no tier above default drops below the default floor, so
// any population large enough to reach gold gets an ordered tier table.
func ComputeTiers(title string, sample map[string]float64, opts ...ThresholdOption) Tiers {
	cfg := thresholdConfig{goldRank: defaultGoldRank, decay: defaultDecay}
	for _, opt := range opts {
		opt(&cfg)
	}

	ranked := RankSample(sample)
	at := func(rank int) float64 {
		if rank < 0 || rank >= len(ranked) {
			return math.Inf(1)
		}
		return ranked[rank].Score
	}

	platinum := at(0)
	gold := RoundDown(at(cfg.goldRank), goldSignificant)
	silver := RoundDown(gold*cfg.decay, lowerSignificant)
	bronze := RoundDown(silver*cfg.decay, lowerSignificant)

	var tiers Tiers
	tiers[Locked] = Grade{Title: "Locked", MinScore: math.Inf(-1)}
	tiers[Default] = Grade{Title: title, MinScore: defaultTierFloor}
	tiers[Bronze] = Grade{Title: title, MinScore: bronze}
	tiers[Silver] = Grade{Title: title, MinScore: silver}
	tiers[Gold] = Grade{Title: title, MinScore: gold}
	tiers[Platinum] = Grade{Title: title, MinScore: platinum}

	if !math.IsInf(gold, 1) {
		for _, t := range []Tier{Bronze, Silver, Gold, Platinum} {
			tiers[t].MinScore = math.Max(tiers[t].MinScore, defaultTierFloor)
		}
	}
	if cfg.monotonic {
		for t := Bronze; t <= Platinum; t++ {
			if tiers[t].MinScore < tiers[t-1].MinScore {
				tiers[t].MinScore = tiers[t-1].MinScore
			}
		}
	}
	return tiers
}

// RoundDown truncates x to the given number of significant figures, toward zero.
// Non-positive values return 0 and infinities are returned unchanged.
func RoundDown(x float64, significant int) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case math.IsInf(x, 0):
		return x
	case x <= 0:
		return 0
	}
	if significant < 1 {
		significant = 1
	}
	pwr := magnitude(x) - (significant - 1)
	if pwr >= 0 {
		unit := math.Pow10(pwr)
		return floorSnap(x/unit) * unit
	}
	scale := math.Pow10(-pwr)
	return floorSnap(x*scale) / scale
}

// floorSnap is math.Floor, except that q within a few ulps of the next integer
// counts as that integer. 0.3*10 is 2.9999999999999996 in binary.
func floorSnap(q float64) float64 {
	r := math.Round(q)
	if r > q && r-q <= snapUlps*ulp(r) {
		return r
	}
	return math.Floor(q)
}

func ulp(x float64) float64 {
	return math.Nextafter(x, math.Inf(1)) - x
}

// magnitude returns floor(log10(x)) for x > 0, corrected for log10 imprecision
// around exact powers of ten.
func magnitude(x float64) int {
	m := int(math.Floor(math.Log10(x)))
	if math.Pow10(m+1) <= x {
		m++
	} else if math.Pow10(m) > x {
		m--
	}
	return m
}
