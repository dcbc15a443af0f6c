// Package scoring provides the metrics badges are graded on.
//
// Every function here is pure and tolerates users missing from the index or from
// the pre-pass results; such users score 0.
package scoring

import (
	"github.com/okian/medallion/internal/domain/achievement"
	"github.com/okian/medallion/internal/domain/contribution"
	"github.com/okian/medallion/internal/domain/dataset"
	"github.com/okian/medallion/internal/domain/podium"
)

// ComparedItems counts the distinct items a user scored.
func ComparedItems(ix *dataset.Index, user string) float64 {
	return float64(ix.ItemCount(user))
}

// ActiveBuckets counts the buckets in which a user compared under criterion.
func ActiveBuckets(criterion string) achievement.ScoringFunc {
	return func(ix *dataset.Index, user string) float64 {
		return float64(len(ix.Buckets(user, criterion)))
	}
}

// Comparisons counts a user's comparisons under criterion.
func Comparisons(criterion string) achievement.ScoringFunc {
	return func(ix *dataset.Index, user string) float64 {
		return float64(ix.ComparisonCount(user, criterion))
	}
}

// VotingRight sums the voting right a user holds over the items scored under criterion.
func VotingRight(criterion string) achievement.ScoringFunc {
	return func(ix *dataset.Index, user string) float64 {
		var sum float64
		ix.EachIndividualScore(user, func(_, c string, s dataset.Score) {
			if c == criterion {
				sum += s.VotingRight
			}
		})
		return sum
	}
}

// FirstCredits counts the items a user contributed to first.
func FirstCredits(credits contribution.Credits) achievement.ScoringFunc {
	return func(_ *dataset.Index, user string) float64 {
		return float64(len(credits.For(user).First))
	}
}

// EarlyCredits counts the items a user contributed to early.
func EarlyCredits(credits contribution.Credits) achievement.ScoringFunc {
	return func(_ *dataset.Index, user string) float64 {
		return float64(len(credits.For(user).Early))
	}
}

// FollowCredits counts the items a user contributed to after the early pool filled.
func FollowCredits(credits contribution.Credits) achievement.ScoringFunc {
	return func(_ *dataset.Index, user string) float64 {
		return float64(len(credits.For(user).Follow))
	}
}

// PodiumPresence counts the buckets in which a user reached the podium.
func PodiumPresence(tally podium.Tally) achievement.ScoringFunc {
	return func(_ *dataset.Index, user string) float64 {
		return float64(tally.For(user))
	}
}
