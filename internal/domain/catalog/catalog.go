// Package catalog declares the badges offered to users.
package catalog

import (
	"fmt"
	"strings"

	"github.com/okian/medallion/internal/domain/achievement"
	"github.com/okian/medallion/internal/domain/contribution"
	"github.com/okian/medallion/internal/domain/dataset"
	"github.com/okian/medallion/internal/domain/podium"
	"github.com/okian/medallion/internal/domain/scoring"
)

// Criterion is a secondary comparison criterion and its display name.
type Criterion struct {
	Key   string
	Label string
}

// SecondaryCriteria are the optional criteria each earning a Comparator badge.
var SecondaryCriteria = []Criterion{
	{"importance", "Importance"},
	{"better_habits", "Better Habits"},
	{"layman_friendly", "Layman Friendly"},
	{"backfire_risk", "Backfire Risk"},
	{"entertaining_relaxing", "Entertaining & Relaxing"},
	{"diversity_inclusion", "Diversity & Inclusion"},
	{"reliability", "Reliability"},
	{"engaging", "Engaging"},
	{"pedagogy", "Pedagogy"},
}

// Badge identifiers.
const (
	ContentContributor = "content-contributor"
	ActiveMember       = "active-member"
	TrustedContributor = "trusted-contributor"
	Comparator         = "comparator"
	FirstContributor   = "first-contributor"
	EarlyContributor   = "early-contributor"
	FollowContributor  = "follow-up-contributor"
	WeeklyPodium       = "weekly-podium"
)

type options struct {
	criterion string
	secondary []Criterion
}

// Option configures Build.
type Option func(*options)

// WithCriterion sets the main criterion used by activity badges.
func WithCriterion(c string) Option {
	return func(o *options) {
		if c != "" {
			o.criterion = c
		}
	}
}

// WithSecondaryCriteria replaces the criteria that earn a Comparator badge each.
func WithSecondaryCriteria(cs ...Criterion) Option {
	return func(o *options) {
		o.secondary = cs
	}
}

// ComparatorID returns the badge id for comparisons under a secondary criterion.
func ComparatorID(criterion string) string {
	return Comparator + "-" + strings.ReplaceAll(criterion, "_", "-")
}

// Build returns the badge definitions in display order. The pre-pass results feed
// the temporal badges.
func Build(credits contribution.Credits, tally podium.Tally, opts ...Option) []achievement.Definition {
	o := options{criterion: dataset.MainCriterion, secondary: SecondaryCriteria}
	for _, opt := range opts {
		opt(&o)
	}

	defs := []achievement.Definition{
		{ID: ContentContributor, Title: "Content Contributor", Info: "videos compared", Score: scoring.ComparedItems},
		{ID: ActiveMember, Title: "Active Member", Info: "weeks of activity", Score: scoring.ActiveBuckets(o.criterion)},
		{ID: TrustedContributor, Title: "Trusted Contributor", Info: "voting right", Score: scoring.VotingRight(o.criterion)},
		{ID: Comparator, Title: "Comparator", Info: "comparisons", Score: scoring.Comparisons(o.criterion)},
	}
	for _, c := range o.secondary {
		defs = append(defs, achievement.Definition{
			ID:    ComparatorID(c.Key),
			Title: "Comparator of " + c.Label,
			Info:  "comparisons with criteria " + c.Label,
			Score: scoring.Comparisons(c.Key),
		})
	}
	return append(defs,
		achievement.Definition{ID: FirstContributor, Title: "First Contributor", Info: "first comparisons on video", Score: scoring.FirstCredits(credits)},
		achievement.Definition{ID: EarlyContributor, Title: "Early Contributor", Info: "early comparisons", Score: scoring.EarlyCredits(credits)},
		achievement.Definition{ID: FollowContributor, Title: "Follow-up Contributor", Info: "follow-up comparisons", Score: scoring.FollowCredits(credits)},
		achievement.Definition{
			ID:    WeeklyPodium,
			Title: "Presence in Weekly Podium",
			Info:  fmt.Sprintf("weeks as top %d contributor", tally.Size()),
			Score: scoring.PodiumPresence(tally),
		},
	)
}
