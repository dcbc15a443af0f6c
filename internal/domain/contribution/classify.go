// Package contribution credits users for how early they contributed to each item.
//
// For every item the comparison timeline is split into buckets. A user alone in the
// earliest bucket is the first contributor, the next distinct users up to the pool
// size are early contributors, and everyone after them follows.
package contribution

import (
	"sort"

	"github.com/okian/medallion/internal/domain/dataset"
)

const (
	defaultMinContributors = 3
	defaultEarlyPoolSize   = 3
)

// UserCredits lists the items a user was credited for, by kind.
// An item appears in at most one of the three lists.
type UserCredits struct {
	First  []string `json:"first"`
	Early  []string `json:"early"`
	Follow []string `json:"follow"`
}

// Credits maps users to their credits.
type Credits map[string]UserCredits

// For returns the credits of user, empty for users without any.
func (c Credits) For(user string) UserCredits {
	return c[user]
}

// Totals returns how many first, early and follow credits were handed out.
func (c Credits) Totals() (first, early, follow int) {
	for _, uc := range c {
		first += len(uc.First)
		early += len(uc.Early)
		follow += len(uc.Follow)
	}
	return first, early, follow
}

type options struct {
	criterion       string
	minContributors int
	earlyPoolSize   int
}

// Option configures Classify.
type Option func(*options)

// WithCriterion selects the criterion whose comparisons define the timeline.
func WithCriterion(c string) Option {
	return func(o *options) {
		if c != "" {
			o.criterion = c
		}
	}
}

// WithMinContributors skips items scored by fewer distinct users.
func WithMinContributors(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.minContributors = n
		}
	}
}

// WithEarlyPoolSize sets how many distinct early contributors fill the pool.
func WithEarlyPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.earlyPoolSize = n
		}
	}
}

// Classify walks every item's timeline once and returns the credits of each user.
// Items, buckets and users are visited in sorted order so the result is reproducible.
func Classify(ix *dataset.Index, opts ...Option) (Credits, error) {
	if err := ix.Validate(); err != nil {
		return nil, err
	}
	o := options{
		criterion:       dataset.MainCriterion,
		minContributors: defaultMinContributors,
		earlyPoolSize:   defaultEarlyPoolSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	timelines := make(map[string]map[string]map[string]struct{})
	touch := func(item, bucket, user string) {
		byBucket, ok := timelines[item]
		if !ok {
			byBucket = make(map[string]map[string]struct{})
			timelines[item] = byBucket
		}
		users, ok := byBucket[bucket]
		if !ok {
			users = make(map[string]struct{})
			byBucket[bucket] = users
		}
		users[user] = struct{}{}
	}
	ix.EachComparison(o.criterion, func(c dataset.Comparison) {
		touch(c.ItemA, c.Bucket, c.User)
		touch(c.ItemB, c.Bucket, c.User)
	})

	credits := make(Credits)
	credit := func(user string, add func(*UserCredits)) {
		uc := credits[user]
		add(&uc)
		credits[user] = uc
	}

	for _, item := range sortedKeys(timelines) {
		if ix.ContributorCount(item, o.criterion) < o.minContributors {
			continue
		}
		byBucket := timelines[item]
		buckets := sortedKeys(byBucket)

		seen := make(map[string]struct{})
		earliest := sortedKeys(byBucket[buckets[0]])
		buckets = buckets[1:]

		var pool []string
		if len(earliest) == 1 {
			credit(earliest[0], func(uc *UserCredits) { uc.First = append(uc.First, item) })
		} else {
			pool = earliest
		}
		for _, user := range earliest {
			seen[user] = struct{}{}
		}

		for len(pool) < o.earlyPoolSize && len(buckets) > 0 {
			for _, user := range sortedKeys(byBucket[buckets[0]]) {
				if _, dup := seen[user]; dup {
					continue
				}
				seen[user] = struct{}{}
				pool = append(pool, user)
			}
			buckets = buckets[1:]
		}
		for _, user := range pool {
			credit(user, func(uc *UserCredits) { uc.Early = append(uc.Early, item) })
		}

		for _, bucket := range buckets {
			for _, user := range sortedKeys(byBucket[bucket]) {
				if _, dup := seen[user]; dup {
					continue
				}
				seen[user] = struct{}{}
				credit(user, func(uc *UserCredits) { uc.Follow = append(uc.Follow, item) })
			}
		}
	}
	return credits, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
