// Package podium tallies how often each user ranks among the most active
// contributors of a time bucket.
package podium

import (
	"sort"

	"github.com/okian/medallion/internal/domain/dataset"
)

const defaultSize = 10

// Standing is one user's comparison volume within a bucket.
type Standing struct {
	User        string `json:"user"`
	Comparisons int    `json:"comparisons"`
}

// Tally is the podium of every bucket plus per-user presence counts.
type Tally struct {
	size    int
	counts  map[string]int
	podiums map[string][]Standing
	buckets []string
}

// For returns how many buckets user reached the podium of.
func (t Tally) For(user string) int {
	return t.counts[user]
}

// Buckets returns every bucket with at least one comparison, ascending.
func (t Tally) Buckets() []string {
	out := make([]string, len(t.buckets))
	copy(out, t.buckets)
	return out
}

// Podium returns the ranked standings kept for bucket.
func (t Tally) Podium(bucket string) []Standing {
	return t.podiums[bucket]
}

// Size returns the number of places on each podium.
func (t Tally) Size() int {
	return t.size
}

// Users returns the number of distinct users that reached any podium.
func (t Tally) Users() int {
	return len(t.counts)
}

type options struct {
	criterion string
	size      int
}

// Option configures Compute.
type Option func(*options)

// WithCriterion selects the criterion whose comparisons are counted.
func WithCriterion(c string) Option {
	return func(o *options) {
		if c != "" {
			o.criterion = c
		}
	}
}

// WithSize sets the number of places on each podium.
func WithSize(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.size = k
		}
	}
}

// Compute ranks users by comparison count within each bucket and keeps the top k.
// Equal counts are ordered by user name.
func Compute(ix *dataset.Index, opts ...Option) (Tally, error) {
	if err := ix.Validate(); err != nil {
		return Tally{}, err
	}
	o := options{criterion: dataset.MainCriterion, size: defaultSize}
	for _, opt := range opts {
		opt(&o)
	}

	volume := make(map[string]map[string]int)
	ix.EachComparison(o.criterion, func(c dataset.Comparison) {
		byUser, ok := volume[c.Bucket]
		if !ok {
			byUser = make(map[string]int)
			volume[c.Bucket] = byUser
		}
		byUser[c.User]++
	})

	t := Tally{
		size:    o.size,
		counts:  make(map[string]int),
		podiums: make(map[string][]Standing, len(volume)),
		buckets: make([]string, 0, len(volume)),
	}
	for bucket, byUser := range volume {
		standings := make([]Standing, 0, len(byUser))
		for user, n := range byUser {
			standings = append(standings, Standing{User: user, Comparisons: n})
		}
		sort.Slice(standings, func(i, j int) bool {
			if standings[i].Comparisons != standings[j].Comparisons {
				return standings[i].Comparisons > standings[j].Comparisons
			}
			return standings[i].User < standings[j].User
		})
		if len(standings) > o.size {
			standings = standings[:o.size]
		}
		for _, s := range standings {
			t.counts[s.User]++
		}
		t.podiums[bucket] = standings
		t.buckets = append(t.buckets, bucket)
	}
	sort.Strings(t.buckets)
	return t, nil
}
