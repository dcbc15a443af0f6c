// Package dataset holds the immutable, keyed view of a loaded comparison dataset.
//
// An Index is produced once by a Builder and is read-only afterwards, so it can be
// shared freely between goroutines without locking.
package dataset

import (
	"sort"
)

// MainCriterion is the criterion every comparison is made under; secondary
// criteria are optional.
const MainCriterion = "largely_recommended"

// Score is one user's individual score for an item under a criterion.
type Score struct {
	Score       float64
	VotingRight float64
}

// CollectiveScore is the aggregated score of an item under a criterion.
type CollectiveScore struct {
	Score float64
}

// Comparison is a single pairwise comparison contributed by a user.
type Comparison struct {
	User      string
	ItemA     string
	ItemB     string
	Criterion string
	Value     float64
	Bucket    string
}

// Stats summarizes the size of an Index.
type Stats struct {
	Users             int `json:"users"`
	Items             int `json:"items"`
	IndividualScores  int `json:"individual_scores"`
	CollectiveScores  int `json:"collective_scores"`
	Comparisons       int `json:"comparisons"`
	DuplicateScores   int `json:"duplicate_scores"`
	ContributedItems  int `json:"contributed_items"`
	ComparisonBuckets int `json:"comparison_buckets"`
}

// Index is the read-only dataset substrate consumed by the achievement engine.
type Index struct {
	// user -> item -> criterion -> score
	individual map[string]map[string]map[string]Score
	// item -> criterion -> score
	collective map[string]map[string]CollectiveScore
	// user -> criterion -> bucket -> comparisons (insertion order)
	comparisons map[string]map[string]map[string][]Comparison
	// item -> criterion -> distinct users with an individual score
	contributors map[string]map[string]int

	users []string
	stats Stats
}

// getOrDefault is the single nested-map accessor used by every lookup below.
// Missing keys at any level resolve to def.
func getOrDefault[V any](m map[string]V, key string, def V) V {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// Validate reports ErrMalformedIndex when the index was not produced by a Builder.
func (ix *Index) Validate() error {
	if ix == nil {
		return ErrMalformedIndex
	}
	if ix.individual == nil || ix.collective == nil || ix.comparisons == nil || ix.contributors == nil {
		return ErrMalformedIndex
	}
	return nil
}

// Users returns every known user (individual scores or comparisons), sorted.
func (ix *Index) Users() []string {
	out := make([]string, len(ix.users))
	copy(out, ix.users)
	return out
}

// HasUser reports whether the user contributed anything to the dataset.
func (ix *Index) HasUser(user string) bool {
	_, scored := ix.individual[user]
	_, compared := ix.comparisons[user]
	return scored || compared
}

// Items returns the items a user scored, sorted.
func (ix *Index) Items(user string) []string {
	return sortedKeys(getOrDefault(ix.individual, user, nil))
}

// ItemCount returns how many distinct items a user scored.
func (ix *Index) ItemCount(user string) int {
	return len(getOrDefault(ix.individual, user, nil))
}

// IndividualScore returns the user's score for item under criterion.
func (ix *Index) IndividualScore(user, item, criterion string) (Score, bool) {
	byCriterion := getOrDefault(getOrDefault(ix.individual, user, nil), item, nil)
	s, ok := byCriterion[criterion]
	return s, ok
}

// EachIndividualScore calls fn for every criterion score of user, in item then criterion order.
func (ix *Index) EachIndividualScore(user string, fn func(item, criterion string, s Score)) {
	items := getOrDefault(ix.individual, user, nil)
	for _, item := range sortedKeys(items) {
		for _, criterion := range sortedKeys(items[item]) {
			fn(item, criterion, items[item][criterion])
		}
	}
}

// CollectiveScore returns the collective score of item under criterion.
func (ix *Index) CollectiveScore(item, criterion string) (CollectiveScore, bool) {
	s, ok := getOrDefault(ix.collective, item, nil)[criterion]
	return s, ok
}

// Criteria returns the criteria a user compared under, sorted.
func (ix *Index) Criteria(user string) []string {
	return sortedKeys(getOrDefault(ix.comparisons, user, nil))
}

// Buckets returns the time buckets in which a user compared under criterion, ascending.
func (ix *Index) Buckets(user, criterion string) []string {
	return sortedKeys(getOrDefault(getOrDefault(ix.comparisons, user, nil), criterion, nil))
}

// Comparisons returns the comparisons of a user in one bucket under criterion.
func (ix *Index) Comparisons(user, criterion, bucket string) []Comparison {
	byBucket := getOrDefault(getOrDefault(ix.comparisons, user, nil), criterion, nil)
	return getOrDefault(byBucket, bucket, nil)
}

// ComparisonCount returns the total comparisons of a user under criterion.
func (ix *Index) ComparisonCount(user, criterion string) int {
	n := 0
	for _, records := range getOrDefault(getOrDefault(ix.comparisons, user, nil), criterion, nil) {
		n += len(records)
	}
	return n
}

// EachComparison calls fn for every comparison under criterion, ordered by user then bucket.
func (ix *Index) EachComparison(criterion string, fn func(c Comparison)) {
	for _, user := range sortedKeys(ix.comparisons) {
		byBucket := getOrDefault(ix.comparisons[user], criterion, nil)
		for _, bucket := range sortedKeys(byBucket) {
			for _, c := range byBucket[bucket] {
				fn(c)
			}
		}
	}
}

// ContributorCount returns how many distinct users scored item under criterion.
func (ix *Index) ContributorCount(item, criterion string) int {
	return getOrDefault(getOrDefault(ix.contributors, item, nil), criterion, 0)
}

// Stats returns the index size summary computed at build time.
func (ix *Index) Stats() Stats {
	return ix.stats
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
