package dataset

// Builder accumulates raw records and produces an immutable Index.
// A Builder is not safe for concurrent use.
type Builder struct {
	individual  map[string]map[string]map[string]Score
	collective  map[string]map[string]CollectiveScore
	comparisons map[string]map[string]map[string][]Comparison

	individualRows int
	collectiveRows int
	comparisonRows int
	duplicates     int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		individual:  make(map[string]map[string]map[string]Score),
		collective:  make(map[string]map[string]CollectiveScore),
		comparisons: make(map[string]map[string]map[string][]Comparison),
	}
}

// AddIndividualScore records a user's score. A repeated (user, item, criterion)
// triple replaces the earlier entry and is reported by returning true.
func (b *Builder) AddIndividualScore(user, item, criterion string, s Score) bool {
	items, ok := b.individual[user]
	if !ok {
		items = make(map[string]map[string]Score)
		b.individual[user] = items
	}
	byCriterion, ok := items[item]
	if !ok {
		byCriterion = make(map[string]Score)
		items[item] = byCriterion
	}
	_, replaced := byCriterion[criterion]
	byCriterion[criterion] = s
	if replaced {
		b.duplicates++
	} else {
		b.individualRows++
	}
	return replaced
}

// AddCollectiveScore records the collective score of an item. Last write wins.
func (b *Builder) AddCollectiveScore(item, criterion string, s CollectiveScore) {
	byCriterion, ok := b.collective[item]
	if !ok {
		byCriterion = make(map[string]CollectiveScore)
		b.collective[item] = byCriterion
	}
	if _, exists := byCriterion[criterion]; !exists {
		b.collectiveRows++
	}
	byCriterion[criterion] = s
}

// AddComparison appends a comparison to its user/criterion/bucket sequence.
func (b *Builder) AddComparison(c Comparison) {
	byCriterion, ok := b.comparisons[c.User]
	if !ok {
		byCriterion = make(map[string]map[string][]Comparison)
		b.comparisons[c.User] = byCriterion
	}
	byBucket, ok := byCriterion[c.Criterion]
	if !ok {
		byBucket = make(map[string][]Comparison)
		byCriterion[c.Criterion] = byBucket
	}
	byBucket[c.Bucket] = append(byBucket[c.Bucket], c)
	b.comparisonRows++
}

// Duplicates returns how many individual score rows replaced an earlier one.
func (b *Builder) Duplicates() int {
	return b.duplicates
}

// Build derives contributor counts and returns the Index. The Builder must not be
// used afterwards; the Index takes ownership of the accumulated maps.
func (b *Builder) Build() *Index {
	contributors := make(map[string]map[string]int)
	for _, items := range b.individual {
		for item, byCriterion := range items {
			counts, ok := contributors[item]
			if !ok {
				counts = make(map[string]int)
				contributors[item] = counts
			}
			for criterion := range byCriterion {
				counts[criterion]++
			}
		}
	}

	known := make(map[string]struct{}, len(b.individual)+len(b.comparisons))
	for user := range b.individual {
		known[user] = struct{}{}
	}
	for user := range b.comparisons {
		known[user] = struct{}{}
	}

	items := make(map[string]struct{}, len(contributors))
	for item := range contributors {
		items[item] = struct{}{}
	}
	buckets := make(map[string]struct{})
	for _, byCriterion := range b.comparisons {
		for _, byBucket := range byCriterion {
			for bucket, records := range byBucket {
				buckets[bucket] = struct{}{}
				for _, c := range records {
					items[c.ItemA] = struct{}{}
					items[c.ItemB] = struct{}{}
				}
			}
		}
	}
	for item := range b.collective {
		items[item] = struct{}{}
	}

	ix := &Index{
		individual:   b.individual,
		collective:   b.collective,
		comparisons:  b.comparisons,
		contributors: contributors,
		users:        sortedKeys(known),
		stats: Stats{
			Users:             len(known),
			Items:             len(items),
			IndividualScores:  b.individualRows,
			CollectiveScores:  b.collectiveRows,
			Comparisons:       b.comparisonRows,
			DuplicateScores:   b.duplicates,
			ContributedItems:  len(contributors),
			ComparisonBuckets: len(buckets),
		},
	}
	b.individual, b.collective, b.comparisons = nil, nil, nil
	return ix
}
