package repository

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"github.com/okian/medallion/internal/domain/types"
	"github.com/okian/medallion/pkg/metrics"
)

// Treap-based, immutable Store implementation.
//
// Ordering: score DESC, then user ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the
// leaderboard from best to worst. Priorities are hashes of the user
// name, which keeps the tree balanced and the layout reproducible.

type node struct {
	user  string
	score float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aUser) should appear before (bScore, bUser).
func less(aScore float64, aUser string, bScore float64, bUser string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aUser < bUser
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func priority(user string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(user))
	return h.Sum64()
}

func insert(n *node, user string, score float64) *node {
	if n == nil {
		return &node{user: user, score: score, prio: priority(user), size: 1}
	}
	if less(score, user, n.score, n.user) {
		n.left = insert(n.left, user, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, user, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, types.Entry{User: n.user, Score: n.score})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// Board ranks the sampled population of one badge. It is built once and
// never mutated, so reads need no locking.
type Board struct {
	badge string
	root  *node
	ranks map[string]types.Entry
}

// NewBoard indexes scores for badge. Non-finite scores are skipped.
func NewBoard(badge string, scores map[string]float64) *Board {
	b := &Board{badge: badge, ranks: make(map[string]types.Entry, len(scores))}
	for user, score := range scores {
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		b.root = insert(b.root, user, score)
	}

	all := make([]types.Entry, 0, nsize(b.root))
	collectTopN(b.root, nsize(b.root), &all)
	assignRanksWithTies(all)
	for _, e := range all {
		b.ranks[e.User] = e
	}
	return b
}

// Badge returns the badge the board ranks.
func (b *Board) Badge() string {
	return b.badge
}

// Rank returns the rank and score of user.
func (b *Board) Rank(ctx context.Context, user string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency("rank", float64(time.Since(start).Milliseconds()))
	}()

	e, ok := b.ranks[user]
	if !ok {
		return types.Entry{}, ErrNotFound
	}
	return e, nil
}

// TopN returns the top n entries ordered by score desc.
func (b *Board) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency("leaderboard", float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	out := make([]types.Entry, 0, min(n, nsize(b.root)))
	collectTopN(b.root, n, &out)
	for i := range out {
		out[i].Rank = b.ranks[out[i].User].Rank
	}
	return out, nil
}

// Count returns the number of ranked users.
func (b *Board) Count(ctx context.Context) int {
	return nsize(b.root)
}

// assignRanksWithTies assigns dense ranks: equal scores share a rank and the
// next distinct score takes the following rank.
func assignRanksWithTies(entries []types.Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			rank++
		}
		entries[i].Rank = rank
	}
}
