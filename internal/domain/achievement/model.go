package achievement

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/medallion/internal/domain/dataset"
)

// ScoringFunc computes a user's metric for a badge. It must be pure and must
// return 0 for users or nested entries missing from the index.
type ScoringFunc func(ix *dataset.Index, user string) float64

// Definition describes a badge before its population is sampled.
type Definition struct {
	ID    string
	Title string
	// Info is the unit shown next to progress, e.g. "videos compared".
	Info  string
	Score ScoringFunc
}

// Model is a badge graded against the whole population. It is immutable once built.
type Model struct {
	ID         string
	Title      string
	Info       string
	UserScores map[string]float64
	// MaxScore is the best sampled score; NaN when the population is empty.
	MaxScore float64
	Tiers    Tiers

	index *dataset.Index
	score ScoringFunc
}

// Sample evaluates fn for every user of the index and keeps finite, strictly
// positive scores only.
func Sample(ix *dataset.Index, fn ScoringFunc) (map[string]float64, error) {
	if err := ix.Validate(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, ErrNoScoringFunc
	}
	out := make(map[string]float64)
	for _, user := range ix.Users() {
		v := fn(ix, user)
		if v > 0 && !math.IsInf(v, 1) {
			out[user] = v
		}
	}
	return out, nil
}

// NewModel samples the population for def and computes its tiers. The context is
// checked once before sampling; a pass is never interrupted midway.
func NewModel(ctx context.Context, ix *dataset.Index, def Definition, opts ...ThresholdOption) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build badge %s: %w", def.ID, err)
	}
	sample, err := Sample(ix, def.Score)
	if err != nil {
		return nil, fmt.Errorf("build badge %s: %w", def.ID, err)
	}
	tiers := ComputeTiers(def.Title, sample, opts...)

	maxScore := math.NaN()
	if len(sample) > 0 {
		maxScore = tiers[Platinum].MinScore
	}
	return &Model{
		ID:         def.ID,
		Title:      def.Title,
		Info:       def.Info,
		UserScores: sample,
		MaxScore:   maxScore,
		Tiers:      tiers,
		index:      ix,
		score:      def.Score,
	}, nil
}

// Populated reports whether at least one user has a positive score.
func (m *Model) Populated() bool {
	return len(m.UserScores) > 0
}

// Population returns the number of sampled users.
func (m *Model) Population() int {
	return len(m.UserScores)
}

// ApplyForUser grades a single user. Users outside the sample are re-scored so
// that zero and negative metrics still report their exact progress.
func (m *Model) ApplyForUser(user string) UserBadge {
	progress, ok := m.UserScores[user]
	if !ok {
		progress = 0
		if m.score != nil && m.index != nil {
			if v := m.score(m.index, user); !math.IsNaN(v) && !math.IsInf(v, 0) {
				progress = v
			}
		}
	}
	return UserBadge{
		Model:    m,
		User:     user,
		Progress: progress,
		Tier:     AssignTier(progress, m.Tiers),
	}
}
