// Package types contains the read shapes shared by the service and the HTTP layer.
package types

import (
	"math"

	"github.com/okian/medallion/internal/domain/achievement"
)

// Entry represents a leaderboard entry
type Entry struct {
	Rank  int     `json:"rank"`
	User  string  `json:"user"`
	Score float64 `json:"score"`
}

// Grade is one tier of a badge. MinScore is nil when the tier is unreachable
// or is the locked floor.
type Grade struct {
	Tier     string   `json:"tier"`
	Title    string   `json:"title"`
	MinScore *float64 `json:"min_score"`
}

// Badge describes a badge model and its thresholds.
type Badge struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Info       string   `json:"info"`
	Population int      `json:"population"`
	MaxScore   *float64 `json:"max_score"`
	Grades     []Grade  `json:"grades"`
}

// UserBadge is a badge as earned by one user.
type UserBadge struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Info          string   `json:"info"`
	Tier          string   `json:"tier"`
	Label         string   `json:"label"`
	Progress      float64  `json:"progress"`
	TotalProgress float64  `json:"total_progress"`
	GradeProgress float64  `json:"grade_progress"`
	NextTier      string   `json:"next_tier,omitempty"`
	NextMinScore  *float64 `json:"next_min_score,omitempty"`
}

// Finite returns a pointer to x, or nil when x is NaN or infinite.
func Finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

// NewBadge renders a model.
func NewBadge(m *achievement.Model) Badge {
	grades := make([]Grade, 0, len(achievement.Order))
	for _, t := range achievement.Order {
		g := m.Tiers.Get(t)
		grades = append(grades, Grade{Tier: t.String(), Title: g.Title, MinScore: Finite(g.MinScore)})
	}
	return Badge{
		ID:         m.ID,
		Title:      m.Title,
		Info:       m.Info,
		Population: m.Population(),
		MaxScore:   Finite(m.MaxScore),
		Grades:     grades,
	}
}

// NewUserBadge renders a badge applied to a user.
func NewUserBadge(b achievement.UserBadge) UserBadge {
	out := UserBadge{
		ID:            b.Model.ID,
		Title:         b.Model.Title,
		Info:          b.Model.Info,
		Tier:          b.Tier.String(),
		Label:         b.Tier.Label(),
		Progress:      b.Progress,
		TotalProgress: b.TotalProgress(),
		GradeProgress: b.CurrentGradeProgress(),
	}
	if next, ok := b.NextTier(); ok {
		out.NextTier = next.String()
		out.NextMinScore = Finite(b.Model.Tiers.Get(next).MinScore)
	}
	return out
}

// Contributions lists the items on which a user earned temporal credit, and the
// number of weekly podiums the user appears on.
type Contributions struct {
	User        string   `json:"user"`
	First       []string `json:"first"`
	Early       []string `json:"early"`
	Follow      []string `json:"follow"`
	PodiumWeeks int      `json:"podium_weeks"`
}
