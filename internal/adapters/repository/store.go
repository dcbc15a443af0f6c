// Package repository serves leaderboard and rank queries over badge populations.
package repository

import (
	"context"

	"github.com/okian/medallion/internal/domain/types"
)

// Store provides read access to one badge's ranking.
type Store interface {
	// Rank returns the rank and score of a user.
	// Returns ErrNotFound if the user has no positive score.
	Rank(ctx context.Context, user string) (types.Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of ranked users.
	Count(ctx context.Context) int
}
