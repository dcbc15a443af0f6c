package repository

import "errors"

var (
	// ErrNotFound is returned by Rank for users absent from a board.
	ErrNotFound = errors.New("user not ranked")
	// ErrInvalidLimit is returned by TopN for a non-positive n.
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
