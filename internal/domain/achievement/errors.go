package achievement

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNoScoringFunc = errors.New("badge has no scoring function")
	ErrUnknownTier   = errors.New("unknown tier")
)
