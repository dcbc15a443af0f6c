package service

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNoDataset    = errors.New("no dataset configured")
	ErrUnknownBadge = errors.New("unknown badge")
	ErrUnknownUser  = errors.New("unknown user")
	ErrBuildBadges  = errors.New("badge build failed")
)
