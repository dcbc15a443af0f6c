package config

import "errors"

// Errors returned by Load and Validate; match them with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid medallion config")
	ErrLoadConfig    = errors.New("cannot load medallion config")
)
