// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the dataset zip archive or an unpacked directory.
	DatasetPath string `koanf:"dataset_path"`

	// Criterion is the main comparison criterion used by activity badges.
	Criterion string `koanf:"criterion"`

	// MinContributors is the number of distinct contributors an item needs
	// before its comparisons earn temporal credits.
	MinContributors int `koanf:"min_contributors"`

	// EarlyPoolSize is the number of users the early pool is grown to.
	EarlyPoolSize int `koanf:"early_pool_size"`

	// PodiumSize is the number of places on each weekly podium.
	PodiumSize int `koanf:"podium_size"`

	// GoldRank is the 0-indexed rank whose score anchors the gold tier.
	GoldRank int `koanf:"gold_rank"`

	// TierDecay is the factor from gold to silver and from silver to bronze.
	TierDecay float64 `koanf:"tier_decay"`

	// MonotonicTiers raises each tier threshold to at least the one below.
	MonotonicTiers bool `koanf:"monotonic_tiers"`

	// WorkerCount sets the number of badge build workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxLeaderboardLimit caps GET /badges/{id}/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RateLimitRPS and RateLimitBurst bound requests per client. Zero disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DatasetPath:         "tournesol_dataset.zip",
		Criterion:           "largely_recommended",
		MinContributors:     3,
		EarlyPoolSize:       3,
		PodiumSize:          10,
		GoldRank:            10,
		TierDecay:           0.33,
		MonotonicTiers:      false,
		WorkerCount:         runtime.NumCPU(),
		MaxLeaderboardLimit: 100,
		RateLimitRPS:        50,
		RateLimitBurst:      100,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Criterion) == "":
		return fmt.Errorf("%w: criterion must not be empty", ErrInvalidConfig)
	case c.MinContributors < 0:
		return fmt.Errorf("%w: min_contributors must not be negative", ErrInvalidConfig)
	case c.EarlyPoolSize < 1:
		return fmt.Errorf("%w: early_pool_size must be positive", ErrInvalidConfig)
	case c.PodiumSize < 1:
		return fmt.Errorf("%w: podium_size must be positive", ErrInvalidConfig)
	case c.GoldRank < 0:
		return fmt.Errorf("%w: gold_rank must not be negative", ErrInvalidConfig)
	case c.TierDecay <= 0 || c.TierDecay >= 1:
		return fmt.Errorf("%w: tier_decay must be in (0, 1)", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.RateLimitRPS < 0 || c.RateLimitBurst < 0:
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
