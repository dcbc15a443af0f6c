package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/medallion/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Criterion, convey.ShouldEqual, "largely_recommended")
			convey.So(cfg.MinContributors, convey.ShouldEqual, 3)
			convey.So(cfg.EarlyPoolSize, convey.ShouldEqual, 3)
			convey.So(cfg.PodiumSize, convey.ShouldEqual, 10)
			convey.So(cfg.GoldRank, convey.ShouldEqual, 10)
			convey.So(cfg.TierDecay, convey.ShouldEqual, 0.33)
			convey.So(cfg.MonotonicTiers, convey.ShouldBeFalse)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"empty addr":        func(c *config.Config) { c.Addr = "" },
		"blank criterion":   func(c *config.Config) { c.Criterion = "  " },
		"negative min":      func(c *config.Config) { c.MinContributors = -1 },
		"zero pool":         func(c *config.Config) { c.EarlyPoolSize = 0 },
		"zero podium":       func(c *config.Config) { c.PodiumSize = 0 },
		"negative rank":     func(c *config.Config) { c.GoldRank = -1 },
		"decay of one":      func(c *config.Config) { c.TierDecay = 1 },
		"zero limit":        func(c *config.Config) { c.MaxLeaderboardLimit = 0 },
		"negative rps":      func(c *config.Config) { c.RateLimitRPS = -1 },
		"unknown logformat": func(c *config.Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.New()
			mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
