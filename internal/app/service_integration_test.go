package service_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/medallion/internal/adapters/ingest"
	service "github.com/okian/medallion/internal/app"
	"github.com/okian/medallion/internal/datagen"
	"github.com/okian/medallion/internal/domain/achievement"
	"github.com/okian/medallion/internal/domain/catalog"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a generated dataset archive on disk", t, func() {
		cfg := datagen.DefaultConfig()
		cfg.Users = 60
		d, err := datagen.Generate(cfg)
		So(err, ShouldBeNil)
		path := filepath.Join(t.TempDir(), "dataset.zip")
		So(d.WriteFile(path), ShouldBeNil)

		svc := service.New(
			service.WithDatasetPath(path),
			service.WithWorkerCount(4),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then every user gets badges ordered by tier, then progress", func() {
			for _, user := range d.Users {
				badges, err := svc.UserBadges(ctx, user, true)
				So(err, ShouldBeNil)
				for i := 1; i < len(badges); i++ {
					prev, _ := achievement.ParseTier(badges[i-1].Tier)
					cur, _ := achievement.ParseTier(badges[i].Tier)
					So(prev, ShouldBeGreaterThanOrEqualTo, cur)
					if prev == cur {
						So(badges[i-1].TotalProgress, ShouldBeGreaterThanOrEqualTo, badges[i].TotalProgress)
					}
				}
			}
		})

		Convey("Then thresholds are ordered", func() {
			b, err := svc.Badge(ctx, catalog.Comparator)
			So(err, ShouldBeNil)
			So(b.Population, ShouldEqual, len(d.Users))

			badges, err := svc.Badges(ctx)
			So(err, ShouldBeNil)
			for _, b := range badges {
				if b.Population < 11 {
					continue
				}
				last := math.Inf(-1)
				for _, g := range b.Grades[1:] {
					So(g.MinScore, ShouldNotBeNil)
					if *g.MinScore < last {
						t.Errorf("%s: %s threshold %v below previous %v", b.ID, g.Tier, *g.MinScore, last)
					}
					last = *g.MinScore
				}
			}
		})

		Convey("Then leaderboard and rank agree", func() {
			top, err := svc.TopN(ctx, catalog.Comparator, 10)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 10)
			for _, e := range top {
				got, err := svc.Rank(ctx, catalog.Comparator, e.User)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, e)
			}
		})

		Convey("Then the best platinum user holds rank one", func() {
			top, err := svc.TopN(ctx, catalog.Comparator, 1)
			So(err, ShouldBeNil)
			badges, err := svc.UserBadges(ctx, top[0].User, false)
			So(err, ShouldBeNil)
			So(badges[0].Tier, ShouldEqual, "platinum")
		})
	})

	Convey("Given a missing archive", t, func() {
		svc := service.New(service.WithDatasetPath(filepath.Join(t.TempDir(), "missing.zip")))
		err := svc.Start(context.Background())
		So(err, ShouldNotBeNil)
		So(errors.Is(err, ingest.ErrFormat), ShouldBeFalse)
	})
}
