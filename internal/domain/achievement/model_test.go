package achievement_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/medallion/internal/domain/achievement"
	"github.com/okian/medallion/internal/domain/dataset"
)

// itemsIndex gives user uNN exactly counts[NN] scored items.
func itemsIndex(counts ...int) *dataset.Index {
	b := dataset.NewBuilder()
	for u, n := range counts {
		user := fmt.Sprintf("u%02d", u)
		for i := 0; i < n; i++ {
			b.AddIndividualScore(user, fmt.Sprintf("v%03d", i), "largely_recommended", dataset.Score{Score: 1})
		}
	}
	return b.Build()
}

func itemCount(ix *dataset.Index, user string) float64 {
	return float64(ix.ItemCount(user))
}

func TestSample(t *testing.T) {
	Convey("Given users with zero, negative and infinite scores", t, func() {
		ix := itemsIndex(3, 1, 2)
		fn := func(ix *dataset.Index, user string) float64 {
			switch user {
			case "u00":
				return 3
			case "u01":
				return -1
			case "u02":
				return math.Inf(1)
			}
			return 0
		}

		Convey("Then only finite positive scores are kept", func() {
			sample, err := achievement.Sample(ix, fn)
			So(err, ShouldBeNil)
			So(sample, ShouldResemble, map[string]float64{"u00": 3})
		})
	})

	Convey("Given a malformed index", t, func() {
		_, err := achievement.Sample(&dataset.Index{}, itemCount)
		So(errors.Is(err, dataset.ErrMalformedIndex), ShouldBeTrue)

		_, err = achievement.Sample(nil, itemCount)
		So(errors.Is(err, dataset.ErrMalformedIndex), ShouldBeTrue)
	})

	Convey("Given no scoring function", t, func() {
		_, err := achievement.Sample(itemsIndex(1), nil)
		So(errors.Is(err, achievement.ErrNoScoringFunc), ShouldBeTrue)
	})
}

func TestNewModel(t *testing.T) {
	def := achievement.Definition{ID: "content", Title: "Content Contributor", Info: "videos compared", Score: itemCount}

	Convey("Given twelve users with distinct item counts", t, func() {
		counts := make([]int, 12)
		for i := range counts {
			counts[i] = 120 - 10*i
		}
		m, err := achievement.NewModel(context.Background(), itemsIndex(counts...), def)
		So(err, ShouldBeNil)

		Convey("Then the model carries the sample and the tiers", func() {
			So(m.Populated(), ShouldBeTrue)
			So(m.Population(), ShouldEqual, 12)
			So(m.MaxScore, ShouldEqual, 120)
			So(m.Tiers[achievement.Gold].MinScore, ShouldEqual, 20)
			So(m.Tiers[achievement.Silver].MinScore, ShouldEqual, 6)
			So(m.Tiers[achievement.Bronze].MinScore, ShouldEqual, 1)
		})

		Convey("Then every user satisfies the tier assigned to them", func() {
			for i := range counts {
				b := m.ApplyForUser(fmt.Sprintf("u%02d", i))
				So(b.Progress, ShouldBeGreaterThanOrEqualTo, m.Tiers[b.Tier].MinScore)
			}
			So(m.ApplyForUser("u00").Tier, ShouldEqual, achievement.Platinum)
			So(m.ApplyForUser("u10").Tier, ShouldEqual, achievement.Gold)
			So(m.ApplyForUser("u11").Tier, ShouldEqual, achievement.Silver)
		})

		Convey("Then unknown users are locked with zero progress", func() {
			b := m.ApplyForUser("nobody")
			So(b.Progress, ShouldEqual, 0)
			So(b.Tier, ShouldEqual, achievement.Locked)
			So(b.Unlocked(), ShouldBeFalse)
		})
	})

	Convey("Given nobody with a positive score", t, func() {
		m, err := achievement.NewModel(context.Background(), itemsIndex(0, 0), def)
		So(err, ShouldBeNil)

		Convey("Then the badge is empty and every user is locked", func() {
			So(m.Populated(), ShouldBeFalse)
			So(math.IsNaN(m.MaxScore), ShouldBeTrue)
			b := m.ApplyForUser("u00")
			So(b.Tier, ShouldEqual, achievement.Locked)
			So(b.TotalProgress(), ShouldEqual, 0)
			So(b.CurrentGradeProgress(), ShouldEqual, 0)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := achievement.NewModel(ctx, itemsIndex(1), def)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("Given a malformed index", t, func() {
		_, err := achievement.NewModel(context.Background(), &dataset.Index{}, def)
		So(errors.Is(err, dataset.ErrMalformedIndex), ShouldBeTrue)
	})
}

func TestApplyForUserRescoresOutsideSample(t *testing.T) {
	ix := itemsIndex(5, 1)
	fn := func(ix *dataset.Index, user string) float64 {
		if user == "u01" {
			return -2
		}
		return itemCount(ix, user)
	}
	m, err := achievement.NewModel(context.Background(), ix, achievement.Definition{ID: "x", Title: "X", Score: fn})
	if err != nil {
		t.Fatal(err)
	}
	b := m.ApplyForUser("u01")
	if b.Progress != -2 {
		t.Fatalf("progress = %v, want -2", b.Progress)
	}
	if b.Tier != achievement.Locked {
		t.Fatalf("tier = %v, want locked", b.Tier)
	}
}
