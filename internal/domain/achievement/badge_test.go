package achievement

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func testModel() *Model {
	return &Model{
		ID:    "m",
		Title: "M",
		Tiers: Tiers{
			Locked:   {Title: "Locked", MinScore: math.Inf(-1)},
			Default:  {Title: "M", MinScore: 1},
			Bronze:   {Title: "M", MinScore: 10},
			Silver:   {Title: "M", MinScore: 30},
			Gold:     {Title: "M", MinScore: 100},
			Platinum: {Title: "M", MinScore: 400},
		},
		MaxScore: 400,
	}
}

func TestGradeProgress(t *testing.T) {
	m := testModel()
	badge := func(p float64) UserBadge {
		return UserBadge{Model: m, User: "u", Progress: p, Tier: AssignTier(p, m.Tiers)}
	}

	Convey("Given a user inside the silver band", t, func() {
		b := badge(65)
		So(b.Tier, ShouldEqual, Silver)
		So(b.CurrentGradeProgress(), ShouldAlmostEqual, 0.5, 1e-12)
		So(b.TotalProgress(), ShouldAlmostEqual, 65.0/400, 1e-12)

		next, ok := b.NextTier()
		So(ok, ShouldBeTrue)
		So(next, ShouldEqual, Gold)
	})

	Convey("Given a user on the default tier", t, func() {
		b := badge(5)
		So(b.Tier, ShouldEqual, Default)
		So(b.CurrentGradeProgress(), ShouldAlmostEqual, 0.5, 1e-12)
	})

	Convey("Given the best user", t, func() {
		b := badge(400)
		So(b.Tier, ShouldEqual, Platinum)
		So(b.CurrentGradeProgress(), ShouldEqual, 1)
		_, ok := b.NextTier()
		So(ok, ShouldBeFalse)
	})

	Convey("Given a user measured against a tier already passed", t, func() {
		So(badge(200).GradeProgress(Bronze), ShouldEqual, 1)
	})

	Convey("Given a user measured against a tier not yet reached", t, func() {
		So(badge(5).GradeProgress(Gold), ShouldEqual, 0)
	})

	Convey("Given an unreachable next tier", t, func() {
		m2 := testModel()
		m2.Tiers[Gold].MinScore = math.Inf(1)
		b := UserBadge{Model: m2, Progress: 50, Tier: Silver}
		So(b.GradeProgress(Silver), ShouldEqual, 0)
	})

	Convey("Given an empty population", t, func() {
		m2 := testModel()
		for _, tier := range []Tier{Bronze, Silver, Gold, Platinum} {
			m2.Tiers[tier].MinScore = math.Inf(1)
		}
		m2.MaxScore = math.NaN()
		b := UserBadge{Model: m2, Progress: 7, Tier: AssignTier(7, m2.Tiers)}
		So(b.Tier, ShouldEqual, Default)
		So(b.TotalProgress(), ShouldEqual, 0)
		So(b.CurrentGradeProgress(), ShouldEqual, 0)
	})

	Convey("Given every tier and progress value the fraction stays within bounds", t, func() {
		for p := -5.0; p < 600; p += 7.5 {
			b := badge(p)
			for _, tier := range Order {
				g := b.GradeProgress(tier)
				So(g, ShouldBeBetweenOrEqual, 0, 1)
			}
		}
	})
}

func TestAssignTierInvariant(t *testing.T) {
	m := testModel()
	for p := -3.0; p < 500; p += 0.5 {
		tier := AssignTier(p, m.Tiers)
		if tier == Locked {
			if p >= 1 {
				t.Fatalf("progress %v locked", p)
			}
			continue
		}
		if p < m.Tiers[tier].MinScore {
			t.Fatalf("progress %v below %s threshold %v", p, tier, m.Tiers[tier].MinScore)
		}
		if next, ok := tier.Next(); ok && p >= m.Tiers[next].MinScore {
			t.Fatalf("progress %v should reach %s", p, next)
		}
	}
	if AssignTier(math.NaN(), m.Tiers) != Locked {
		t.Fatal("NaN progress should be locked")
	}
}

func TestSortBadges(t *testing.T) {
	Convey("Given badges of mixed tiers and progress", t, func() {
		m := testModel()
		mk := func(user string, p float64) UserBadge {
			return UserBadge{Model: m, User: user, Progress: p, Tier: AssignTier(p, m.Tiers)}
		}
		badges := []UserBadge{mk("a", 12), mk("b", 150), mk("c", 0), mk("d", 20), mk("e", 150), mk("f", 400)}
		SortBadges(badges)

		users := make([]string, len(badges))
		for i, b := range badges {
			users[i] = b.User
		}
		So(users, ShouldResemble, []string{"f", "b", "e", "d", "a", "c"})
	})
}

func TestTierNames(t *testing.T) {
	Convey("Tier keys round trip", t, func() {
		for _, tier := range Order {
			parsed, err := ParseTier(tier.String())
			So(err, ShouldBeNil)
			So(parsed, ShouldEqual, tier)
		}
		So(Gold.Label(), ShouldEqual, "Golden")
		So(Default.Label(), ShouldEqual, "New")

		_, err := ParseTier("diamond")
		So(errors.Is(err, ErrUnknownTier), ShouldBeTrue)
	})
}
