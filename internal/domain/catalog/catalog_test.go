package catalog_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/medallion/internal/domain/catalog"
	"github.com/okian/medallion/internal/domain/contribution"
	"github.com/okian/medallion/internal/domain/dataset"
	"github.com/okian/medallion/internal/domain/podium"
)

func TestBuild(t *testing.T) {
	Convey("Given empty pre-pass results", t, func() {
		ix := dataset.NewBuilder().Build()
		tally, err := podium.Compute(ix, podium.WithSize(5))
		So(err, ShouldBeNil)

		Convey("When building the default catalog", func() {
			defs := catalog.Build(contribution.Credits{}, tally)

			Convey("Then every badge has a unique id and a scoring function", func() {
				So(defs, ShouldHaveLength, 8+len(catalog.SecondaryCriteria))
				seen := make(map[string]bool)
				for _, d := range defs {
					So(seen[d.ID], ShouldBeFalse)
					seen[d.ID] = true
					So(d.Score, ShouldNotBeNil)
					So(d.Title, ShouldNotBeEmpty)
				}
			})

			Convey("Then the display order starts with the content badge and ends with the podium", func() {
				So(defs[0].ID, ShouldEqual, catalog.ContentContributor)
				So(defs[4].Title, ShouldEqual, "Comparator of Importance")
				So(defs[4].ID, ShouldEqual, "comparator-importance")
				last := defs[len(defs)-1]
				So(last.ID, ShouldEqual, catalog.WeeklyPodium)
				So(last.Info, ShouldEqual, "weeks as top 5 contributor")
			})
		})

		Convey("When secondary criteria are overridden", func() {
			defs := catalog.Build(contribution.Credits{}, tally,
				catalog.WithSecondaryCriteria(catalog.Criterion{Key: "better_habits", Label: "Better Habits"}))
			So(defs, ShouldHaveLength, 9)
			So(defs[4].ID, ShouldEqual, "comparator-better-habits")
		})
	})
}
