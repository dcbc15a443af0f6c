package contribution_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/medallion/internal/domain/contribution"
	"github.com/okian/medallion/internal/domain/dataset"
)

const crit = dataset.MainCriterion

type row struct {
	user, a, b, bucket string
}

// build scores every compared item for its comparer, then adds the comparisons.
func build(rows ...row) *dataset.Index {
	b := dataset.NewBuilder()
	for _, r := range rows {
		b.AddIndividualScore(r.user, r.a, crit, dataset.Score{Score: 1})
		b.AddIndividualScore(r.user, r.b, crit, dataset.Score{Score: 1})
		b.AddComparison(dataset.Comparison{User: r.user, ItemA: r.a, ItemB: r.b, Criterion: crit, Value: 1, Bucket: r.bucket})
	}
	return b.Build()
}

var ignoreEmpty = cmpopts.EquateEmpty()

func TestClassifyExample(t *testing.T) {
	ix := build(
		row{"A", "X", "Y", "2023-W01"},
		row{"B", "X", "Y", "2023-W01"},
		row{"C", "X", "Y", "2023-W01"},
		row{"A", "Z", "X", "2023-W01"},
	)
	got, err := contribution.Classify(ix, contribution.WithMinContributors(1))
	if err != nil {
		t.Fatal(err)
	}
	want := contribution.Credits{
		"A": {First: []string{"Z"}, Early: []string{"X", "Y"}},
		"B": {Early: []string{"X", "Y"}},
		"C": {Early: []string{"X", "Y"}},
	}
	if diff := cmp.Diff(want, got, ignoreEmpty); diff != "" {
		t.Fatalf("Classify mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	Convey("Given an item whose timeline spans four buckets", t, func() {
		ix := build(
			row{"P", "I", "J", "w1"},
			row{"Q", "I", "J", "w2"},
			row{"R", "I", "J", "w2"},
			row{"S", "I", "J", "w3"},
			row{"T", "I", "J", "w3"},
			row{"U", "I", "J", "w4"},
			row{"P", "I", "J", "w4"},
			row{"Q", "I", "J", "w4"},
		)
		credits, err := contribution.Classify(ix)
		So(err, ShouldBeNil)

		Convey("Then the sole earliest user is first and not credited again", func() {
			So(credits.For("P").First, ShouldResemble, []string{"I", "J"})
			So(credits.For("P").Early, ShouldBeEmpty)
			So(credits.For("P").Follow, ShouldBeEmpty)
		})

		Convey("Then the pool swallows whole buckets until it holds three users", func() {
			for _, u := range []string{"Q", "R", "S", "T"} {
				So(credits.For(u).Early, ShouldResemble, []string{"I", "J"})
			}
		})

		Convey("Then later users follow and earlier users are not credited twice", func() {
			So(credits.For("U").Follow, ShouldResemble, []string{"I", "J"})
			So(credits.For("Q").Follow, ShouldBeEmpty)
		})

		Convey("Then unknown users have no credits", func() {
			So(credits.For("nobody"), ShouldResemble, contribution.UserCredits{})
		})

		Convey("Then the totals add up", func() {
			first, early, follow := credits.Totals()
			So(first, ShouldEqual, 2)
			So(early, ShouldEqual, 8)
			So(follow, ShouldEqual, 2)
		})
	})

	Convey("Given items below the contributor threshold", t, func() {
		ix := build(
			row{"A", "X", "Y", "w1"},
			row{"B", "X", "Y", "w2"},
		)
		credits, err := contribution.Classify(ix)
		So(err, ShouldBeNil)
		So(credits, ShouldBeEmpty)

		Convey("Then lowering the threshold includes them", func() {
			credits, err := contribution.Classify(ix, contribution.WithMinContributors(2))
			So(err, ShouldBeNil)
			So(credits.For("A").First, ShouldResemble, []string{"X", "Y"})
			So(credits.For("B").Early, ShouldResemble, []string{"X", "Y"})
		})
	})

	Convey("Given comparisons under another criterion", t, func() {
		b := dataset.NewBuilder()
		for _, u := range []string{"A", "B", "C"} {
			b.AddIndividualScore(u, "X", "pedagogy", dataset.Score{Score: 1})
			b.AddComparison(dataset.Comparison{User: u, ItemA: "X", ItemB: "Y", Criterion: "pedagogy", Bucket: "w1"})
		}
		ix := b.Build()

		credits, err := contribution.Classify(ix)
		So(err, ShouldBeNil)
		So(credits, ShouldBeEmpty)

		credits, err = contribution.Classify(ix, contribution.WithCriterion("pedagogy"))
		So(err, ShouldBeNil)
		So(credits.For("A").Early, ShouldResemble, []string{"X"})
	})

	Convey("Given a malformed index", t, func() {
		_, err := contribution.Classify(&dataset.Index{})
		So(errors.Is(err, dataset.ErrMalformedIndex), ShouldBeTrue)
	})
}

func TestClassifyInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var rows []row
	for i := 0; i < 400; i++ {
		rows = append(rows, row{
			user:   fmt.Sprintf("u%d", rng.Intn(15)),
			a:      fmt.Sprintf("v%d", rng.Intn(30)),
			b:      fmt.Sprintf("v%d", 30+rng.Intn(30)),
			bucket: fmt.Sprintf("2024-W%02d", 1+rng.Intn(10)),
		})
	}
	ix := build(rows...)

	for _, pool := range []int{1, 3, 5} {
		credits, err := contribution.Classify(ix, contribution.WithEarlyPoolSize(pool))
		if err != nil {
			t.Fatal(err)
		}
		firsts := make(map[string]int)
		for user, uc := range credits {
			kinds := make(map[string]int)
			for _, list := range [][]string{uc.First, uc.Early, uc.Follow} {
				for _, item := range list {
					kinds[item]++
				}
			}
			for item, n := range kinds {
				if n > 1 {
					t.Fatalf("pool %d: %s credited %d times for %s", pool, user, n, item)
				}
			}
			for _, item := range uc.First {
				firsts[item]++
			}
		}
		for item, n := range firsts {
			if n > 1 {
				t.Fatalf("pool %d: item %s has %d first contributors", pool, item, n)
			}
		}
	}
}
