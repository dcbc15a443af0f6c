package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"dataset": "sample"}),
				WithPrometheusRegistry(registry),
			)
			m.badgeCount.Set(3)

			Convey("Then collectors are registered under the namespace with the labels", func() {
				expected := `
# HELP test_unit_badge_count Badge models currently served
# TYPE test_unit_badge_count gauge
test_unit_badge_count{dataset="sample"} 3
`
				So(testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_unit_badge_count"), ShouldBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording dataset metrics", func() {
			before := testutil.ToFloat64(globalManager.datasetRows.WithLabelValues("comparisons.csv"))
			RecordDatasetRows("comparisons.csv", 42)
			RecordDatasetDuplicates(2)
			UpdateDatasetSize(10, 20)
			RecordDatasetLoadDuration(12.5)

			Convey("Then counters and gauges move", func() {
				So(testutil.ToFloat64(globalManager.datasetRows.WithLabelValues("comparisons.csv"))-before, ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.datasetUsers), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.datasetItems), ShouldEqual, 20)
			})
		})

		Convey("When recording badge and pre-pass metrics", func() {
			RecordBadgeBuild("comparator", 3.2, 17)
			UpdateBadgeCount(16)
			UpdateContributionCredits(1, 2, 3)
			UpdatePodiumBuckets(8)
			RecordPrePassDuration("classify", 1.5)

			Convey("Then they are exposed", func() {
				So(testutil.ToFloat64(globalManager.badgePopulation.WithLabelValues("comparator")), ShouldEqual, 17)
				So(testutil.ToFloat64(globalManager.badgeCount), ShouldEqual, 16)
				So(testutil.ToFloat64(globalManager.contributionCredits.WithLabelValues("follow")), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.podiumBuckets), ShouldEqual, 8)
			})
		})

		Convey("When recording operational metrics", func() {
			So(func() {
				RecordBadgeBuildError()
				RecordQueryLatency("user_badges", 0.4)
				RecordQueryError("rank", "not_found")
				UpdateQueueSize(3)
				UpdateQueueCapacity(16)
				UpdateQueueUtilization(0.1875)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(2)
				RecordWorkerProcessingLatency(5)
				RecordWorkerError()
				RecordHTTPRequest("/badges", "GET", "200")
				RecordHTTPRequestDuration("/badges", "GET", "200", 1.2)
				RecordErrorByEndpoint("/badges", "GET", "not_found")
				RecordRateLimited("/badges")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.queueEnqueueRate)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordQueueEnqueue()
					RecordHTTPRequest("/stats", "GET", "200")
				}
			}()
		}
		wg.Wait()
		So(testutil.ToFloat64(globalManager.queueEnqueueRate)-before, ShouldEqual, 800)
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("The global registry gathers without error", t, func() {
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)
		So(len(families), ShouldBeGreaterThan, 0)
	})
}
