package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/medallion/internal/config"
	"github.com/okian/medallion/internal/datagen"
	"github.com/okian/medallion/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a config pointing at a generated dataset", t, func() {
		cfg := config.New()
		gen := datagen.DefaultConfig()
		gen.Users = 40
		d, err := datagen.Generate(gen)
		convey.So(err, convey.ShouldBeNil)
		cfg.DatasetPath = filepath.Join(t.TempDir(), "dataset.zip")
		convey.So(d.WriteFile(cfg.DatasetPath), convey.ShouldBeNil)
		cfg.WorkerCount = 2
		cfg.RateLimitRPS = 0

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		handler := newHandler(ctx, cfg, svc)

		convey.Convey("Then the business and docs routes are served", func() {
			for _, path := range []string{
				"/healthz",
				"/stats",
				"/badges",
				"/badges/comparator/leaderboard?limit=3",
				"/users/" + d.Users[0] + "/badges",
				"/users/" + d.Users[0] + "/contributions",
				"/openapi.yaml",
				"/api-docs",
			} {
				req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then service metrics can be republished", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing the metrics updaters", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		})
	})
}

func TestRunFailsWithoutDataset(t *testing.T) {
	cfg := config.New()
	cfg.DatasetPath = filepath.Join(t.TempDir(), "missing.zip")
	if err := run(context.Background(), cfg); err == nil {
		t.Fatal("expected run to fail without a dataset")
	}
}
