package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithWriter(&buf)), ShouldBeNil)

		Convey("When a named logger writes a record", func() {
			Named("ingest").Named("csv").Info(context.Background(), "loaded", Int("rows", 3), String("file", "a.csv"))

			var rec map[string]any
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)

			Convey("Then the record carries the fields, the name and the caller", func() {
				So(rec["msg"], ShouldEqual, "loaded")
				So(rec["logger"], ShouldEqual, "ingest.csv")
				So(rec["rows"], ShouldEqual, 3)
				So(rec["file"], ShouldEqual, "a.csv")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})
	})
}

func TestLoggerLevels(t *testing.T) {
	Convey("Given the warn level", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		So(SetLevelString("WARN"), ShouldBeNil)
		defer func() { _ = SetLevelString("info") }()

		Get().Info(context.Background(), "hidden")
		Get().Warn(context.Background(), "shown")

		So(buf.String(), ShouldNotContainSubstring, "hidden")
		So(strings.Count(buf.String(), "shown"), ShouldEqual, 1)
	})

	Convey("Unknown levels are rejected", t, func() {
		So(SetLevelString("loud"), ShouldNotBeNil)
	})
}
