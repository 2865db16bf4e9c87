package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "readiness")
				So(manager.subsystem, ShouldEqual, "radar")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.evaluations.Inc()

			Convey("Then metric names follow the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_evaluations_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "readiness")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording assessment metrics", func() {
			before := testutil.ToFloat64(globalManager.evaluations)
			RecordEvaluation()
			RecordSave("saved")
			RecordSave("unavailable")
			RecordHistoryQuery("empty")
			ObserveOverallScore(3.2)
			RecordInvalidInput()
			RecordDuplicateSave()

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.evaluations), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.saves.WithLabelValues("saved")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.historyQueries.WithLabelValues("empty")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording store, auth and HTTP metrics", func() {
			So(func() {
				RecordStoreLatency("append", 3)
				RecordStoreError("query", "timeout")
				RecordAuthAttempt("password", "ok")
				UpdateActiveSessions(4)
				RecordHTTPRequest("assessments", "POST", "201")
				RecordHTTPRequestDuration("assessments", "POST", "201", 12)
				RecordErrorByEndpoint("assessments", "POST", "server_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)

			Convey("Then the gauge reflects the last value", func() {
				So(testutil.ToFloat64(globalManager.activeSessions), ShouldEqual, 4)
			})
		})

		Convey("When gathering the custom registry", func() {
			RecordEvaluation()
			families, err := GetRegistry().Gather()

			Convey("Then only readiness metrics are exported", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "readiness_radar_"), ShouldBeTrue)
				}
			})
		})
	})
}
