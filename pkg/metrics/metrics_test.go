package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a dedicated registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then all instruments should be registered", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				// Counters with no observations are not gathered yet, so
				// only assert the gauges that initialize to a value.
				So(families, ShouldNotBeNil)
			})
		})
	})
}

func TestRecordHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording engine events", func() {
			RecordReactionProcessed()
			RecordReactionDuplicate()
			RecordReactionRejected("already_reacted")
			RecordScoringLatency(1.5)
			RecordReputationEvent("sighting_created")
			RecordSignalEvaluation("sighting_created", 10, 2)
			RecordSuggestionCreated()
			RecordSuggestionApplied()
			RecordFlairAssigned("consensus")
			UpdateQueueSize(5)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.05)
			RecordQueueEnqueue()
			RecordQueueDequeue()
			RecordQueueEnqueueError()
			RecordQueueProcessingLatency(0.2)
			UpdateWorkerActiveCount(4)
			RecordWorkerProcessingLatency(3.0)
			RecordWorkerError()
			UpdateTrackedSightings(42)

			Convey("Then the registry should gather without error", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
