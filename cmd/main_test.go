package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smartystreets/goconvey/convey"
	app "github.com/spotline/spotline/internal/app"
	"github.com/spotline/spotline/internal/config"
	"github.com/spotline/spotline/pkg/logger"
	"github.com/spotline/spotline/pkg/metrics"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			// Test with environment variables
			_ = os.Setenv("SPOTLINE_METRICS_ADDR", ":8080")
			_ = os.Setenv("SPOTLINE_QUEUE_SIZE", "1000")
			_ = os.Setenv("SPOTLINE_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("SPOTLINE_METRICS_ADDR")
				_ = os.Unsetenv("SPOTLINE_QUEUE_SIZE")
				_ = os.Unsetenv("SPOTLINE_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithDedupeSize(1000),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing the service lifecycle", func() {
			svc := app.New(app.WithWorkerCount(1), app.WithQueueSize(16))
			ctx := context.Background()

			convey.Convey("Then it should start and stop cleanly", func() {
				err := svc.Start(ctx)
				convey.So(err, convey.ShouldBeNil)

				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldBeTrue)

				svc.Stop()
				stats = svc.GetStats()
				convey.So(stats["started"], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When testing the metrics endpoint wiring", func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

			srv := &http.Server{
				Addr:              ":0",
				Handler:           mux,
				ReadHeaderTimeout: time.Second,
			}

			convey.Convey("Then the server should be constructible", func() {
				convey.So(srv, convey.ShouldNotBeNil)
				convey.So(srv.Handler, convey.ShouldNotBeNil)
			})
		})
	})
}
