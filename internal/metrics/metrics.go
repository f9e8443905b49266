package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Collector struct {
	reg *prometheus.Registry

	DaysProcessed prometheus.Counter
	DayDuration   prometheus.Histogram
	Predictions   prometheus.Counter

	Events           *prometheus.CounterVec // outcome label: applied|no_estimate|unknown_flight|no_text
	EstimatesPresent *prometheus.GaugeVec   // arrival_type label, last processed day
	Resolutions      *prometheus.CounterVec // arrival_type, source labels

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	DayConcurrency prometheus.Gauge
}

func NewCollector(dayConcurrency int) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		DaysProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchmark_days_processed_total",
			Help: "Total benchmark days resolved.",
		}),
		DayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "benchmark_day_duration_seconds",
			Help:    "Duration of loading, replaying and resolving one day.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		Predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchmark_predictions_total",
			Help: "Total flight predictions produced.",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "benchmark_events_total",
			Help: "Flight history update events by replay outcome.",
		}, []string{"outcome"}),
		EstimatesPresent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "benchmark_estimates_present",
			Help: "Flights with a live estimate after replaying the most recent day.",
		}, []string{"arrival_type"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "benchmark_resolutions_total",
			Help: "Resolved arrivals by arrival type and the source that supplied them.",
		}, []string{"arrival_type", "source"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchmark_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchmark_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "benchmark_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "benchmark_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		DayConcurrency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "benchmark_day_concurrency",
			Help: "Maximum number of days resolved in parallel.",
		}),
	}

	reg.MustRegister(
		c.DaysProcessed, c.DayDuration, c.Predictions,
		c.Events, c.EstimatesPresent, c.Resolutions,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.DayConcurrency,
	)

	c.DayConcurrency.Set(float64(dayConcurrency))

	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", zap.Error(err))
		}
	}()
	log.Info("metrics listening", zap.String("addr", addr))
	return srv
}
