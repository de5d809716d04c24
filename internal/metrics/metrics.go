package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	RouteFetches   *prometheus.CounterVec // outcome: ok|not_found|no_route|network|error|superseded
	FetchDuration  prometheus.Histogram
	UpstreamErrors *prometheus.CounterVec // collaborator: geocode|routing|auth|history|directions

	ActiveAnimations   prometheus.Gauge
	AnimationsStarted  prometheus.Counter
	AnimationsFinished prometheus.Counter
	SamplesPlaced      prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	ProxyRequests *prometheus.CounterVec // outcome: ok|error

	FrameInterval prometheus.Gauge // seconds
}

func NewCollector(frameInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		RouteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routefinder_route_fetches_total",
			Help: "Route fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routefinder_route_fetch_duration_seconds",
			Help:    "Time from route request to directions, geocoding included.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routefinder_upstream_errors_total",
			Help: "Failed calls to external collaborators.",
		}, []string{"collaborator"}),
		ActiveAnimations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routefinder_active_animations",
			Help: "Number of running marker animations.",
		}),
		AnimationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routefinder_animations_started_total",
			Help: "Total marker animations started.",
		}),
		AnimationsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routefinder_animations_finished_total",
			Help: "Total marker animations finished or cancelled.",
		}),
		SamplesPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routefinder_marker_samples_total",
			Help: "Total marker samples handed to a sink.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routefinder_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routefinder_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routefinder_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routefinder_publish_duration_seconds",
			Help:    "Duration to marshal and publish a marker sample.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		ProxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routefinder_proxy_requests_total",
			Help: "Directions proxy requests by outcome.",
		}, []string{"outcome"}),
		FrameInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routefinder_frame_interval_seconds",
			Help: "Animation frame interval in seconds.",
		}),
	}

	reg.MustRegister(
		c.RouteFetches, c.FetchDuration, c.UpstreamErrors,
		c.ActiveAnimations, c.AnimationsStarted, c.AnimationsFinished, c.SamplesPlaced,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.ProxyRequests, c.FrameInterval,
	)

	c.FrameInterval.Set(frameInterval.Seconds())

	return c
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics listening", "addr", addr)
	return srv
}

// The methods below let the collector stand in wherever a component takes a
// narrow metrics interface.

func (c *Collector) NATSPublishedInc()              { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc()             { c.NATSPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}

func (c *Collector) UpstreamError(collaborator string) {
	c.UpstreamErrors.WithLabelValues(collaborator).Inc()
}
