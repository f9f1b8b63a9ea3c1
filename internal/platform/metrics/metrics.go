package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they need.
type Collector struct {
	reg *prometheus.Registry

	Predictions *prometheus.CounterVec // path label: model|fallback

	SequenceDuration *prometheus.HistogramVec // mode label: model|distance
	RouteStops       prometheus.Histogram

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheErrors prometheus.Counter

	RoutesPublished  prometheus.Counter
	RoutePublishErrs prometheus.Counter
	NATSConnected    prometheus.Gauge
	ModelLoaded      prometheus.Gauge
	ModelReloads     *prometheus.CounterVec // result label: ok|unavailable|error
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routing_predictions_total",
			Help: "Travel-time predictions by serving path.",
		}, []string{"path"}),
		SequenceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routing_sequence_duration_seconds",
			Help:    "Duration of route sequencing including measurement.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}, []string{"mode"}),
		RouteStops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routing_route_stops",
			Help:    "Number of destinations per sequencing request.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routing_route_cache_hits_total",
			Help: "Route cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routing_route_cache_misses_total",
			Help: "Route cache misses.",
		}),
		CacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routing_route_cache_errors_total",
			Help: "Route cache operations that failed and were bypassed.",
		}),
		RoutesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routing_nats_published_total",
			Help: "Route events published to NATS.",
		}),
		RoutePublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routing_nats_publish_errors_total",
			Help: "Route events that failed to publish.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routing_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routing_model_loaded",
			Help: "1 if a fitted travel-time model is serving, 0 when on the fallback formula.",
		}),
		ModelReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routing_model_reloads_total",
			Help: "Model reload attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.Predictions, c.SequenceDuration, c.RouteStops,
		c.CacheHits, c.CacheMisses, c.CacheErrors,
		c.RoutesPublished, c.RoutePublishErrs, c.NATSConnected,
		c.ModelLoaded, c.ModelReloads,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) ObservePrediction(path string) { c.Predictions.WithLabelValues(path).Inc() }

func (c *Collector) ObserveSequence(mode string, stops int, d time.Duration) {
	c.SequenceDuration.WithLabelValues(mode).Observe(d.Seconds())
	c.RouteStops.Observe(float64(stops))
}

func (c *Collector) CacheHit()   { c.CacheHits.Inc() }
func (c *Collector) CacheMiss()  { c.CacheMisses.Inc() }
func (c *Collector) CacheError() { c.CacheErrors.Inc() }

func (c *Collector) PublishedInc()  { c.RoutesPublished.Inc() }
func (c *Collector) PublishErrInc() { c.RoutePublishErrs.Inc() }

func (c *Collector) SetNATSConnected(connected bool) { c.NATSConnected.Set(boolGauge(connected)) }

func (c *Collector) SetModelLoaded(loaded bool) { c.ModelLoaded.Set(boolGauge(loaded)) }

func (c *Collector) ModelReloaded(result string) { c.ModelReloads.WithLabelValues(result).Inc() }

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
