// Package metrics instruments the API gateway with Prometheus collectors
// registered on a private registry.
package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Call outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeServerError  = "server_error"
	OutcomeNetworkError = "network_error"
	OutcomeTimeout      = "timeout"
	OutcomeMalformed    = "malformed"
)

type Collector struct {
	registry *prometheus.Registry
	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agrisonic",
			Subsystem: "gateway",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight API calls.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agrisonic",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of API calls by outcome.",
		}, []string{"method", "path", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agrisonic",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Duration of API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}, []string{"method", "path"}),
	}
	c.registry.MustRegister(c.inFlight, c.requests, c.duration)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Start marks a call in flight and returns the function that ends it.
func (c *Collector) Start() func() {
	c.inFlight.Inc()
	return c.inFlight.Dec
}

// Observe records one finished call.
func (c *Collector) Observe(method, path, outcome string, d time.Duration) {
	method = strings.ToUpper(method)
	path = canonicalPath(path)
	c.requests.WithLabelValues(method, path, outcome).Inc()
	c.duration.WithLabelValues(method, path).Observe(d.Seconds())
}

// WriteText dumps every metric family in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// canonicalPath drops the query string and surrounding slashes so labels
// stay bounded.
func canonicalPath(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return "/"
	}
	return raw
}
