// Package metrics records API usage for a run in a private prometheus registry.
//
// The tool is a one-shot CLI, so nothing is served over HTTP. Instead the
// registry can be dumped in the node-exporter textfile format at the end of a
// run, which lets CI jobs pick the numbers up.
//
// All Recorder methods are safe on a nil receiver, so callers that do not care
// about metrics can pass nil.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gh_insights"

// Recorder owns the counters for one run.
type Recorder struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  prometheus.Histogram
	pages    prometheus.Counter
	items    prometheus.Counter
	retries  prometheus.Counter
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "GitHub API requests by HTTP status code (0 for transport failures).",
		}, []string{"code"}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "GitHub API request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		pages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Pages decoded by the paged fetcher.",
		}),
		items: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_handled_total",
			Help:      "Items handed to callers by the paged fetcher.",
		}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_retries_total",
			Help:      "Retried GitHub API requests.",
		}),
	}
}

// ObserveRequest records one HTTP round trip.
func (r *Recorder) ObserveRequest(code int, took time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(strconv.Itoa(code)).Inc()
	r.latency.Observe(took.Seconds())
}

// IncPages counts one decoded page.
func (r *Recorder) IncPages() {
	if r == nil {
		return
	}
	r.pages.Inc()
}

// IncItems counts one item handed to a caller.
func (r *Recorder) IncItems() {
	if r == nil {
		return
	}
	r.items.Inc()
}

// IncRetries counts one retried request.
func (r *Recorder) IncRetries() {
	if r == nil {
		return
	}
	r.retries.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all metrics to path in the prometheus text format.
// The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
