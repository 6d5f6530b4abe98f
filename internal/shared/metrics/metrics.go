package metrics

import (
	"net/http"
	"time"

	sharedError "github.com/darregistry/member-registry/go-api-server/internal/shared/error"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Entities reported in relationship events
const (
	EntityMember  = "member"
	EntityPatriot = "patriot"
	EntityChapter = "chapter"
)

// Recorder publishes relationship outcomes and operation timings.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates a recorder backed by its own registry
func NewRecorder(namespace string) *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationship_events_total",
			Help:      "Relationship engine outcomes by entity, action and outcome.",
		}, []string{"entity", "action", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed engine operations by error kind.",
		}, []string{"operation", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Engine operation latency, including the store transaction.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
	}

	registry.MustRegister(r.events, r.errors, r.duration)
	return r
}

// Event counts a relationship outcome (e.g. patriot/assign/reused)
func (r *Recorder) Event(entity, action, outcome string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(entity, action, outcome).Inc()
}

// Observe records the duration of an operation and, on failure, its error kind.
//
// Usage:
//
//	defer s.metrics.Observe("delete_member", time.Now(), &err)
func (r *Recorder) Observe(operation string, start time.Time, errp *error) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if errp != nil && *errp != nil {
		r.errors.WithLabelValues(operation, sharedError.KindOf(*errp).String()).Inc()
	}
}

// EventCounter exposes a single event series, mainly for assertions
func (r *Recorder) EventCounter(entity, action, outcome string) prometheus.Counter {
	return r.events.WithLabelValues(entity, action, outcome)
}

// ErrorCounter exposes a single error series, mainly for assertions
func (r *Recorder) ErrorCounter(operation string, kind sharedError.Kind) prometheus.Counter {
	return r.errors.WithLabelValues(operation, kind.String())
}

// Handler serves the recorder's registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
