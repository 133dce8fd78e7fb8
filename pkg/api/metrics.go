package api

import (
	"context"
	"net/http"
	"time"

	"github.com/hazyhaar/tagnorm/pkg/dict"
	"github.com/hazyhaar/tagnorm/pkg/kit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry so several Services (tests,
// embedded use) never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	recorded prometheus.Counter
}

func newMetrics(reg *dict.Registry) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagnorm",
			Name:      "endpoint_calls_total",
			Help:      "Endpoint calls by endpoint, transport and outcome.",
		}, []string{"endpoint", "transport", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tagnorm",
			Name:      "endpoint_duration_seconds",
			Help:      "Endpoint latency.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"endpoint"}),
		recorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tagnorm",
			Name:      "tags_recorded_total",
			Help:      "Canonical tags written to the catalog.",
		}),
	}

	m.registry.MustRegister(
		m.calls, m.latency, m.recorded,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tagnorm", Name: "dictionaries",
			Help: "Loaded dictionaries.",
		}, func() float64 { return float64(reg.DictCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tagnorm", Name: "aliases",
			Help: "Entries in the active alias index.",
		}, func() float64 { return float64(reg.Normalizer().AliasCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tagnorm", Name: "cache_entries",
			Help: "Entries in the active normalization cache.",
		}, func() float64 { return float64(reg.Normalizer().Stats().Entries) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tagnorm", Name: "cache_hits",
			Help: "Cache hits of the active normalizer; resets on reload.",
		}, func() float64 { return float64(reg.Normalizer().Stats().Hits) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tagnorm", Name: "cache_misses",
			Help: "Cache misses of the active normalizer; resets on reload.",
		}, func() float64 { return float64(reg.Normalizer().Stats().Misses) }),
	)
	return m
}

// instrument counts calls and observes latency. It must run inside
// kit.Named so the endpoint label is set.
func (m *Metrics) instrument(next kit.Endpoint) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		start := time.Now()
		resp, err := next(ctx, request)
		name := kit.GetEndpoint(ctx)
		m.latency.WithLabelValues(name).Observe(time.Since(start).Seconds())
		m.calls.WithLabelValues(name, kit.GetTransport(ctx), outcome(err)).Inc()
		return resp, err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isServerError(err):
		return "error"
	default:
		return "rejected"
	}
}
