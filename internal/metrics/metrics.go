package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess           = "success"
	OutcomeBuildFailure      = "build_failure"
	OutcomeTransportFailure  = "transport_failure"
	OutcomeMiddlewareFailure = "middleware_failure"
	OutcomeInvalidStatus     = "invalid_status"
	OutcomeDecodeFailure     = "decode_failure"
)

var (
	invocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spyder",
			Name:      "invocations_total",
			Help:      "Total number of endpoint invocations by outcome",
		},
		[]string{"endpoint", "method", "outcome"},
	)

	invocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spyder",
			Name:      "invocation_duration_seconds",
			Help:      "Duration of endpoint invocations, cache hits included",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spyder",
			Name:      "cache_hits_total",
			Help:      "Total cache hits",
		},
		[]string{"endpoint"},
	)

	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spyder",
			Name:      "cache_misses_total",
			Help:      "Total cache misses",
		},
		[]string{"endpoint"},
	)
)

// Register adds the collectors to reg. Registering twice with the same
// registerer is not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{invocationsTotal, invocationDuration, cacheHits, cacheMisses} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveInvocation records one finished invocation. endpoint is the path
// template, never the evaluated path, to keep label cardinality bounded.
func ObserveInvocation(endpoint, method, outcome string, d time.Duration) {
	invocationsTotal.WithLabelValues(endpoint, method, outcome).Inc()
	invocationDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

func IncCacheHit(endpoint string) {
	cacheHits.WithLabelValues(endpoint).Inc()
}

func IncCacheMiss(endpoint string) {
	cacheMisses.WithLabelValues(endpoint).Inc()
}
