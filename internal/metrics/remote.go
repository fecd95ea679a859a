package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		RemoteCalls,
		RemoteCallDuration,
	)
}

var (
	// Calls to the external API by operation and outcome.
	// outcome: ok|network|rejected|not_found
	RemoteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixlab_web_remote_calls_total",
			Help: "Calls to the registration and blog API by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	RemoteCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fixlab_web_remote_call_duration_seconds",
			Help:    "Latency of calls to the registration and blog API.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"op"},
	)
)

// ObserveRemoteCall records one finished API call.
func ObserveRemoteCall(op, outcome string, d time.Duration) {
	RemoteCalls.WithLabelValues(norm(op), norm(outcome)).Inc()
	RemoteCallDuration.WithLabelValues(norm(op)).Observe(d.Seconds())
}
