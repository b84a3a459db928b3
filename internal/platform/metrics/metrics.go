package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// SimulationRuns counts simulation requests by outcome: ok, rejected, failed.
	SimulationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "simulation_runs_total", Help: "Simulation runs by outcome."},
		[]string{"outcome"},
	)
	SimulationOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "simulation_orders_total", Help: "Simulated orders by verdict."},
		[]string{"status"},
	)
	SimulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simulation_duration_seconds",
			Help:    "Wall time of a simulation run including snapshot reads and persistence.",
			Buckets: prometheus.DefBuckets,
		},
	)
	EventPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "simulation_event_publish_failures_total", Help: "Failed simulation event publishes."},
	)
)

var regOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			SimulationRuns,
			SimulationOrders,
			SimulationDuration,
			EventPublishFailures,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
