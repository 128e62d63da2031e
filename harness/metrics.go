package harness

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records per-run timings in a private Prometheus registry that
// can be dumped in the text exposition format once the benchmark is done.
type Metrics struct {
	registry    *prometheus.Registry
	runDuration *prometheus.HistogramVec
	runsTotal   *prometheus.CounterVec
}

// NewMetrics creates the collectors in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corebench_run_duration_seconds",
			Help:    "Wall-clock duration of one kernel run",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12), // 0.1ms to ~7min
		}, []string{"language", "alg", "threads"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "corebench_runs_total",
			Help: "Completed kernel runs",
		}, []string{"language", "alg", "threads"}),
	}
}

// Observe records a completed run.
func (m *Metrics) Observe(rec Record) {
	labels := []string{rec.Language, strconv.Itoa(rec.Alg), strconv.Itoa(rec.Threads)}

	m.runDuration.WithLabelValues(labels...).Observe(float64(rec.Seconds))
	m.runsTotal.WithLabelValues(labels...).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metric values to path, atomically
// replacing any previous content.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}

	return nil
}
