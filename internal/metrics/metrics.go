// Package metrics exposes monitoring-session counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the session collectors.
type Metrics struct {
	Cycles        prometheus.Counter
	Escalations   *prometheus.CounterVec
	AlertFailures *prometheus.CounterVec
	FileAccess    prometheus.Counter
	TrustScore    prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustwatch_cycles_total",
			Help: "Total number of completed polling cycles",
		}),
		Escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustwatch_escalations_total",
			Help: "Alerts raised, by class",
		}, []string{"class"}),
		AlertFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustwatch_alert_failures_total",
			Help: "Failed alert deliveries, by sink",
		}, []string{"sink"}),
		FileAccess: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustwatch_file_access_total",
			Help: "Sensitive file access events detected",
		}),
		TrustScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trustwatch_trust_score",
			Help: "Trust score computed in the most recent cycle",
		}),
		registry: reg,
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
