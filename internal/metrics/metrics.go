// Package metrics exposes deployment measurements in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/paxosfleet/internal/graph"
)

// Recorder implements graph.Recorder on a private Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	nodesTotal        *prometheus.CounterVec
	nodeDuration      *prometheus.HistogramVec
	teardownsTotal    *prometheus.CounterVec
	deploymentsActive prometheus.Gauge
}

// NewRecorder creates a recorder labelled with the deployment name.
func NewRecorder(deployment string) *Recorder {
	constLabels := prometheus.Labels{"deployment": deployment}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		nodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "paxosfleet",
				Subsystem:   "graph",
				Name:        "nodes_total",
				Help:        "Total number of settled operations by stage and state",
				ConstLabels: constLabels,
			},
			[]string{"stage", "state"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   "paxosfleet",
				Subsystem:   "graph",
				Name:        "node_duration_seconds",
				Help:        "Duration of operations in seconds",
				ConstLabels: constLabels,
				Buckets:     prometheus.ExponentialBuckets(0.1, 2, 14), // 100ms to ~27min
			},
			[]string{"stage"},
		),
		teardownsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "paxosfleet",
				Subsystem:   "teardown",
				Name:        "actions_total",
				Help:        "Total number of teardown actions by kind and result",
				ConstLabels: constLabels,
			},
			[]string{"kind", "result"},
		),
		deploymentsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "paxosfleet",
			Name:        "deployment_active",
			Help:        "Whether the deployment is currently running (1) or not (0)",
			ConstLabels: constLabels,
		}),
	}

	r.registry.MustRegister(
		r.nodesTotal,
		r.nodeDuration,
		r.teardownsTotal,
		r.deploymentsActive,
	)
	return r
}

// ObserveNode implements graph.Recorder. Skipped nodes never ran and are
// counted without a duration.
func (r *Recorder) ObserveNode(stage string, state graph.State, d time.Duration) {
	r.nodesTotal.WithLabelValues(stage, state.String()).Inc()
	if state != graph.Skipped {
		r.nodeDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveTeardown implements graph.Recorder.
func (r *Recorder) ObserveTeardown(kind string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	r.teardownsTotal.WithLabelValues(kind, result).Inc()
}

// SetActive marks the deployment as running or finished.
func (r *Recorder) SetActive(active bool) {
	if active {
		r.deploymentsActive.Set(1)
		return
	}
	r.deploymentsActive.Set(0)
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the HTTP handler serving the recorder's metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return r.serve(ctx, lis)
}

func (r *Recorder) serve(ctx context.Context, lis net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()

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
