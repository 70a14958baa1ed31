// Package metrics records action outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amishk599/sponsorscout/internal/model"
)

const namespace = "sponsorscout"

// Metrics holds the collectors for one client session on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	actionsStarted *prometheus.CounterVec
	actionsSettled *prometheus.CounterVec
	staleDiscarded *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	uploadedJobs   prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_started_total",
			Help:      "Number of upload and query actions started",
		}, []string{"flow"}),
		actionsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_settled_total",
			Help:      "Number of actions whose result was applied, by outcome",
		}, []string{"flow", "outcome"}),
		staleDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "Number of results dropped because a newer action of the same flow had started",
		}, []string{"flow"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Time from action start to settlement",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"flow"}),
		uploadedJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uploaded_jobs",
			Help:      "num_jobs reported by the most recent successful upload",
		}),
	}
	m.registry.MustRegister(m.actionsStarted, m.actionsSettled, m.staleDiscarded, m.actionDuration, m.uploadedJobs)
	return m
}

func (m *Metrics) RecordStarted(flow model.Flow) {
	m.actionsStarted.WithLabelValues(string(flow)).Inc()
}

func (m *Metrics) RecordSettled(flow model.Flow, outcome model.Outcome, took time.Duration) {
	m.actionsSettled.WithLabelValues(string(flow), string(outcome)).Inc()
	m.actionDuration.WithLabelValues(string(flow)).Observe(took.Seconds())
}

func (m *Metrics) RecordStale(flow model.Flow) {
	m.staleDiscarded.WithLabelValues(string(flow)).Inc()
}

func (m *Metrics) RecordUploadedJobs(n int) {
	m.uploadedJobs.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
