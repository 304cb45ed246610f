// Package metrics provides Prometheus-based metrics recording for AI
// requests and store mutations.
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

// Recorder registers and records devorch metrics. Each Recorder owns
// its own registry so tests can construct them independently.
type Recorder struct {
	registry *prometheus.Registry

	aiRequestsTotal   *prometheus.CounterVec
	aiRequestDuration *prometheus.HistogramVec
	storeMutations    *prometheus.CounterVec
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		aiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devorch_ai_requests_total",
				Help: "Total number of AI requests by model and status",
			},
			[]string{"model", "status"},
		),
		aiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devorch_ai_request_duration_seconds",
				Help:    "Duration of AI requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		storeMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devorch_store_mutations_total",
				Help: "Total number of store write operations by entity and action",
			},
			[]string{"entity", "action"},
		),
	}
}

// ObserveAIRequest records a completed AI request. A nil Recorder is
// safe to call.
func (r *Recorder) ObserveAIRequest(model string, success bool, duration time.Duration) {
	if r == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	r.aiRequestsTotal.WithLabelValues(model, status).Inc()
	r.aiRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// IncStoreMutation counts a store write. Entity is the table-level
// noun (project, journey, proposal), action the verb (create, update,
// delete, save). A nil Recorder is safe to call.
func (r *Recorder) IncStoreMutation(entity, action string) {
	if r == nil {
		return
	}
	r.storeMutations.WithLabelValues(entity, action).Inc()
}

// Registry exposes the underlying registry for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Serve exposes the registry on addr under /metrics until ctx is done.
// Returns the server's shutdown error, or nil on clean shutdown.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}
