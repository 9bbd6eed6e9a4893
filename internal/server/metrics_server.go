package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyb/muzz-discovery/internal/config"
)

// NewMetricsRouter serves the default Prometheus registry on /metrics and a
// liveness probe on /healthz.
func NewMetricsRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// NewMetricsServer wraps NewMetricsRouter. The caller owns ListenAndServe
// and Shutdown.
func NewMetricsServer(cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           NewMetricsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
