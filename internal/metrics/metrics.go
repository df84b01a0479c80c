package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration tracks REST latency by route, method, and status.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "augur_http_request_duration_seconds",
		Help:    "REST request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	// ScrapeFailures counts upstream fetch/parse failures per source.
	ScrapeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "augur_scrape_failures_total",
		Help: "upstream fetch or parse failures",
	}, []string{"source"})

	// SettlementOutcomes counts bets per settlement pass outcome.
	SettlementOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "augur_settlement_outcomes_total",
		Help: "bets per settlement outcome",
	}, []string{"outcome"})

	// WebSocketClients tracks currently connected clients.
	WebSocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "augur_websocket_clients",
		Help: "connected WebSocket clients",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequestDuration, ScrapeFailures, SettlementOutcomes, WebSocketClients)
}

// HealthFunc reports component health for /healthz.
type HealthFunc func(ctx context.Context) error

// StartMetricsServer runs a small HTTP server with just /metrics and
// /healthz. Call it in a goroutine-per-process sense: it returns the
// server already listening.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "unhealthy: %v", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		srv.ListenAndServe()
	}()

	return srv
}
