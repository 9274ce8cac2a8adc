package metrics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/emeeran/prompt-saver-web-app/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "promptsaver",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptsaver",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Email metrics

	EmailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptsaver",
		Name:      "emails_sent_total",
		Help:      "Transactional emails attempted, by template and outcome.",
	}, []string{"template", "outcome"})

	// Token metrics

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptsaver",
		Name:      "tokens_issued_total",
		Help:      "Signed login/reset tokens issued, by purpose.",
	}, []string{"purpose"})

	TokenVerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptsaver",
		Name:      "token_verifications_total",
		Help:      "Token verification attempts, by purpose and result.",
	}, []string{"purpose", "result"})

	// Housekeeping metrics

	ConsumedTokensPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "promptsaver",
		Name:      "consumed_tokens_purged_total",
		Help:      "Expired consumed-token rows removed by housekeeping.",
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		EmailsSentTotal,
		TokensIssuedTotal,
		TokenVerificationsTotal,
		ConsumedTokensPurgedTotal,
	)
}

// checker is the part of health.Checker the metrics server serves.
type checker interface {
	Liveness(ctx context.Context) health.HealthResult
	Readiness(ctx context.Context) health.HealthResult
}

func NewServer(addr string, hc checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hc.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := hc.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
