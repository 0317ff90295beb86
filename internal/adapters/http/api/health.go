package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvidal/destino/pkg/metrics"
)

// HealthHandler serves liveness plus the Prometheus exposition of the
// process registry on a single endpoint.
type HealthHandler struct {
	prom http.Handler
}

// NewHealthHandler creates the handler for GET /healthz.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		prom: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.prom.ServeHTTP(w, r)
}
