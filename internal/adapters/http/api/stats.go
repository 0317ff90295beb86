package api

import "net/http"

// StatsHandler serves runtime statistics as JSON.
type StatsHandler struct {
	deps StatsProvider
}

// NewStatsHandler creates the handler for GET /stats.
func NewStatsHandler(deps StatsProvider) *StatsHandler {
	return &StatsHandler{deps: deps}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.deps.GetStats())
}
