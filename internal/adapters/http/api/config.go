package api

import "net/http"

// ConfigHandler exposes the runtime settings a client may need, such as the
// submit cooldown and the depth clamp. Secrets never appear here.
type ConfigHandler struct {
	deps ConfigReader
}

// NewConfigHandler creates the handler for GET /api/config.
func NewConfigHandler(deps ConfigReader) *ConfigHandler {
	return &ConfigHandler{deps: deps}
}

func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.deps.PublicConfig())
}
