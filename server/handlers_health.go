package server

import (
	"encoding/json"
	"net/http"
)

// Handlers serves the sidecar endpoints.
type Handlers struct {
	stats StatsSource
}

// NewHandlers returns handlers reading counters from stats (may be nil).
func NewHandlers(stats StatsSource) *Handlers {
	return &Handlers{stats: stats}
}

// HandleHealthz responds to liveness probe requests. The filter has no
// dependencies to ping; a running process is healthy.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleStatus reports processor counters as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.stats == nil {
		http.Error(w, "processor not running", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(h.stats.Stats())
}
