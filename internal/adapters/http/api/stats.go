package api

import (
	"net/http"
	"time"
)

// StatsProvider reports service counters for GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves a point-in-time snapshot of the service.
type StatsHandler struct {
	stats StatsProvider
	now   func() time.Time
}

// NewStatsHandler creates a stats handler over stats.
func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats, now: time.Now}
}

// HandleStats handles GET /stats. The snapshot is stamped with the time it
// was taken and never cached.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.stats.GetStats()
	snapshot["at"] = h.now().UTC().Format(time.RFC3339)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, snapshot)
}
