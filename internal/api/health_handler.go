package api

import (
	"net/http"
	"time"

	"github.com/ignite/outreach-monitor/internal/pkg/httputil"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck reports service liveness plus the state of optional
// dependencies. Optional components that are down degrade the status
// but never fail the check.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Service:   "outreach-monitor",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{},
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks["cache"] = "down"
		} else {
			resp.Checks["cache"] = "up"
		}
	}
	if h.smartlead != nil {
		resp.Checks["smartlead"] = "configured"
	}
	if h.sheetSink != nil {
		resp.Checks["sheets"] = "configured"
	}
	if h.tasks != nil {
		resp.Checks["tasks"] = "configured"
	}

	httputil.OK(w, resp)
}
