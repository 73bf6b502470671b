package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	mode   string
	stores map[string]Pinger
}

func NewHealthHandler(mode string, stores map[string]Pinger) *HealthHandler {
	return &HealthHandler{mode: mode, stores: stores}
}

type healthResponse struct {
	Status string            `json:"status"`
	Mode   string            `json:"mode"`
	Time   string            `json:"time"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Mode: h.mode, Time: time.Now().UTC().Format(time.RFC3339)}
	for name, store := range h.stores {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(h.stores))
		}
		if err := store.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ok" {
		response.ServiceUnavailable(w, resp)
		return
	}
	response.Success(w, resp)
}
