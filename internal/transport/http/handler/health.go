package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HealthStatus is returned by GET /v1/health-check/status.
type HealthStatus struct {
	Status        string `json:"status"`
	Store         string `json:"store"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// HealthHandler answers liveness checks.
type HealthHandler struct {
	store   string
	started time.Time
	now     func() time.Time
}

func NewHealthHandler(store string) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now(), now: time.Now}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "status":
		writeJSON(w, http.StatusOK, HealthStatus{
			Status:        "ok",
			Store:         h.store,
			UptimeSeconds: int64(h.now().Sub(h.started) / time.Second),
		})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
