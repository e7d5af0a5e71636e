package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
)

// Pinger is satisfied by the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		response.Fail(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database unreachable", map[string]bool{"ok": false, "db": false})
		return
	}
	response.Success(w, map[string]bool{"ok": true, "db": true})
}
