package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"stayops-backend/pkg/utils"
)

// Handler reports liveness and database readiness.
type Handler struct {
	pool    *pgxpool.Pool
	started time.Time
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool, started: time.Now()}
}

func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"database": "ok",
	})
}
