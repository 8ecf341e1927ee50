package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler reports liveness and readiness of the results API.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a HealthHandler over the results store connection.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "clinex"})
}

// Readiness handles GET /readyz. The API only serves stored runs, so ready
// means the results store answers a ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "results store not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "clinex"})
}
