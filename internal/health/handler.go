package health

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tralvick/backloghub/internal/notify"
)

type Handler struct {
	db  *sql.DB
	hub *notify.Hub
}

func NewHandler(db *sql.DB, hub *notify.Hub) *Handler {
	return &Handler{db: db, hub: hub}
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *Handler) Readyz(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "database_not_initialized"})
		return
	}

	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "database_ping_failed"})
		return
	}

	if h.hub != nil && !h.hub.Running() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "notify_hub_not_running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
