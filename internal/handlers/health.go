package handlers

import (
	"net/http"
	"time"

	"mytickets/internal/logger"

	"github.com/gin-gonic/gin"
)

// Health - GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "I'm okay!")
}

// Ready - GET /ready
// Проверка готовности: пинг базы со статистикой пула и состояние поиска.
// Без базы сервис не готов; без поиска работает в режиме degraded.
func (h *Handlers) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	body := gin.H{"status": "ready", "timestamp": time.Now().UTC()}

	if h.probes.DB != nil {
		check := h.probes.DB.HealthCheck(ctx)
		body["status"] = check.Status
		body["database"] = check
		body["timestamp"] = check.Timestamp
		if !check.Healthy() {
			status = http.StatusServiceUnavailable
		}
	}

	if h.probes.Search != nil {
		search := gin.H{"status": "healthy"}
		if err := h.probes.Search.HealthCheck(ctx); err != nil {
			logger.WithContext(ctx).Warn("Search health check failed", "error", err)
			search = gin.H{"status": "unhealthy", "error": err.Error()}
			if status == http.StatusOK {
				body["status"] = "degraded"
			}
		}
		body["search"] = search
	}

	c.JSON(status, body)
}
