package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"coterran/internal/service"
)

type HealthHandler struct {
	DB        *gorm.DB
	Snapshots *service.SnapshotService
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
	r.GET("/api/health", h.stats)
}

// @Summary Health check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Readiness check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_missing"})
		return
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// @Summary Platform activity over the last 24 hours
// @Tags health
// @Success 200 {object} apiResponse
// @Router /api/health [get]
func (h *HealthHandler) stats(c *gin.Context) {
	if h.Snapshots == nil {
		Error(c, http.StatusInternalServerError, "snapshot service unavailable", nil)
		return
	}
	stats, err := h.Snapshots.Health(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, stats, nil)
}
