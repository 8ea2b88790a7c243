package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/videotube/backend/pkg/redis"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewHealthHandler(db *gorm.DB, cache *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health reports liveness of the service and its dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{
		"database": "ok",
		"cache":    "ok",
	}

	if sqlDB, err := h.db.DB(); err != nil {
		checks["database"] = "error"
		status = http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"] = "error"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			// Cache is a soft dependency; report but stay healthy.
			checks["cache"] = "error"
		}
	} else {
		checks["cache"] = "disabled"
	}

	c.JSON(status, gin.H{
		"status":    statusText(status),
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

func statusText(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "unhealthy"
}
