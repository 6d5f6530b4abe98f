package meta

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/darregistry/member-registry/go-api-server/internal/config"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"github.com/gin-gonic/gin"
)

// Handler handles meta endpoints (health check)
type Handler struct {
	cfg *config.Config
	db  *database.DB
}

// NewHandler creates a new meta handler
func NewHandler(cfg *config.Config, db *database.DB) *Handler {
	return &Handler{
		cfg: cfg,
		db:  db,
	}
}

// Health checks service and database health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	service := gin.H{
		"name":        h.cfg.App.Name,
		"environment": h.cfg.App.Env,
		"metrics":     h.cfg.Metrics.Enabled,
	}

	start := time.Now()
	if err := h.db.HealthCheck(ctx); err != nil {
		slog.Error("Health check failed", "driver", h.cfg.Database.Driver, "error", err)

		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": service,
			"checks": gin.H{
				"database": gin.H{
					"status": "down",
					"driver": h.cfg.Database.Driver,
					"error":  err.Error(),
				},
			},
		})
		return
	}

	dbCheck := gin.H{
		"status":     "up",
		"driver":     h.cfg.Database.Driver,
		"latency_ms": time.Since(start).Milliseconds(),
	}
	if sqlDB, err := h.db.DB.DB(); err == nil {
		stats := sqlDB.Stats()
		dbCheck["open_connections"] = stats.OpenConnections
		dbCheck["in_use"] = stats.InUse
	}

	service["port"] = h.cfg.App.Port
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": service,
		"checks": gin.H{
			"database": dbCheck,
		},
	})
}
