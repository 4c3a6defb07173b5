package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(database *gorm.DB) *HealthController {
	return &HealthController{db: database}
}

// Health reports whether the database answers a ping
// GET /api/v1/health
func (ctrl *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, ctrl.db); err != nil {
		middleware.GetLoggerFromContext(c).Error("Health check failed", err, nil)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"database": "down",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}
