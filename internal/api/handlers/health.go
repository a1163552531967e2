package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HealthHandler handles health check endpoints for the solver service
type HealthHandler struct {
	redis   *redis.Client
	logger  *logrus.Logger
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(redis *redis.Client, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		redis:   redis,
		logger:  logger,
		started: time.Now(),
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "lineup-solver",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// Redis is only used for caching, so a failure degrades rather than kills
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "degraded"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	c.JSON(statusCode, response)
}

// GetReady returns the readiness status
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := HealthStatus{
		Status:    "ready",
		Service:   "lineup-solver",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "not_ready"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetMetrics returns solver service metrics
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	metrics := map[string]interface{}{
		"service":   "lineup-solver",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.started).Seconds(),
	}

	// Add Redis metrics
	if info, err := h.redis.Info(c.Request.Context()).Result(); err == nil {
		metrics["redis"] = map[string]interface{}{
			"connected":      true,
			"info_available": len(info) > 0,
		}
	}

	// Add cache metrics
	if dbSize, err := h.redis.DBSize(c.Request.Context()).Result(); err == nil {
		metrics["cache"] = map[string]interface{}{
			"total_keys": dbSize,
		}

		if lineupKeys, err := h.redis.Keys(c.Request.Context(), "lineup:*").Result(); err == nil {
			metrics["lineup_cache"] = map[string]interface{}{
				"cached_results": len(lineupKeys),
			}
		}
	}

	c.JSON(http.StatusOK, metrics)
}
