package handlers

import (
	"crypto/md5"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-solver/internal/optimizer"
	"github.com/stitts-dev/lineup-solver/internal/websocket"
	"github.com/stitts-dev/lineup-solver/pkg/cache"
	"github.com/stitts-dev/lineup-solver/pkg/config"
)

// OptimizationHandler handles lineup solve endpoints
type OptimizationHandler struct {
	cache  *cache.LineupCacheService
	wsHub  *websocket.Hub
	config *config.Config
	logger *logrus.Logger
	solver *optimizer.Solver
}

// NewOptimizationHandler creates a new optimization handler
func NewOptimizationHandler(
	cache *cache.LineupCacheService,
	wsHub *websocket.Hub,
	config *config.Config,
	logger *logrus.Logger,
) *OptimizationHandler {
	return &OptimizationHandler{
		cache:  cache,
		wsHub:  wsHub,
		config: config,
		logger: logger,
		solver: optimizer.NewSolver(logger),
	}
}

// SolveLineup handles lineup solve requests
func (h *OptimizationHandler) SolveLineup(c *gin.Context) {
	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	requirement := requirementForContest(req.Contest)
	if requirement == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Unknown contest type",
			Code:  "UNKNOWN_CONTEST",
			Details: map[string]string{
				"contest": req.Contest,
			},
		})
		return
	}

	if len(req.Players) > h.config.MaxPoolSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Player pool too large",
			Code:  "POOL_TOO_LARGE",
			Details: map[string]string{
				"pool_size": fmt.Sprintf("%d", len(req.Players)),
				"max_size":  fmt.Sprintf("%d", h.config.MaxPoolSize),
			},
		})
		return
	}

	// Check cache first
	cacheKey := h.generateCacheKey(req)
	if cached, err := h.cache.GetLineupResult(c.Request.Context(), cacheKey); err == nil && cached != nil {
		h.logger.WithField("cache_key", cacheKey).Info("Returning cached lineup result")
		c.JSON(http.StatusOK, cached)
		return
	}

	// Forward progress to WebSocket if the caller registered a client ID
	progressChan := make(chan optimizer.ProgressUpdate, 100)
	defer close(progressChan)
	if req.ClientID != "" {
		go h.forwardProgress(req.ClientID, progressChan)
	}

	startTime := time.Now()
	result, err := h.solver.SolveWithProgress(req.Players, requirement, h.solveOptions(req), progressChan)
	if err != nil {
		h.logger.WithError(err).Error("Solver failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Solver failed",
			Code:  "SOLVER_ERROR",
			Details: map[string]string{
				"error": err.Error(),
			},
		})
		return
	}

	if result.Status == optimizer.StatusInvalidInput {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid player pool or options",
			Code:  "INVALID_POOL",
			Details: map[string]string{
				"reason": result.Reason,
			},
		})
		return
	}

	if result.Status == optimizer.StatusInfeasible {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	// Only cache lineups that were actually produced
	if result.Status == optimizer.StatusOptimal || result.Status == optimizer.StatusGreedy {
		if err := h.cache.SetLineupResult(c.Request.Context(), cacheKey, result, h.config.CacheTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache lineup result")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"contest":        req.Contest,
		"status":         result.Status,
		"method":         result.Method,
		"total_points":   result.TotalPoints,
		"player_count":   len(req.Players),
		"execution_time": time.Since(startTime),
	}).Info("Solve completed")

	c.JSON(http.StatusOK, result)
}

// ValidateSolveRequest validates a solve request without running it
func (h *OptimizationHandler) ValidateSolveRequest(c *gin.Context) {
	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	requirement := requirementForContest(req.Contest)
	if requirement == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Unknown contest type",
			Code:  "UNKNOWN_CONTEST",
			Details: map[string]string{
				"contest": req.Contest,
			},
		})
		return
	}

	if req.Options.SalaryCap <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid solve options",
			Code:  "INVALID_OPTIONS",
			Details: map[string]string{
				"validation_error": "salary cap must be positive",
			},
		})
		return
	}

	if ok, reason, shortfalls := optimizer.CheckFeasibility(req.Players, requirement); !ok {
		details := map[string]string{"reason": reason}
		for _, s := range shortfalls {
			details[s.Position] = fmt.Sprintf("required %d, eligible %d", s.Required, s.Eligible)
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Pool cannot fill the roster",
			Code:    "INFEASIBLE_POOL",
			Details: details,
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Solve request is valid",
		Data: map[string]interface{}{
			"contest":        req.Contest,
			"player_count":   len(req.Players),
			"roster_size":    requirement.TotalSlots(),
			"estimated_time": h.estimateSolveTime(req),
		},
	})
}

// GetCacheStatus returns cache statistics
func (h *OptimizationHandler) GetCacheStatus(c *gin.Context) {
	status := h.cache.GetStatus(c.Request.Context())
	c.JSON(http.StatusOK, status)
}

// Helper methods

func (h *OptimizationHandler) generateCacheKey(req SolveRequest) string {
	// Create hash of the request for cache key
	hash := md5.New()
	hash.Write([]byte(fmt.Sprintf("%+v", req)))
	return fmt.Sprintf("%s:%x", req.Contest, hash.Sum(nil))
}

// solveOptions fills unset per-request options from service configuration.
func (h *OptimizationHandler) solveOptions(req SolveRequest) optimizer.SolveOptions {
	opts := req.Options
	if opts.Workers <= 0 {
		opts.Workers = h.config.SolveWorkers
	}
	if opts.Attempts <= 0 {
		opts.Attempts = h.config.SolveAttempts
	}
	if opts.Generations <= 0 {
		opts.Generations = h.config.GeneticGenerations
	}
	if opts.Population <= 0 {
		opts.Population = h.config.GeneticPopulation
	}
	if req.TimeLimitMs > 0 {
		opts.TimeLimit = time.Duration(req.TimeLimitMs) * time.Millisecond
	} else if opts.TimeLimit <= 0 {
		opts.TimeLimit = h.config.SolveTimeout
	}
	return opts
}

func (h *OptimizationHandler) forwardProgress(clientID string, progressChan <-chan optimizer.ProgressUpdate) {
	for update := range progressChan {
		h.wsHub.BroadcastToClient(clientID, update)
	}
}

func (h *OptimizationHandler) estimateSolveTime(req SolveRequest) string {
	attempts := req.Options.Attempts
	if attempts <= 0 {
		attempts = h.config.SolveAttempts
	}

	// Rough estimate: heuristic attempts dominate for small pools
	estimatedMs := len(req.Players) * attempts / 1000
	if estimatedMs < 1 {
		estimatedMs = 1
	}
	duration := time.Duration(estimatedMs) * time.Millisecond

	return duration.String()
}
