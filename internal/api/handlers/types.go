package handlers

import (
	"time"

	"github.com/stitts-dev/lineup-solver/internal/optimizer"
)

// Contest names accepted by the solve endpoints.
const (
	ContestClassic  = "classic"
	ContestShowdown = "showdown"
)

// SolveRequest is the payload for the solve and validate endpoints.
// TimeLimitMs bounds the exact solver stage; zero falls back to the
// configured default.
type SolveRequest struct {
	Contest     string                 `json:"contest" binding:"required"`
	Players     []optimizer.Player     `json:"players" binding:"required"`
	Options     optimizer.SolveOptions `json:"options"`
	ClientID    string                 `json:"client_id,omitempty"`
	TimeLimitMs int                    `json:"time_limit_ms,omitempty"`
}

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse is the standard success payload for non-result endpoints
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthStatus is the payload for health and readiness endpoints
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// requirementForContest maps a contest name to its roster definition.
func requirementForContest(contest string) *optimizer.Requirement {
	switch contest {
	case ContestClassic:
		return optimizer.ClassicRequirement()
	case ContestShowdown:
		return optimizer.ShowdownRequirement()
	default:
		return nil
	}
}
