package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/life-engine/internal/services"
)

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

type HealthHandler struct {
	cache       services.Cache
	llmProvider string
	logger      *slog.Logger
}

// NewHealthHandler builds the health endpoint. A nil cache is reported as
// disabled rather than unhealthy.
func NewHealthHandler(cache services.Cache, llmProvider string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		cache:       cache,
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"

	switch {
	case h.cache == nil:
		components["cache"] = "disabled"
	case h.cache.Ping(ctx) != nil:
		h.logger.Warn("Cache health check failed")
		components["cache"] = "unhealthy"
		overallStatus = "degraded"
	default:
		components["cache"] = "healthy"
	}
	components["llm_provider"] = h.llmProvider

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "life-engine",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
	}
}
