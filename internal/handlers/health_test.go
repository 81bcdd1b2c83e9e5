package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/life-engine/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		setupCache     func() services.Cache
		expectedStatus int
		expectedHealth string
		expectedCache  string
	}{
		{
			name: "all healthy",
			setupCache: func() services.Cache {
				mockCache := services.NewMockCache()
				mockCache.SetPingSuccess()
				return mockCache
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedCache:  "healthy",
		},
		{
			name: "unhealthy cache",
			setupCache: func() services.Cache {
				mockCache := services.NewMockCache()
				mockCache.SetPingError(errors.New("connection failed"))
				return mockCache
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedCache:  "unhealthy",
		},
		{
			name:           "cache disabled",
			setupCache:     func() services.Cache { return nil },
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedCache:  "disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupCache(), "gemini", testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var response HealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Equal(t, tt.expectedHealth, response.Status)
			assert.Equal(t, "life-engine", response.Service)
			assert.Equal(t, tt.expectedCache, response.Components["cache"])
			assert.Equal(t, "gemini", response.Components["llm_provider"])
			assert.False(t, response.Timestamp.IsZero())
		})
	}
}
