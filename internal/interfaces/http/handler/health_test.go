package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantState  string
	}{
		{"no checks", nil, http.StatusOK, "ok"},
		{"all healthy", map[string]HealthCheck{"database": ok, "cache": ok}, http.StatusOK, "ok"},
		{"database down", map[string]HealthCheck{"database": down, "cache": ok}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("1.2.3", tt.checks)
			router := gin.New()
			router.GET("/health", h.Health)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)

			var envelope struct {
				Success bool           `json:"success"`
				Data    HealthResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.Equal(t, tt.wantStatus == http.StatusOK, envelope.Success)
			assert.Equal(t, tt.wantState, envelope.Data.Status)
			assert.Equal(t, "1.2.3", envelope.Data.Version)
			assert.Len(t, envelope.Data.Checks, len(tt.checks))
		})
	}
}
