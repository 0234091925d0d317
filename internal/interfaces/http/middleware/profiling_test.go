package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func profilingRouter(enabled bool, seen map[string]map[string]string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Profiling(enabled))
	capture := func(c *gin.Context) {
		labels := map[string]string{}
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			labels[k] = v
			return true
		})
		seen[c.Request.URL.Path] = labels
		c.Status(http.StatusOK)
	}
	r.GET("/health", capture)
	r.GET("/api/v1/pricing/effective", capture)
	return r
}

func TestProfiling_LabelsRouteAndMethod(t *testing.T) {
	seen := map[string]map[string]string{}
	r := profilingRouter(true, seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/effective?product_id=x", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{
		telemetry.ProfilingLabelRoute:  "/api/v1/pricing/effective",
		telemetry.ProfilingLabelMethod: http.MethodGet,
	}, seen["/api/v1/pricing/effective"])
}

func TestProfiling_SkipsHealth(t *testing.T) {
	seen := map[string]map[string]string{}
	r := profilingRouter(true, seen)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Empty(t, seen["/health"])
}

func TestProfiling_Disabled(t *testing.T) {
	seen := map[string]map[string]string{}
	r := profilingRouter(false, seen)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/pricing/effective", nil))

	assert.Empty(t, seen["/api/v1/pricing/effective"])
}
