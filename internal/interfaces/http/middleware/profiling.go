package middleware

import (
	"context"

	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// profilingSkipPaths carry no labels; health checks would only add noise
var profilingSkipPaths = map[string]bool{
	"/health": true,
}

// Profiling labels CPU samples taken while a request is handled with its
// route pattern and method. Unmatched routes get only the method label.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return func(c *gin.Context) {
		if profilingSkipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			telemetry.ProfilingLabelRoute, c.FullPath(),
			telemetry.ProfilingLabelMethod, c.Request.Method,
		)
	}
}
