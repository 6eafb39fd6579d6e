package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greetingsmith/backend/internal/infrastructure/telemetry"
)

// Profiling label keys attached to every request.
const (
	ProfilingLabelMethod = "method"
	ProfilingLabelRoute  = "route"
	ProfilingLabelGroup  = "group"
)

// ProfilingConfig holds configuration for the profiling label middleware.
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string
}

// DefaultProfilingConfig skips the health check.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health"},
	}
}

// ProfilingWithConfig labels CPU samples taken while serving a request with
// its method, route template and API group (text, export-pdf, pay, ...).
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		route := c.FullPath()
		labels := map[string]string{
			ProfilingLabelMethod: c.Request.Method,
			ProfilingLabelRoute:  route,
			ProfilingLabelGroup:  routeGroup(route),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// routeGroup returns the first segment after /api, e.g. "pay" for
// /api/pay/verify.
func routeGroup(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return ""
	}
	group, _, _ := strings.Cut(rest, "/")
	return group
}
