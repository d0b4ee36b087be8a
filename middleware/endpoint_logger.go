package middleware

import (
	"fmt"
	"time"

	"github.com/ariebrainware/patient-registry/util"
	"github.com/gin-gonic/gin"
)

// EndpointCallLogger logs each HTTP request as an endpoint event.
func EndpointCallLogger(access *util.AccessLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"query":       c.Request.URL.RawQuery,
		}
		if len(c.Errors) > 0 {
			details["errors"] = c.Errors.String()
		}

		access.Log(c.Request.Context(), util.AccessEvent{
			EventType: util.EventEndpointCall,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		})
	}
}
