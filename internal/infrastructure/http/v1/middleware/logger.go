package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockreceipt/pkg/logger"
)

// Logger logs one line per request with timing and status, and makes log
// reachable from the request context for logger.Info and friends.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		entry := log.WithContext(c.Request.Context())
		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.Last().Error())
		}

		if status >= 500 {
			entry.Errorw("http request", kv...)
			return
		}
		entry.Infow("http request", kv...)
	}
}
