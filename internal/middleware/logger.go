package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// quietPaths are polled by the UI and scrapers; they are logged at debug level.
var quietPaths = map[string]bool{
	"/api/logs": true,
	"/health":   true,
	"/metrics":  true,
}

// Logger returns a zap-based request logging middleware.
// Server errors are logged at error level, client errors at warn.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		case quietPaths[path]:
			logger.Debug("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
