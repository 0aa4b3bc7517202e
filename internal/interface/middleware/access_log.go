package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-users-contract/pkg/response"
)

// AccessLog logs one structured line per request after it completes.
func AccessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id": c.GetString(response.CtxKeyRequestID),
			"method":     c.Request.Method,
			"path":       routeOf(c),
			"status":     c.Writer.Status(),
			"ip":         ipFromCtx(c),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request")
		}
	}
}
