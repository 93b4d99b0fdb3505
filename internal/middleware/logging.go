package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
)

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	log = log.WithModule("http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latencyMs": time.Since(start).Milliseconds(),
			"requestId": c.GetString(ContextRequestID),
		}

		switch {
		case status >= 500:
			log.Error("http.request", fields)
		case status >= 400:
			log.Warn("http.request", fields)
		default:
			log.Info("http.request", fields)
		}
	}
}
