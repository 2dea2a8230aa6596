package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "requestID"

// RequestLogger logs each request with a generated request id. Passing a
// nil logger falls back to the global zap logger.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		l := logger
		if l == nil {
			l = zap.L()
		}
		l.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// GetRequestID returns the id assigned by RequestLogger.
func GetRequestID(c *gin.Context) (string, bool) {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}
