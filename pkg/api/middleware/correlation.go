package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// CorrelationIDHeader carries the caller-chosen request identifier.
	// Header name matching is case-insensitive.
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the gin context key holding the correlation ID.
	CorrelationIDKey = "correlation_id"

	// LoggerKey is the gin context key holding the request-scoped logger.
	LoggerKey = "logger"
)

// CorrelationIDMiddleware tags every request with a correlation ID: the
// caller's X-Correlation-ID header when present, a fresh UUID otherwise.
// The ID is echoed on the response and stamped onto a request-scoped
// logger so every line a handler logs carries it.
func CorrelationIDMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(CorrelationIDKey, id)
		c.Set(LoggerKey, base.With(zap.String("correlation_id", id)))
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetLogger returns the request-scoped logger, or fallback when the
// correlation middleware did not run.
func GetLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if log, ok := v.(*zap.Logger); ok {
			return log
		}
	}
	return fallback
}

// GetCorrelationID returns the request's correlation ID, or the empty
// string when the correlation middleware did not run.
func GetCorrelationID(c *gin.Context) string {
	if v, ok := c.Get(CorrelationIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
