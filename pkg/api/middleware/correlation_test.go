package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCorrelationIDMiddleware_ExistingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	router := gin.New()
	router.Use(CorrelationIDMiddleware(logger))

	router.GET("/test", func(c *gin.Context) {
		assert.Equal(t, "test-correlation-id-123", GetCorrelationID(c))
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(CorrelationIDHeader, "test-correlation-id-123")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test-correlation-id-123", w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDMiddleware_GenerateNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	router := gin.New()
	router.Use(CorrelationIDMiddleware(logger))

	router.GET("/test", func(c *gin.Context) {
		assert.NotEmpty(t, GetCorrelationID(c), "correlation ID should be auto-generated when not provided")
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))
}

func TestGetLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	baseLogger := zap.NewNop()

	router := gin.New()
	router.Use(CorrelationIDMiddleware(baseLogger))

	router.GET("/test", func(c *gin.Context) {
		assert.NotNil(t, GetLogger(c, baseLogger))
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetLogger_Fallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fallbackLogger := zap.NewNop()

	// No correlation middleware installed, so the fallback must be returned.
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		assert.Same(t, fallbackLogger, GetLogger(c, fallbackLogger))
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCorrelationIDMiddleware_LowercaseHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	router := gin.New()
	router.Use(CorrelationIDMiddleware(logger))

	router.GET("/test", func(c *gin.Context) {
		assert.Equal(t, "lowercase-correlation-id-456", GetCorrelationID(c))
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("x-correlation-id", "lowercase-correlation-id-456")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lowercase-correlation-id-456", w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDMiddleware_MixedCaseHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	router := gin.New()
	router.Use(CorrelationIDMiddleware(logger))

	router.GET("/test", func(c *gin.Context) {
		assert.Equal(t, "mixed-case-id-789", GetCorrelationID(c))
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-CoRrElAtIoN-Id", "mixed-case-id-789")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mixed-case-id-789", w.Header().Get(CorrelationIDHeader))
}
