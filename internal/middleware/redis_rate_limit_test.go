package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdanthq/verdant/internal/cache"
	"github.com/verdanthq/verdant/internal/logger"
)

func rateLimitRouter(maxRequests int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(maxRequests, window))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func TestRateLimitRejectsBeyondBudget(t *testing.T) {
	require.NoError(t, logger.Initialize("error", filepath.Join(t.TempDir(), "test.log")))

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	if _, err := cache.NewRedisClient(host, os.Getenv("REDIS_PORT"), os.Getenv("REDIS_PASSWORD")); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	router := rateLimitRouter(3, time.Minute)

	// Unique fake client address so reruns inside the window start fresh
	addr := uuid.New().String() + ":1234"

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = addr
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimitAllowsSeparateClients(t *testing.T) {
	require.NoError(t, logger.Initialize("error", filepath.Join(t.TempDir(), "test.log")))

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	if _, err := cache.NewRedisClient(host, os.Getenv("REDIS_PORT"), os.Getenv("REDIS_PASSWORD")); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	router := rateLimitRouter(1, time.Minute)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = uuid.New().String() + ":1234"
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
