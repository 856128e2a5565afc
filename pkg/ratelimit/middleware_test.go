package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smskit/internal/config"
	"smskit/pkg/errors"
)

func TestFromConfig(t *testing.T) {
	got := FromConfig(config.RateLimitConfig{RPS: 2.5, CleanupInterval: 30})
	assert.Equal(t, 2.5, got.RPS)
	assert.Equal(t, DefaultConfig().Burst, got.Burst)
	assert.Equal(t, 30*time.Second, got.CleanupInterval)
	assert.Equal(t, DefaultConfig().MaxAge, got.MaxAge)
}

func TestRateLimitMiddleware_LimitsPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(RateLimitConfig{
		RPS:             0.001,
		Burst:           2,
		CleanupInterval: time.Hour,
		MaxAge:          time.Hour,
	}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	w := call("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", resp.ErrorCode)

	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)
}

func TestLimiterSet_Evict(t *testing.T) {
	set := newLimiterSet(RateLimitConfig{RPS: 1, Burst: 1, MaxAge: time.Minute})
	now := time.Now()

	set.get("a", now.Add(-2*time.Minute))
	set.get("b", now)
	require.Equal(t, 2, set.size())

	assert.Equal(t, 1, set.evict(now))
	assert.Equal(t, 1, set.size())
}
