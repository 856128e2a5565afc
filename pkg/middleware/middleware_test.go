package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smskit/pkg/errors"
	"smskit/pkg/logging"
)

type entry struct {
	level     string
	msg       string
	requestID string
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []entry
}

func (l *recordingLogger) add(level string, ctx context.Context, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{level: level, msg: msg, requestID: logging.GetRequestID(ctx)})
}

func (l *recordingLogger) InfowCtx(ctx context.Context, msg string, _ ...interface{}) {
	l.add("info", ctx, msg)
}

func (l *recordingLogger) WarnwCtx(ctx context.Context, msg string, _ ...interface{}) {
	l.add("warn", ctx, msg)
}

func (l *recordingLogger) ErrorwCtx(ctx context.Context, msg string, _ ...interface{}) {
	l.add("error", ctx, msg)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		seen = logging.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})
}

func TestLoggerMiddleware_Levels(t *testing.T) {
	log := &recordingLogger{}
	router := gin.New()
	router.Use(RequestIDMiddleware(), LoggerMiddleware(log))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusForbidden) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/fail"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(RequestIDHeader, "rid"+path)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, log.entries, 3)
	assert.Equal(t, "info", log.entries[0].level)
	assert.Equal(t, "warn", log.entries[1].level)
	assert.Equal(t, "error", log.entries[2].level)
	assert.Equal(t, "rid/bad", log.entries[1].requestID)
}

func TestRecoveryMiddleware(t *testing.T) {
	log := &recordingLogger{}
	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.ErrorCode)

	require.Len(t, log.entries, 1)
	assert.Equal(t, "Panic recovered", log.entries[0].msg)
}
