package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesbook-api/internal/infrastructure/repository"
	"github.com/sangkips/salesbook-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	verifier := utils.NewTokenVerifier("secret", "")
	r := gin.New()
	r.GET("/me", AuthMiddleware(verifier), func(c *gin.Context) {
		c.String(http.StatusOK, CallerID(c))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid authorization header format")

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := verifier.Sign("user-9", "u@example.com", time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sub:user-9", w.Body.String())
}

func TestCallerIDFallsBackToClientIP(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, CallerID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "ip:10.0.0.7", serve(r, req).Body.String())
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewClientRateLimiter(ctx, RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Hour,
		EntryTTL:          time.Minute,
	})
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, request("10.0.0.1").Code)
	w := request("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	// other callers have their own bucket
	assert.Equal(t, http.StatusOK, request("10.0.0.2").Code)
	assert.Equal(t, 2, rl.Size())

	rl.cleanup(time.Now().Add(2 * time.Minute))
	assert.Zero(t, rl.Size())
}

func TestRateLimiterConfigFor(t *testing.T) {
	cfg := RateLimiterConfigFor(120, time.Minute)
	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 120, cfg.BurstSize)
}

func TestIdempotencyReplaysSuccessfulResponses(t *testing.T) {
	calls := 0
	r := gin.New()
	r.POST("/sales", Idempotency(IdempotencyConfig{Repo: repository.NewIdempotencyRepository()}), func(c *gin.Context) {
		calls++
		if c.Query("fail") != "" {
			c.JSON(http.StatusBadRequest, gin.H{"call": calls})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	post := func(key, target, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader("{}"))
		req.RemoteAddr = ip + ":1"
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		return serve(r, req)
	}

	first := post("k1", "/sales", "10.0.0.1")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.JSONEq(t, `{"call":1}`, first.Body.String())

	replay := post("k1", "/sales", "10.0.0.1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, `{"call":1}`, replay.Body.String())
	assert.Equal(t, 1, calls)

	// same key from another caller is independent
	assert.JSONEq(t, `{"call":2}`, post("k1", "/sales", "10.0.0.2").Body.String())

	// no key, no replay
	assert.JSONEq(t, `{"call":3}`, post("", "/sales", "10.0.0.1").Body.String())
	assert.JSONEq(t, `{"call":4}`, post("", "/sales", "10.0.0.1").Body.String())

	// failures are not stored
	assert.Equal(t, http.StatusBadRequest, post("k2", "/sales?fail=1", "10.0.0.1").Code)
	assert.Equal(t, http.StatusCreated, post("k2", "/sales", "10.0.0.1").Code)
	assert.Equal(t, 6, calls)
}

func TestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(LoggerMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok?x=1", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := serve(r, req)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request served", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/ok?x=1", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Contains(t, entries[1].ContextMap()["errors"], assert.AnError.Error())
}
