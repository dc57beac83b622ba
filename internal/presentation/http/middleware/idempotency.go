package middleware

import (
	"bytes"
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesbook-api/internal/domain/entity"
	"github.com/sangkips/salesbook-api/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request retried with the
// same Idempotency-Key by the same caller. Only 2xx responses are stored, so
// a rejected request can be corrected and resent under the same key.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method != "POST" {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		caller := CallerID(c)
		ctx := c.Request.Context()

		existing, err := config.Repo.Find(ctx, caller, key)
		if err != nil {
			logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if existing != nil && !existing.ExpiredAt(time.Now()) {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", existing.ResponseBody)
			c.Abort()
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		now := time.Now()
		ikey := &entity.IdempotencyKey{
			Key:          key,
			Caller:       caller,
			Endpoint:     c.Request.Method + " " + c.FullPath(),
			ResponseCode: status,
			ResponseBody: bytes.Clone(blw.body.Bytes()),
			CreatedAt:    now,
			ExpiresAt:    now.Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Save(ctx, ikey); err != nil {
			logger.Warn("failed to store idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}

// SweepIdempotencyKeys removes expired keys every interval until ctx is done
func SweepIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := repo.Purge(ctx, now)
			if err != nil {
				logger.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Debug("purged idempotency keys", zap.Int("count", removed))
			}
		}
	}
}
