package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores the response of a processed create request so a
// retried request with the same key replays it instead of creating again
type IdempotencyKey struct {
	ID           uuid.UUID
	Key          string // Idempotency-Key header
	Caller       string // "sub:<subject>" or "ip:<address>"
	Endpoint     string // e.g. "POST /sale-transactions"
	ResponseCode int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// ExpiredAt reports whether the entry is no longer valid at t
func (i *IdempotencyKey) ExpiredAt(t time.Time) bool {
	return !t.Before(i.ExpiresAt)
}
