package repository

import (
	"context"
	"time"

	"github.com/sangkips/salesbook-api/internal/domain/entity"
)

// IdempotencyRepository keeps replayable responses per caller and key
type IdempotencyRepository interface {
	// Find returns the entry for caller and key, or nil when there is none
	Find(ctx context.Context, caller, key string) (*entity.IdempotencyKey, error)
	// Save stores entry, replacing any previous one for the same caller and key
	Save(ctx context.Context, entry *entity.IdempotencyKey) error
	// Purge drops entries that expired before now and reports how many went
	Purge(ctx context.Context, now time.Time) (int, error)
}
