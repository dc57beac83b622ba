package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salesbook-api/internal/domain/repository"
)

type entryKey struct {
	caller string
	key    string
}

type idempotencyRepository struct {
	mu      sync.RWMutex
	entries map[entryKey]entity.IdempotencyKey
}

// NewIdempotencyRepository creates an in-process idempotency key store
func NewIdempotencyRepository() domainRepo.IdempotencyRepository {
	return &idempotencyRepository{entries: make(map[entryKey]entity.IdempotencyKey)}
}

func (r *idempotencyRepository) Find(ctx context.Context, caller, key string) (*entity.IdempotencyKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[entryKey{caller, key}]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r *idempotencyRepository) Save(ctx context.Context, entry *entity.IdempotencyKey) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entryKey{entry.Caller, entry.Key}] = *entry
	return nil
}

func (r *idempotencyRepository) Purge(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for k, entry := range r.entries {
		if entry.ExpiredAt(now) {
			delete(r.entries, k)
			removed++
		}
	}
	return removed, nil
}
