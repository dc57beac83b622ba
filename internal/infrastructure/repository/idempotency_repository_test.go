package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/salesbook-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewIdempotencyRepository()
	now := time.Now()

	missing, err := repo.Find(ctx, "ip:10.0.0.1", "k1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Save(ctx, &entity.IdempotencyKey{
		Key:          "k1",
		Caller:       "ip:10.0.0.1",
		ResponseCode: 201,
		ResponseBody: []byte(`{"ok":true}`),
		ExpiresAt:    now.Add(time.Hour),
	}))
	require.NoError(t, repo.Save(ctx, &entity.IdempotencyKey{
		Key:       "k2",
		Caller:    "ip:10.0.0.1",
		ExpiresAt: now.Add(-time.Minute),
	}))

	got, err := repo.Find(ctx, "ip:10.0.0.1", "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)
	assert.NotEmpty(t, got.ID)

	other, err := repo.Find(ctx, "ip:10.0.0.2", "k1")
	require.NoError(t, err)
	assert.Nil(t, other, "keys are scoped to the caller")

	removed, err := repo.Purge(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	expired, err := repo.Find(ctx, "ip:10.0.0.1", "k2")
	require.NoError(t, err)
	assert.Nil(t, expired)

	kept, err := repo.Find(ctx, "ip:10.0.0.1", "k1")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestIdempotencyFindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewIdempotencyRepository()

	require.NoError(t, repo.Save(ctx, &entity.IdempotencyKey{
		Key:          "k",
		Caller:       "sub:alice",
		ResponseCode: 201,
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	first, err := repo.Find(ctx, "sub:alice", "k")
	require.NoError(t, err)
	first.ResponseCode = 500

	second, err := repo.Find(ctx, "sub:alice", "k")
	require.NoError(t, err)
	assert.Equal(t, 201, second.ResponseCode)
}
