package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle_scan_backend/internal/scanning/domain"
)

func newTestStore(t *testing.T) (*RedisTemplateStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTemplateStore(client), mr
}

func TestRedisTemplateStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	entries := []domain.ProcessConfigEntry{
		{ProcessName: "Sewing", UnitPrice: decimal.RequireFromString("2.5"), SortOrder: 2, ProgressStage: "车缝"},
	}
	require.NoError(t, store.Put(ctx, "PO-1", entries, 5*time.Minute))

	got, expiresAt, ok, err := store.Get(ctx, "PO-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Sewing", got[0].ProcessName)
	assert.True(t, got[0].UnitPrice.Equal(decimal.RequireFromString("2.5")))
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)
}

func TestRedisTemplateStoreMiss(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, ok, err := store.Get(context.Background(), "PO-unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTemplateStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "PO-2", []domain.ProcessConfigEntry{{ProcessName: "Sewing"}}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, _, ok, err := store.Get(ctx, "PO-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTemplateStoreIgnoresPersistentKeys(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set(templateKey("PO-3"), `[{"processName":"Sewing"}]`))

	_, _, ok, err := store.Get(context.Background(), "PO-3")
	require.NoError(t, err)
	assert.False(t, ok)
}
