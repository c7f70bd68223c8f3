package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/CampusDine/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRegisterFirstClaim(t *testing.T) {
	svc := NewIdempotencyService(cache.NewMemoryStore())
	ctx := context.Background()

	isNew, record, err := svc.Register(ctx, "webhook", "evt_001", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.False(t, record.Completed)
}

func TestIdempotencyRegisterDuplicate(t *testing.T) {
	svc := NewIdempotencyService(cache.NewMemoryStore())
	ctx := context.Background()

	isNew, _, err := svc.Register(ctx, "webhook", "evt_001", time.Hour)
	require.NoError(t, err)
	require.True(t, isNew)

	isNew, record, err := svc.Register(ctx, "webhook", "evt_001", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.False(t, record.Completed, "still in flight, not completed")
}

func TestIdempotencyCompleteThenReplay(t *testing.T) {
	svc := NewIdempotencyService(cache.NewMemoryStore())
	ctx := context.Background()

	isNew, _, err := svc.Register(ctx, "capture", "key-1", time.Hour)
	require.NoError(t, err)
	require.True(t, isNew)

	require.NoError(t, svc.Complete(ctx, "capture", "key-1", 200, []byte(`{"ok":true}`), time.Hour))

	isNew, record, err := svc.Register(ctx, "capture", "key-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.True(t, record.Completed)
	assert.Equal(t, 200, record.StatusCode)
	assert.Equal(t, `{"ok":true}`, record.Response)
}

func TestIdempotencyScopesAreIndependent(t *testing.T) {
	svc := NewIdempotencyService(cache.NewMemoryStore())
	ctx := context.Background()

	isNew, _, err := svc.Register(ctx, "capture", "same-key", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, _, err = svc.Register(ctx, "refund", "same-key", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "same key in a different scope is a fresh claim")
}

func TestIdempotencyReleaseAllowsReclaim(t *testing.T) {
	svc := NewIdempotencyService(cache.NewMemoryStore())
	ctx := context.Background()

	isNew, _, err := svc.Register(ctx, "webhook", "evt_002", time.Hour)
	require.NoError(t, err)
	require.True(t, isNew)

	require.NoError(t, svc.Release(ctx, "webhook", "evt_002"))

	isNew, _, err = svc.Register(ctx, "webhook", "evt_002", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "released key is claimable again")
}

func TestIdempotencyConcurrentRegisterSingleWinner(t *testing.T) {
	svc := NewIdempotencyService(cache.NewMemoryStore())
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, _, err := svc.Register(ctx, "webhook", "evt_contended", time.Hour)
			assert.NoError(t, err)
			if isNew {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one concurrent Register should claim the key")
}
