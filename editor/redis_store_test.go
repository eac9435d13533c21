package editor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grouporder/apperr"
	"grouporder/models"
)

// newRedisStore connects to REDIS_ADDR and skips when no server is around.
func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := DialRedis(context.Background(), addr)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisStore(rdb, time.Minute, 5*time.Second)
	store.prefix = "grouporder:test:" + t.Name() + ":"
	return store
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	s := NewSession("order-1")
	s.Ready(models.ProducerInfo{ID: "p1", Name: "Hill Farm"}, sampleSequence())
	require.NoError(t, s.Edit(Op{Kind: OpIncrement, Index: 0}))
	require.NoError(t, store.Save(ctx, s))
	t.Cleanup(func() { _ = store.Delete(context.Background(), s.ID) })

	loaded, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StateReady, loaded.State)
	assert.Equal(t, "Hill Farm", loaded.Producer.Name)
	assert.Equal(t, s.Entries.Len(), loaded.Entries.Len())
	assert.Equal(t, 1, loaded.Entries.At(0).Quantity)

	require.NoError(t, loaded.Edit(Op{Kind: OpDuplicate, Index: 0}))
	assert.Equal(t, s.Entries.Len()+1, loaded.Entries.Len(), "the id counter survives the round trip")

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Load(ctx, s.ID)
	assert.True(t, apperr.IsNotFound(err, "session"))
}

func TestRedisStoreAcquireIsExclusive(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	release, err := store.Acquire(ctx, "s1")
	require.NoError(t, err)

	_, err = store.Acquire(ctx, "s1")
	assert.ErrorIs(t, err, apperr.ErrBusy)

	other, err := store.Acquire(ctx, "s2")
	require.NoError(t, err)
	other()

	ttl, err := store.rdb.PTTL(ctx, store.lockKey("s1")).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 5*time.Second)
	assert.Positive(t, ttl)

	release()
	again, err := store.Acquire(ctx, "s1")
	require.NoError(t, err)
	again()
}

func TestRedisStoreUnlockLeavesForeignLock(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	release, err := store.Acquire(ctx, "s1")
	require.NoError(t, err)
	// Another holder took over after our lock expired.
	require.NoError(t, store.rdb.Set(ctx, store.lockKey("s1"), "someone-else", time.Minute).Err())
	t.Cleanup(func() { store.rdb.Del(context.Background(), store.lockKey("s1")) })

	release()
	_, err = store.Acquire(ctx, "s1")
	assert.ErrorIs(t, err, apperr.ErrBusy)
}
