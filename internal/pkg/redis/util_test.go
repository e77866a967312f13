package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	UseClient(client)
	t.Cleanup(func() { _ = client.Close() })
	return mr
}

func TestTryLockSingleAttempt(t *testing.T) {
	setup(t)
	ctx := context.Background()

	ok, err := TryLock(ctx, "lock:a", "v1", time.Second, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = TryLock(ctx, "lock:a", "v2", time.Second, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	// 只有持有者能释放
	UnLock(ctx, "lock:a", "v2")
	ok, _ = TryLock(ctx, "lock:a", "v3", time.Second, 0)
	assert.False(t, ok)

	UnLock(ctx, "lock:a", "v1")
	ok, _ = TryLock(ctx, "lock:a", "v3", time.Second, 0)
	assert.True(t, ok)
}

func TestJSONRoundTripAndMissing(t *testing.T) {
	mr := setup(t)
	ctx := context.Background()

	var dst []int
	hit, err := GetJSON(ctx, "k", &dst)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetJSON(ctx, "k", []int{1, 2}, time.Minute))
	hit, err = GetJSON(ctx, "k", &dst)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int{1, 2}, dst)

	mr.FastForward(2 * time.Minute)
	hit, _ = GetJSON(ctx, "k", &dst)
	assert.False(t, hit)
}

func TestGetInt64Missing(t *testing.T) {
	setup(t)
	_, err := GetInt64(context.Background(), "none")
	assert.True(t, IsNil(err))

	require.NoError(t, SetWithExpiration(context.Background(), "n", 5, time.Minute))
	v, err := GetInt64(context.Background(), "n")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestSetNXKeepsExistingValue(t *testing.T) {
	mr := setup(t)
	ctx := context.Background()

	ok, err := SetNX(ctx, "post:like:1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = SetNX(ctx, "post:like:1", 0, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := mr.Get("post:like:1")
	assert.Equal(t, "3", got)
	assert.Equal(t, time.Minute, mr.TTL("post:like:1"))
}
