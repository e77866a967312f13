package readtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recorder struct {
	flushed []time.Duration
	fail    bool
}

func (r *recorder) flush(_ context.Context, d time.Duration) error {
	if r.fail {
		return errors.New("sink down")
	}
	r.flushed = append(r.flushed, d)
	return nil
}

func (r *recorder) total() time.Duration {
	var sum time.Duration
	for _, d := range r.flushed {
		sum += d
	}
	return sum
}

func newAccumulator() (*Accumulator, *fakeClock, *recorder) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	return New(rec.flush, WithClock(clock.Now)), clock, rec
}

func TestHideFlushesVisibleTime(t *testing.T) {
	acc, clock, rec := newAccumulator()
	ctx := context.Background()

	acc.Start()
	clock.Advance(10 * time.Second)
	require.NoError(t, acc.Hide(ctx))

	assert.Equal(t, []time.Duration{10 * time.Second}, rec.flushed)
	assert.False(t, acc.Visible())
	assert.Zero(t, acc.Pending())
}

func TestHiddenTimeIsNotCounted(t *testing.T) {
	acc, clock, rec := newAccumulator()
	ctx := context.Background()

	acc.Start()
	clock.Advance(4 * time.Second)
	require.NoError(t, acc.Hide(ctx))
	clock.Advance(time.Minute)
	acc.Show()
	clock.Advance(6 * time.Second)
	require.NoError(t, acc.Close(ctx))

	assert.Equal(t, 10*time.Second, rec.total())
}

func TestShortSessionsAreHeldUntilOverThreshold(t *testing.T) {
	acc, clock, rec := newAccumulator()
	ctx := context.Background()

	acc.Start()
	clock.Advance(800 * time.Millisecond)
	require.NoError(t, acc.Hide(ctx))
	assert.Empty(t, rec.flushed)
	assert.Equal(t, 800*time.Millisecond, acc.Pending())

	acc.Show()
	clock.Advance(700 * time.Millisecond)
	require.NoError(t, acc.Hide(ctx))
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, rec.flushed)
}

func TestFailedFlushKeepsTimeWithoutDoubleCounting(t *testing.T) {
	acc, clock, rec := newAccumulator()
	ctx := context.Background()

	acc.Start()
	clock.Advance(5 * time.Second)
	rec.fail = true
	assert.Error(t, acc.Tick(ctx))
	assert.Equal(t, 5*time.Second, acc.Pending())

	clock.Advance(5 * time.Second)
	rec.fail = false
	require.NoError(t, acc.Tick(ctx))
	assert.Equal(t, []time.Duration{10 * time.Second}, rec.flushed)

	// 成功后可见会话从本次上报时刻重新计时
	clock.Advance(3 * time.Second)
	require.NoError(t, acc.Close(ctx))
	assert.Equal(t, 13*time.Second, rec.total())
}

func TestCloseStopsFurtherFlushes(t *testing.T) {
	acc, clock, rec := newAccumulator()
	ctx := context.Background()

	acc.Start()
	clock.Advance(2 * time.Second)
	require.NoError(t, acc.Close(ctx))
	require.NoError(t, acc.Close(ctx))

	acc.Show()
	clock.Advance(time.Hour)
	require.NoError(t, acc.Tick(ctx))
	require.NoError(t, acc.Hide(ctx))

	assert.Equal(t, []time.Duration{2 * time.Second}, rec.flushed)
	assert.False(t, acc.Visible())
}

func TestShowIsIdempotent(t *testing.T) {
	acc, clock, rec := newAccumulator()

	acc.Start()
	clock.Advance(3 * time.Second)
	acc.Show()
	clock.Advance(3 * time.Second)
	require.NoError(t, acc.Hide(context.Background()))

	assert.Equal(t, []time.Duration{6 * time.Second}, rec.flushed)
}

func TestFlushCapsBacklogAfterLongOutage(t *testing.T) {
	acc, clock, rec := newAccumulator()
	ctx := context.Background()

	acc.Start()
	rec.fail = true
	for i := 0; i < 5; i++ {
		clock.Advance(15 * time.Minute)
		require.Error(t, acc.Tick(ctx))
	}
	assert.Equal(t, 75*time.Minute, acc.Pending())

	rec.fail = false
	clock.Advance(5 * time.Minute)
	require.NoError(t, acc.Tick(ctx))
	assert.Equal(t, []time.Duration{DefaultMaxFlush}, rec.flushed)
	assert.Zero(t, acc.Pending())

	// 积压清掉后恢复正常上报
	clock.Advance(20 * time.Second)
	require.NoError(t, acc.Close(ctx))
	assert.Equal(t, []time.Duration{DefaultMaxFlush, 20 * time.Second}, rec.flushed)
}
