package redisbus

import (
	"context"
	"testing"
	"time"

	"signage-panel/internal/realtime"
	"signage-panel/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBridge(t *testing.T, mr *miniredis.Miniredis, local realtime.Publisher) *Bridge {
	t.Helper()
	b := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "", local, nil)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func run(t *testing.T, b *Bridge) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestBridgeFansOutAcrossReplicas(t *testing.T) {
	mr := miniredis.RunT(t)
	left, right := &testutil.Recorder{}, &testutil.Recorder{}
	a := newBridge(t, mr, left)
	b := newBridge(t, mr, right)
	run(t, a)
	run(t, b)

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultChannel)[DefaultChannel] == 2
	}, 2*time.Second, 10*time.Millisecond)

	a.Publish(context.Background(), realtime.PlaylistUpdate(3, realtime.ReasonExpiredCleanup))
	a.Publish(context.Background(), realtime.GroupsUpdate(nil))

	for _, rec := range []*testutil.Recorder{left, right} {
		require.Eventually(t, func() bool { return len(rec.Events()) == 2 }, 2*time.Second, 10*time.Millisecond)
		evs := rec.Events()
		assert.Equal(t, realtime.EventPlaylistUpdate, evs[0].Type)
		assert.Equal(t, uint(3), *evs[0].Payload.GroupID)
		assert.Equal(t, realtime.ReasonExpiredCleanup, evs[0].Payload.Reason)
		assert.Equal(t, realtime.EventGroupsUpdate, evs[1].Type)
	}
}

func TestBridgeSkipsMalformedMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	rec := &testutil.Recorder{}
	b := newBridge(t, mr, rec)
	run(t, b)

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultChannel)[DefaultChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	mr.Publish(DefaultChannel, "{not json")
	b.Publish(context.Background(), realtime.PlaylistUpdate(1, ""))

	require.Eventually(t, func() bool { return len(rec.Events()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestBridgeFallsBackToLocalDelivery(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rec := &testutil.Recorder{}
	b := newBridge(t, mr, rec)
	mr.Close()

	b.Publish(context.Background(), realtime.PlaylistUpdate(9, ""))

	require.Len(t, rec.Events(), 1)
	assert.Equal(t, uint(9), *rec.Events()[0].Payload.GroupID)
}

func fastRetry(b *Bridge) {
	b.retryMin = 10 * time.Millisecond
	b.retryMax = 50 * time.Millisecond
}

func TestBridgeRunOutlivesRedisOutage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	b := newBridge(t, mr, &testutil.Recorder{})
	fastRetry(b)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	start := time.Now()
	require.NoError(t, b.Run(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestBridgeSubscribesWhenRedisComesBack(t *testing.T) {
	down, err := miniredis.Run()
	require.NoError(t, err)
	addr := down.Addr()
	rec := &testutil.Recorder{}
	b := newBridge(t, down, rec)
	fastRetry(b)
	down.Close()
	run(t, b)

	up := miniredis.NewMiniRedis()
	require.NoError(t, up.StartAddr(addr))
	t.Cleanup(up.Close)

	require.Eventually(t, func() bool {
		return up.PubSubNumSub(DefaultChannel)[DefaultChannel] == 1
	}, 5*time.Second, 20*time.Millisecond)

	up.Publish(DefaultChannel, `{"type":"playlist:update","payload":{"groupId":4}}`)
	require.Eventually(t, func() bool { return len(rec.Events()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint(4), *rec.Events()[0].Payload.GroupID)
}

func TestNewFromURL(t *testing.T) {
	_, err := NewFromURL("not a url", "", realtime.Discard{}, nil)
	require.Error(t, err)

	b, err := NewFromURL("redis://localhost:6379/0", "custom", realtime.Discard{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", b.channel)
	require.NoError(t, b.Close())
}
