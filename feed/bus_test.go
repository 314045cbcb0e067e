package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed event")
	}
	return Event{}
}

func TestPublishReachesRoomSubscriber(t *testing.T) {
	_, client := newMiniRedisClient(t)
	bus := NewBus(client, zap.NewNop())
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "ABC123")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, "ABC123", KindUsers))
	require.NoError(t, bus.Publish(ctx, "ABC123", KindSwipes))

	assert.Equal(t, Event{RoomID: "ABC123", Kind: KindUsers}, receive(t, sub))
	assert.Equal(t, Event{RoomID: "ABC123", Kind: KindSwipes}, receive(t, sub))
}

func TestSubscriberOnlySeesItsRoom(t *testing.T) {
	_, client := newMiniRedisClient(t)
	bus := NewBus(client, zap.NewNop())
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "ROOM01")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, "ROOM02", KindRoom))
	require.NoError(t, bus.Publish(ctx, "ROOM01", KindRoom))

	assert.Equal(t, "ROOM01", receive(t, sub).RoomID)
}

func TestCloseEndsEvents(t *testing.T) {
	_, client := newMiniRedisClient(t)
	bus := NewBus(client, zap.NewNop())

	sub, err := bus.Subscribe(context.Background(), "ROOM01")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "Close 可以重複呼叫")

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel was not closed")
	}
}

func TestNilClient(t *testing.T) {
	bus := NewBus(nil, zap.NewNop())
	assert.Error(t, bus.Publish(context.Background(), "R", KindRoom))
	_, err := bus.Subscribe(context.Background(), "R")
	assert.Error(t, err)
}
