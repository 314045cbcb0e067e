// Package feed announces room changes over Redis pub/sub. Events only say
// what changed; subscribers reload the full snapshot themselves.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Kind string

const (
	KindRoom   Kind = "room"
	KindUsers  Kind = "users"
	KindSwipes Kind = "swipes"
	// KindMatches 不會被發布，由訂閱端在 results 階段自行推送
	KindMatches Kind = "matches"
)

const channelPrefix = "dineosaur:room:"

type Event struct {
	RoomID string `json:"roomId"`
	Kind   Kind   `json:"kind"`
}

type Bus struct {
	client *goredis.Client
	logger *zap.Logger
}

func NewBus(client *goredis.Client, logger *zap.Logger) *Bus {
	return &Bus{client: client, logger: logger}
}

func channel(roomID string) string {
	return channelPrefix + roomID
}

// Publish 通知訂閱者 roomID 的 kind 有變動
func (b *Bus) Publish(ctx context.Context, roomID string, kind Kind) error {
	if b.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	payload, err := json.Marshal(Event{RoomID: roomID, Kind: kind})
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}
	if err := b.client.Publish(ctx, channel(roomID), payload).Err(); err != nil {
		return fmt.Errorf("publish feed event: %w", err)
	}
	return nil
}

// Subscription 單一房間的事件訂閱，用完必須 Close
type Subscription struct {
	pubsub *goredis.PubSub
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) Events() <-chan Event { return s.events }

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

// Subscribe 等到 Redis 確認訂閱後才回傳，之後發布的事件都不會漏掉
func (b *Bus) Subscribe(ctx context.Context, roomID string) (*Subscription, error) {
	if b.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	pubsub := b.client.Subscribe(ctx, channel(roomID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe room %s: %w", roomID, err)
	}

	sub := &Subscription{pubsub: pubsub, events: make(chan Event, 16), done: make(chan struct{})}
	go func() {
		defer close(sub.events)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn("drop malformed feed event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case sub.events <- ev:
			case <-sub.done:
				return
			}
		}
	}()
	return sub, nil
}
