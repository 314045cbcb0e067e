package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

const cacheKeyPrefix = "dineosaur:places:"

// Cache 每個房間兩份副本：fresh 短時間內直接使用，stale 在外部查詢失敗時備援
type Cache struct {
	client   *goredis.Client
	freshTTL time.Duration
	staleTTL time.Duration
}

func NewCache(client *goredis.Client, freshTTL, staleTTL time.Duration) *Cache {
	if staleTTL < freshTTL {
		staleTTL = freshTTL
	}
	return &Cache{client: client, freshTTL: freshTTL, staleTTL: staleTTL}
}

func freshKey(roomID string) string { return cacheKeyPrefix + roomID + ":fresh" }
func staleKey(roomID string) string { return cacheKeyPrefix + roomID + ":stale" }

// Store 同時寫入 fresh 與 stale
func (c *Cache) Store(ctx context.Context, roomID string, restaurants []models.Restaurant) error {
	payload, err := json.Marshal(restaurants)
	if err != nil {
		return fmt.Errorf("marshal restaurants: %w", err)
	}
	_, err = c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, freshKey(roomID), payload, c.freshTTL)
		pipe.Set(ctx, staleKey(roomID), payload, c.staleTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache restaurants for room %s: %w", roomID, err)
	}
	return nil
}

// Fresh 回傳尚未過期的快取，沒有時 ok 為 false
func (c *Cache) Fresh(ctx context.Context, roomID string) ([]models.Restaurant, bool, error) {
	return c.get(ctx, freshKey(roomID))
}

// Stale 回傳較舊的備援快取
func (c *Cache) Stale(ctx context.Context, roomID string) ([]models.Restaurant, bool, error) {
	return c.get(ctx, staleKey(roomID))
}

func (c *Cache) get(ctx context.Context, key string) ([]models.Restaurant, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}

	var restaurants []models.Restaurant
	if err := json.Unmarshal(raw, &restaurants); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return restaurants, true, nil
}
