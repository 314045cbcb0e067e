package places

import (
	"context"

	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/catalog"
	"github.com/bhakti-thakur/Dine-o-saur/models"
)

// Resolver 依序嘗試 fresh 快取、外部查詢、stale 快取、內建清單
type Resolver struct {
	lookup  Lookup // nil 表示沒有設定 API key
	cache   *Cache
	builtin []models.Restaurant
	radius  int
	logger  *zap.Logger
}

func NewResolver(lookup Lookup, cache *Cache, builtin []models.Restaurant, radiusMeters int, logger *zap.Logger) *Resolver {
	return &Resolver{
		lookup:  lookup,
		cache:   cache,
		builtin: builtin,
		radius:  radiusMeters,
		logger:  logger,
	}
}

// Restaurants 回傳房間要滑的餐廳清單，任何一層失敗都只記 log 並往下一層
func (r *Resolver) Restaurants(ctx context.Context, roomID string, q Query) []models.Restaurant {
	log := r.logger.With(zap.String("room_id", roomID))

	if r.cache != nil {
		cached, ok, err := r.cache.Fresh(ctx, roomID)
		if err != nil {
			log.Warn("read fresh places cache", zap.Error(err))
		} else if ok && len(cached) > 0 {
			return cached
		}
	}

	if r.lookup != nil && q.HasPoint() {
		if q.RadiusMeters <= 0 {
			q.RadiusMeters = r.radius
		}
		found, err := r.lookup.Nearby(ctx, q)
		switch {
		case err != nil:
			log.Warn("places lookup failed, falling back", zap.Error(err))
		case len(found) == 0:
			log.Info("places lookup returned nothing, falling back")
		default:
			if r.cache != nil {
				if err := r.cache.Store(ctx, roomID, found); err != nil {
					log.Warn("store places cache", zap.Error(err))
				}
			}
			return found
		}
	}

	if r.cache != nil {
		stale, ok, err := r.cache.Stale(ctx, roomID)
		if err != nil {
			log.Warn("read stale places cache", zap.Error(err))
		} else if ok && len(stale) > 0 {
			return stale
		}
	}

	filtered := catalog.Filter(r.builtin, q.Tags)
	if len(filtered) == 0 {
		// 內建清單沒有任何一間符合偏好時，寧可全部列出也不要空白
		return r.builtin
	}
	return filtered
}

// Catalog 計分用的完整清單：快取中的外部餐廳加上內建清單
func (r *Resolver) Catalog(ctx context.Context, roomID string) []models.Restaurant {
	if r.cache == nil {
		return r.builtin
	}

	cached, ok, err := r.cache.Fresh(ctx, roomID)
	if err == nil && !ok {
		cached, ok, err = r.cache.Stale(ctx, roomID)
	}
	if err != nil {
		r.logger.Warn("read places cache for scoring", zap.String("room_id", roomID), zap.Error(err))
		return r.builtin
	}
	if !ok {
		return r.builtin
	}
	return catalog.Merge(cached, r.builtin)
}
