// Package places finds restaurants near a point and keeps a per-room copy
// in Redis so a room keeps swiping on the same list.
package places

import (
	"context"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

//go:generate mockgen -source=lookup.go -destination=mock_lookup_test.go -package=places

// Query 查詢附近餐廳的條件，Tags 會當成關鍵字
type Query struct {
	Lat          float64
	Lng          float64
	Tags         []string
	RadiusMeters int
}

// HasPoint 是否有帶座標
func (q Query) HasPoint() bool {
	return q.Lat != 0 || q.Lng != 0
}

// Lookup 外部餐廳來源
type Lookup interface {
	Nearby(ctx context.Context, q Query) ([]models.Restaurant, error)
}
