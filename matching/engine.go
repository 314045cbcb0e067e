package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

const (
	likePoints      = 1
	superlikePoints = 3
)

// CountingPolicy 決定同一人對同一間餐廳的重複滑卡如何計分
type CountingPolicy string

const (
	// CountLatest 每個 (user, restaurant) 只計最後一次動作 (預設)
	CountLatest CountingPolicy = "latest"
	// CountAll 每一筆動作都計分
	CountAll CountingPolicy = "all"
)

func ParseCountingPolicy(s string) (CountingPolicy, error) {
	switch p := CountingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CountLatest, nil
	case CountLatest, CountAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown swipe counting policy %q", s)
	}
}

type Engine struct {
	Counting CountingPolicy
}

// Score 以預設政策計算排名
func Score(restaurants []models.Restaurant, swipes []models.SwipeAction) []models.RestaurantMatch {
	return Engine{Counting: CountLatest}.Score(restaurants, swipes)
}

// Score 計算每間餐廳的分數: like +1, superlike +3, skip 0。
// 分數 <= 0 的餐廳不會出現在結果中，同分時維持 restaurants 原本的順序。
// 不在清單中的餐廳 ID 會被忽略。
func (e Engine) Score(restaurants []models.Restaurant, swipes []models.SwipeAction) []models.RestaurantMatch {
	matches := make([]models.RestaurantMatch, len(restaurants))
	index := make(map[string]int, len(restaurants))
	for i, r := range restaurants {
		matches[i] = models.RestaurantMatch{Restaurant: r}
		if _, dup := index[r.ID]; !dup {
			index[r.ID] = i
		}
	}

	for _, s := range e.effective(swipes) {
		i, ok := index[s.RestaurantID]
		if !ok {
			continue
		}
		switch s.Action {
		case models.SwipeLike:
			matches[i].Likes++
			matches[i].Score += likePoints
		case models.SwipeSuperlike:
			matches[i].SuperLikes++
			matches[i].Score += superlikePoints
		}
	}

	ranked := make([]models.RestaurantMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score > 0 {
			ranked = append(ranked, m)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// effective 在 CountLatest 下只留下每個 (user, restaurant) 最新的一筆。
// 時間相同時以較後面的那筆為準。
func (e Engine) effective(swipes []models.SwipeAction) []models.SwipeAction {
	if e.Counting == CountAll {
		return swipes
	}

	type pair struct{ user, restaurant string }
	latest := make(map[pair]int, len(swipes))
	for i, s := range swipes {
		key := pair{s.UserID, s.RestaurantID}
		if j, ok := latest[key]; ok && swipes[j].Timestamp.After(s.Timestamp) {
			continue
		}
		latest[key] = i
	}

	out := make([]models.SwipeAction, 0, len(latest))
	for i, s := range swipes {
		if latest[pair{s.UserID, s.RestaurantID}] == i {
			out = append(out, s)
		}
	}
	return out
}

// TopN 依房間類型截斷結果 (couple 3, group 5)
func TopN(ranked []models.RestaurantMatch, roomType models.RoomType) []models.RestaurantMatch {
	limit := roomType.ResultLimit()
	if len(ranked) <= limit {
		return ranked
	}
	return ranked[:limit]
}
