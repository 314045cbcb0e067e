package catalog

import "github.com/bhakti-thakur/Dine-o-saur/models"

// Filter 保留至少有一個標籤出現在 preferences 中的餐廳。
// preferences 為空時直接回傳原清單 (還沒有人選偏好的情況)。
func Filter(restaurants []models.Restaurant, preferences []string) []models.Restaurant {
	if len(preferences) == 0 {
		return restaurants
	}

	wanted := make(map[string]struct{}, len(preferences))
	for _, p := range preferences {
		wanted[p] = struct{}{}
	}

	filtered := make([]models.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		for _, tag := range r.Tags {
			if _, ok := wanted[tag]; ok {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered
}

// UnionPreferences 合併所有參與者的偏好，依第一次出現的順序去重
func UnionPreferences(users []models.User) []string {
	seen := make(map[string]struct{})
	union := make([]string, 0)
	for _, u := range users {
		for _, p := range u.Preferences {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			union = append(union, p)
		}
	}
	return union
}

// Merge 合併多份餐廳清單，相同 ID 以先出現者為準
func Merge(lists ...[]models.Restaurant) []models.Restaurant {
	seen := make(map[string]struct{})
	merged := make([]models.Restaurant, 0)
	for _, list := range lists {
		for _, r := range list {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged
}
