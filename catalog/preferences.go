package catalog

import "github.com/bhakti-thakur/Dine-o-saur/models"

const (
	MinPreferences = 3
	MaxPreferences = 8
)

var foodPreferences = []models.FoodPreference{
	// 料理
	{ID: "chinese", Name: "Chinese", Category: models.CategoryCuisine, Icon: "🥡"},
	{ID: "indian", Name: "Indian", Category: models.CategoryCuisine, Icon: "🍛"},
	{ID: "italian", Name: "Italian", Category: models.CategoryCuisine, Icon: "🍝"},
	{ID: "mexican", Name: "Mexican", Category: models.CategoryCuisine, Icon: "🌮"},
	{ID: "japanese", Name: "Japanese", Category: models.CategoryCuisine, Icon: "🍱"},
	{ID: "thai", Name: "Thai", Category: models.CategoryCuisine, Icon: "🍜"},
	{ID: "mediterranean", Name: "Mediterranean", Category: models.CategoryCuisine, Icon: "🥙"},
	{ID: "american", Name: "American", Category: models.CategoryCuisine, Icon: "🍔"},
	{ID: "french", Name: "French", Category: models.CategoryCuisine, Icon: "🥐"},
	{ID: "korean", Name: "Korean", Category: models.CategoryCuisine, Icon: "🍖"},

	// 口味
	{ID: "spicy", Name: "Spicy", Category: models.CategoryTaste, Icon: "🌶️"},
	{ID: "sweet", Name: "Sweet", Category: models.CategoryTaste, Icon: "🍰"},
	{ID: "savory", Name: "Savory", Category: models.CategoryTaste, Icon: "🧀"},
	{ID: "sour", Name: "Sour", Category: models.CategoryTaste, Icon: "🍋"},
	{ID: "umami", Name: "Umami", Category: models.CategoryTaste, Icon: "🍄"},

	// 飲食限制
	{ID: "vegetarian", Name: "Vegetarian", Category: models.CategoryDiet, Icon: "🥬"},
	{ID: "vegan", Name: "Vegan", Category: models.CategoryDiet, Icon: "🌱"},
	{ID: "gluten-free", Name: "Gluten-Free", Category: models.CategoryDiet, Icon: "🌾"},
	{ID: "halal", Name: "Halal", Category: models.CategoryDiet, Icon: "🕌"},
	{ID: "kosher", Name: "Kosher", Category: models.CategoryDiet, Icon: "✡️"},
}

var preferenceIndex = func() map[string]struct{} {
	idx := make(map[string]struct{}, len(foodPreferences))
	for _, p := range foodPreferences {
		idx[p.ID] = struct{}{}
	}
	return idx
}()

// Preferences 回傳所有可選的偏好 (副本)
func Preferences() []models.FoodPreference {
	out := make([]models.FoodPreference, len(foodPreferences))
	copy(out, foodPreferences)
	return out
}

// IsKnownPreference 檢查標籤是否存在於偏好清單
func IsKnownPreference(id string) bool {
	_, ok := preferenceIndex[id]
	return ok
}
