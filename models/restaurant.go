package models

// Restaurant 代表一間可以滑卡的餐廳
type Restaurant struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Image      string   `json:"image,omitempty" yaml:"image"`
	Rating     float64  `json:"rating" yaml:"rating"`
	Cuisine    string   `json:"cuisine" yaml:"cuisine"`
	Address    string   `json:"address" yaml:"address"`
	Website    string   `json:"website,omitempty" yaml:"website"`
	PriceRange string   `json:"priceRange" yaml:"priceRange"`
	Tags       []string `json:"tags" yaml:"tags"` // 用來比對偏好的標籤
	Lat        float64  `json:"lat,omitempty" yaml:"lat"`
	Lng        float64  `json:"lng,omitempty" yaml:"lng"`
}

// RestaurantMatch 由滑卡結果計算出來，不會存進資料庫
type RestaurantMatch struct {
	Restaurant Restaurant `json:"restaurant"`
	Score      int        `json:"score"`
	Likes      int        `json:"likes"`
	SuperLikes int        `json:"superLikes"`
}

// PreferenceCategory 偏好分類
type PreferenceCategory string

const (
	CategoryCuisine PreferenceCategory = "cuisine"
	CategoryTaste   PreferenceCategory = "taste"
	CategoryDiet    PreferenceCategory = "diet"
)

// FoodPreference 可選擇的食物偏好標籤
type FoodPreference struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category PreferenceCategory `json:"category"`
	Icon     string             `json:"icon"`
}
