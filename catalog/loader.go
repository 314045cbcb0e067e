package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/bhakti-thakur/Dine-o-saur/models"
	"gopkg.in/yaml.v3"
)

type restaurantFile struct {
	Restaurants []models.Restaurant `yaml:"restaurants"`
}

// LoadRestaurants 從 YAML 檔載入餐廳清單，取代內建清單
func LoadRestaurants(path string) ([]models.Restaurant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read restaurant catalog: %w", err)
	}
	return ParseRestaurants(raw)
}

// ParseRestaurants 解析 YAML 內容並檢查 ID 是否重複
func ParseRestaurants(raw []byte) ([]models.Restaurant, error) {
	var file restaurantFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse restaurant catalog: %w", err)
	}
	if len(file.Restaurants) == 0 {
		return nil, fmt.Errorf("restaurant catalog is empty")
	}

	seen := make(map[string]struct{}, len(file.Restaurants))
	for i := range file.Restaurants {
		r := &file.Restaurants[i]
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" || strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("restaurant #%d: id and name are required", i+1)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("restaurant %q: duplicate id", r.ID)
		}
		seen[r.ID] = struct{}{}
		for j, tag := range r.Tags {
			r.Tags[j] = strings.ToLower(strings.TrimSpace(tag))
		}
	}
	return file.Restaurants, nil
}
