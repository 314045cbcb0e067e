package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

const DefaultNearbySearchURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// 不拿來當料理類型顯示的 Google place types
var genericTypes = map[string]bool{
	"restaurant":        true,
	"food":              true,
	"point_of_interest": true,
	"establishment":     true,
	"store":             true,
}

// GoogleClient 透過 Google Places Nearby Search 查詢餐廳
type GoogleClient struct {
	apiKey     string
	baseURL    string
	radius     int
	httpClient *http.Client
}

func NewGoogleClient(apiKey, baseURL string, radiusMeters int, timeout time.Duration) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultNearbySearchURL
	}
	return &GoogleClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		radius:     radiusMeters,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type nearbyResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []nearbyPlace `json:"results"`
}

type nearbyPlace struct {
	PlaceID    string   `json:"place_id"`
	Name       string   `json:"name"`
	Vicinity   string   `json:"vicinity"`
	Rating     float64  `json:"rating"`
	PriceLevel int      `json:"price_level"`
	Types      []string `json:"types"`
	Geometry   struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// Nearby 查詢 q 座標附近的餐廳，ZERO_RESULTS 回傳空清單
func (c *GoogleClient) Nearby(ctx context.Context, q Query) ([]models.Restaurant, error) {
	radius := q.RadiusMeters
	if radius <= 0 {
		radius = c.radius
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", q.Lat, q.Lng))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("type", "restaurant")
	if len(q.Tags) > 0 {
		params.Set("keyword", strings.Join(q.Tags, " "))
	}
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places request: unexpected status %d", resp.StatusCode)
	}

	var body nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []models.Restaurant{}, nil
	default:
		return nil, fmt.Errorf("places status %s: %s", body.Status, body.ErrorMessage)
	}

	restaurants := make([]models.Restaurant, 0, len(body.Results))
	for _, p := range body.Results {
		if p.PlaceID == "" {
			continue
		}
		restaurants = append(restaurants, toRestaurant(p, q.Tags))
	}
	return restaurants, nil
}

func toRestaurant(p nearbyPlace, tags []string) models.Restaurant {
	cuisine := "Restaurant"
	for _, t := range p.Types {
		if !genericTypes[t] {
			cuisine = strings.ReplaceAll(t, "_", " ")
			break
		}
	}

	level := p.PriceLevel
	if level < 1 {
		level = 1
	}

	return models.Restaurant{
		ID:         p.PlaceID,
		Name:       p.Name,
		Rating:     p.Rating,
		Cuisine:    cuisine,
		Address:    p.Vicinity,
		PriceRange: strings.Repeat("$", level),
		// 關鍵字查到的結果沿用查詢標籤，讓偏好篩選可以比對
		Tags: append([]string(nil), tags...),
		Lat:  p.Geometry.Location.Lat,
		Lng:  p.Geometry.Location.Lng,
	}
}
