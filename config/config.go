package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv" // 引入這個庫來讀取 .env 檔案

	"github.com/bhakti-thakur/Dine-o-saur/catalog"
	"github.com/bhakti-thakur/Dine-o-saur/matching"
	"github.com/bhakti-thakur/Dine-o-saur/models"
	"github.com/bhakti-thakur/Dine-o-saur/places"
	"github.com/bhakti-thakur/Dine-o-saur/stage"
)

// Config 結構體用於儲存應用程式的配置
type Config struct {
	Port           string
	MongoDBURI     string
	DBName         string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	JWTSecret      string
	LogLevel       string
	AllowedOrigins []string
	PublicBaseURL  string

	RoomTTL        time.Duration
	MinPreferences int
	MaxPreferences int
	MaxGroupSize   int
	LateJoinPolicy stage.LateJoinPolicy
	SwipeCounting  matching.CountingPolicy

	Places                PlacesConfig
	RestaurantCatalogFile string // 選填，YAML 格式的餐廳清單
}

// PlacesConfig 外部餐廳查詢 (Google Places) 的設定，APIKey 為空時不啟用
type PlacesConfig struct {
	APIKey       string
	BaseURL      string
	RadiusMeters int
	Timeout      time.Duration
	CacheTTL     time.Duration
	StaleTTL     time.Duration
}

// LoadConfig 載入配置，優先從環境變數讀取，其次從 .env 檔案讀取
func LoadConfig() (*Config, error) {
	// 嘗試載入 .env 檔案，如果不存在也不會報錯
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		MongoDBURI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:                getEnv("DB_NAME", "dineosaur"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		JWTSecret:             getEnv("JWT_SECRET", "change-me"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:        splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		PublicBaseURL:         strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		RestaurantCatalogFile: getEnv("RESTAURANT_CATALOG_FILE", ""),
		Places: PlacesConfig{
			APIKey:  getEnv("PLACES_API_KEY", ""),
			BaseURL: getEnv("PLACES_BASE_URL", places.DefaultNearbySearchURL),
		},
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RoomTTL, err = getEnvDuration("ROOM_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MinPreferences, err = getEnvInt("MIN_PREFERENCES", catalog.MinPreferences); err != nil {
		return nil, err
	}
	if cfg.MaxPreferences, err = getEnvInt("MAX_PREFERENCES", catalog.MaxPreferences); err != nil {
		return nil, err
	}
	if cfg.MaxGroupSize, err = getEnvInt("MAX_GROUP_SIZE", models.DefaultMaxGroupSize); err != nil {
		return nil, err
	}
	if cfg.LateJoinPolicy, err = stage.ParseLateJoinPolicy(getEnv("LATE_JOIN_POLICY", "include")); err != nil {
		return nil, err
	}
	if cfg.SwipeCounting, err = matching.ParseCountingPolicy(getEnv("SWIPE_COUNTING", "latest")); err != nil {
		return nil, err
	}
	if cfg.Places.RadiusMeters, err = getEnvInt("PLACES_RADIUS_METERS", 5000); err != nil {
		return nil, err
	}
	if cfg.Places.Timeout, err = getEnvDuration("PLACES_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Places.CacheTTL, err = getEnvDuration("PLACES_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Places.StaleTTL, err = getEnvDuration("PLACES_STALE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinPreferences < 1 || c.MaxPreferences < c.MinPreferences {
		return fmt.Errorf("preference bounds must satisfy 1 <= MIN_PREFERENCES (%d) <= MAX_PREFERENCES (%d)", c.MinPreferences, c.MaxPreferences)
	}
	if c.MaxGroupSize < models.MinGroupSize {
		return fmt.Errorf("MAX_GROUP_SIZE must be at least %d", models.MinGroupSize)
	}
	if c.RoomTTL <= 0 {
		return fmt.Errorf("ROOM_TTL must be positive")
	}
	return nil
}

// StageRules 房間推進條件
func (c *Config) StageRules() stage.Rules {
	return stage.Rules{
		MinPreferences: c.MinPreferences,
		MaxPreferences: c.MaxPreferences,
		MaxGroupSize:   c.MaxGroupSize,
		LateJoiners:    c.LateJoinPolicy,
	}
}

// getEnv 輔助函數，用於從環境變數獲取值，如果不存在則使用預設值
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
