package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/cors" // 引入 CORS 庫
	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/catalog"
	"github.com/bhakti-thakur/Dine-o-saur/config"
	"github.com/bhakti-thakur/Dine-o-saur/database"
	"github.com/bhakti-thakur/Dine-o-saur/feed"
	"github.com/bhakti-thakur/Dine-o-saur/handlers"
	"github.com/bhakti-thakur/Dine-o-saur/logger"
	"github.com/bhakti-thakur/Dine-o-saur/middleware"
	"github.com/bhakti-thakur/Dine-o-saur/models"
	"github.com/bhakti-thakur/Dine-o-saur/places"
	"github.com/bhakti-thakur/Dine-o-saur/rooms"
	"github.com/bhakti-thakur/Dine-o-saur/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoClient, err := database.ConnectMongoDB(connectCtx, cfg.MongoDBURI)
	if err != nil {
		return err
	}
	defer database.DisconnectMongoDB(mongoClient, logger)
	logger.Info("connected to mongodb", zap.String("db", cfg.DBName))

	store := database.NewStore(mongoClient.Database(cfg.DBName), logger)
	if err := store.EnsureIndexes(connectCtx); err != nil {
		return err
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(connectCtx).Err(); err != nil {
		return fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	restaurants, err := builtinRestaurants(cfg)
	if err != nil {
		return err
	}

	// API key 沒設定時只使用快取與內建清單
	var lookup places.Lookup
	if cfg.Places.APIKey != "" {
		lookup = places.NewGoogleClient(cfg.Places.APIKey, cfg.Places.BaseURL, cfg.Places.RadiusMeters, cfg.Places.Timeout)
	} else {
		logger.Info("PLACES_API_KEY not set, using the built-in restaurant list")
	}
	resolver := places.NewResolver(
		lookup,
		places.NewCache(rdb, cfg.Places.CacheTTL, cfg.Places.StaleTTL),
		restaurants,
		cfg.Places.RadiusMeters,
		logger,
	)

	service := rooms.NewService(store, feed.NewBus(rdb, logger), resolver, rooms.Config{
		Rules:         cfg.StageRules(),
		Counting:      cfg.SwipeCounting,
		RoomTTL:       cfg.RoomTTL,
		JWTSecret:     cfg.JWTSecret,
		PublicBaseURL: cfg.PublicBaseURL,
	}, logger)

	hub := websocket.NewHub(service, cfg.JWTSecret, logger)
	go hub.Run(ctx)

	router := mux.NewRouter()
	handlers.RegisterRoutes(router, handlers.New(service, logger), middleware.SessionMiddleware(cfg.JWTSecret, logger))
	router.HandleFunc("/ws", hub.ServeWS).Methods(http.MethodGet)

	// 設置 CORS 中介軟體
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      c.Handler(router),
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// 當按下 Ctrl+C，程式會收到 SIGINT
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("listen on %s: %w", serverAddr, err)
	}

	// 最多等30秒關閉，避免資料損壞，請求中斷
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited gracefully")
	return nil
}

// builtinRestaurants 有設定 RESTAURANT_CATALOG_FILE 時改用檔案中的清單
func builtinRestaurants(cfg *config.Config) ([]models.Restaurant, error) {
	if cfg.RestaurantCatalogFile == "" {
		return catalog.Restaurants(), nil
	}
	return catalog.LoadRestaurants(cfg.RestaurantCatalogFile)
}
