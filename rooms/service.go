// Package rooms coordinates a room's lifecycle: joining, preferences,
// swiping and results. Every mutation is announced on the change feed and
// followed by an advancement pass.
package rooms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/catalog"
	"github.com/bhakti-thakur/Dine-o-saur/feed"
	"github.com/bhakti-thakur/Dine-o-saur/matching"
	"github.com/bhakti-thakur/Dine-o-saur/models"
	"github.com/bhakti-thakur/Dine-o-saur/places"
	"github.com/bhakti-thakur/Dine-o-saur/stage"
	"github.com/bhakti-thakur/Dine-o-saur/utils"
)

// 產生的房號撞號時最多重試幾次
const maxCodeAttempts = 5

const maxAdvanceSteps = 3

// Store 房間、參與者與滑卡紀錄的持久層
type Store interface {
	CreateRoom(ctx context.Context, room models.Room) (models.Room, bool, error)
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	UpdateStage(ctx context.Context, roomID string, target models.Stage, at time.Time) (bool, error)
	UpsertUser(ctx context.Context, roomID string, user models.User, maxUsers int) error
	GetUser(ctx context.Context, roomID, userID string) (*models.User, error)
	ListUsers(ctx context.Context, roomID string) ([]models.User, error)
	SetUserPreferences(ctx context.Context, roomID, userID string, prefs []string) error
	MarkUserDone(ctx context.Context, roomID, userID string) error
	RemoveUser(ctx context.Context, roomID, userID string) error
	RecordSwipe(ctx context.Context, swipe models.SwipeAction) (models.SwipeAction, error)
	ListSwipes(ctx context.Context, roomID string) ([]models.SwipeAction, error)
}

// Feed 變動通知
type Feed interface {
	Publish(ctx context.Context, roomID string, kind feed.Kind) error
	Subscribe(ctx context.Context, roomID string) (*feed.Subscription, error)
}

// RestaurantSource 提供滑卡清單與計分用的完整清單
type RestaurantSource interface {
	Restaurants(ctx context.Context, roomID string, q places.Query) []models.Restaurant
	Catalog(ctx context.Context, roomID string) []models.Restaurant
}

type Config struct {
	Rules         stage.Rules
	Counting      matching.CountingPolicy
	RoomTTL       time.Duration
	JWTSecret     string
	PublicBaseURL string
}

type Service struct {
	store       Store
	feed        Feed
	restaurants RestaurantSource
	cfg         Config
	engine      matching.Engine
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(store Store, f Feed, restaurants RestaurantSource, cfg Config, logger *zap.Logger) *Service {
	if cfg.RoomTTL <= 0 {
		cfg.RoomTTL = 30 * time.Minute
	}
	return &Service{
		store:       store,
		feed:        f,
		restaurants: restaurants,
		cfg:         cfg,
		engine:      matching.Engine{Counting: cfg.Counting},
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateRoom 建立房間。code 為空時自動產生；指定的房號已存在時回傳既有房間。
func (s *Service) CreateRoom(ctx context.Context, roomType models.RoomType, code string, expectedUsers int) (models.Room, error) {
	if !roomType.Valid() {
		return models.Room{}, models.ErrInvalidRoomType
	}

	maxUsers := roomType.MaxUsers(s.cfg.Rules.MaxGroupSize)
	if roomType == models.RoomTypeCouple {
		expectedUsers = 0
	} else if expectedUsers != 0 && (expectedUsers < models.MinGroupSize || expectedUsers > maxUsers) {
		return models.Room{}, fmt.Errorf("%w: expected users must be between %d and %d", models.ErrInvalidRoomType, models.MinGroupSize, maxUsers)
	}

	now := s.now()
	room := models.Room{
		Type:           roomType,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.RoomTTL),
		Stage:          models.StageWaiting,
		IsActive:       true,
		ExpectedUsers:  expectedUsers,
		StageUpdatedAt: now,
	}

	if code != "" {
		room.ID = utils.NormalizeRoomCode(code)
		if !utils.IsValidRoomCode(room.ID) {
			return models.Room{}, models.ErrInvalidRoomCode
		}
		stored, created, err := s.store.CreateRoom(ctx, room)
		if err != nil {
			return models.Room{}, err
		}
		if created {
			s.logger.Info("room created", zap.String("room_id", stored.ID), zap.String("type", string(stored.Type)))
		}
		return stored, nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		id, err := utils.GenerateRoomCode()
		if err != nil {
			return models.Room{}, fmt.Errorf("generate room code: %w", err)
		}
		room.ID = id
		stored, created, err := s.store.CreateRoom(ctx, room)
		if err != nil {
			return models.Room{}, err
		}
		if created {
			s.logger.Info("room created", zap.String("room_id", stored.ID), zap.String("type", string(stored.Type)))
			return stored, nil
		}
	}
	return models.Room{}, fmt.Errorf("generate room code: %d collisions in a row", maxCodeAttempts)
}

// GetRoom 找不到時回傳 ErrRoomNotFound
func (s *Service) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	room, err := s.store.GetRoom(ctx, utils.NormalizeRoomCode(roomID))
	if err != nil {
		return models.Room{}, err
	}
	if room == nil {
		return models.Room{}, models.ErrRoomNotFound
	}
	return room.WithExpiry(s.now()), nil
}

// loadRoom 給訂閱與快照用，房間不存在時回傳 nil 而不是錯誤
func (s *Service) loadRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil || room == nil {
		return room, err
	}
	decorated := room.WithExpiry(s.now())
	return &decorated, nil
}

func (s *Service) ListUsers(ctx context.Context, roomID string) ([]models.User, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx, room.ID)
}

// GetUser 確認 session 仍然有效：房間與參與者都必須存在
func (s *Service) GetUser(ctx context.Context, roomID, userID string) (models.User, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return models.User{}, err
	}
	return s.member(ctx, room.ID, userID)
}

func (s *Service) member(ctx context.Context, roomID, userID string) (models.User, error) {
	user, err := s.store.GetUser(ctx, roomID, userID)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, models.ErrUserNotFound
	}
	return *user, nil
}

// Join 加入或重新加入房間，回傳參與者與 session token。
// 重新加入時保留原本的偏好、完成狀態與加入時間。
func (s *Service) Join(ctx context.Context, roomID, userID, name string) (models.User, string, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return models.User{}, "", err
	}

	var user models.User
	rejoin := false
	if userID != "" {
		existing, err := s.store.GetUser(ctx, room.ID, userID)
		if err != nil {
			return models.User{}, "", err
		}
		if existing != nil {
			user, rejoin = *existing, true
		}
	}

	if rejoin {
		if name = strings.TrimSpace(name); name != "" {
			user.Name = name
		}
	} else {
		if s.cfg.Rules.LateJoiners == stage.LateJoinReject && room.Stage != models.StageWaiting {
			return models.User{}, "", models.ErrRoomStarted
		}
		if userID == "" {
			userID = utils.GenerateUserID()
		}
		if name = strings.TrimSpace(name); name == "" {
			name = utils.GenerateUserName()
		}
		user = models.User{
			ID:          userID,
			Name:        name,
			Preferences: []string{},
			JoinedAt:    s.now(),
		}
	}

	if err := s.store.UpsertUser(ctx, room.ID, user, room.Type.MaxUsers(s.cfg.Rules.MaxGroupSize)); err != nil {
		return models.User{}, "", err
	}

	token, err := utils.GenerateSessionToken(models.Session{UserID: user.ID, RoomID: room.ID}, s.cfg.JWTSecret, s.tokenExpiry(room))
	if err != nil {
		return models.User{}, "", fmt.Errorf("issue session: %w", err)
	}

	s.logger.Info("user joined",
		zap.String("room_id", room.ID),
		zap.String("user_id", user.ID),
		zap.Bool("rejoin", rejoin),
	)
	s.changed(ctx, room.ID, feed.KindUsers)
	return user, token, nil
}

// tokenExpiry session 跟房間同時過期；房間已過期 (不會被清除) 時再給一個 TTL
func (s *Service) tokenExpiry(room models.Room) time.Time {
	now := s.now()
	if room.ExpiresAt.After(now) {
		return room.ExpiresAt
	}
	return now.Add(s.cfg.RoomTTL)
}

// ShareURL 房間的分享連結
func (s *Service) ShareURL(roomID string) string {
	return utils.ShareURL(s.cfg.PublicBaseURL, roomID)
}

// SetPreferences 覆寫參與者的偏好，重複的標籤只留第一個
func (s *Service) SetPreferences(ctx context.Context, roomID, userID string, preferences []string) (models.User, error) {
	prefs, err := s.normalizePreferences(preferences)
	if err != nil {
		return models.User{}, err
	}

	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return models.User{}, err
	}
	if room.Stage != models.StageWaiting && room.Stage != models.StagePreferences {
		return models.User{}, models.ErrWrongStage
	}

	user, err := s.member(ctx, room.ID, userID)
	if err != nil {
		return models.User{}, err
	}
	// 讀取之後才離開的參與者不能被寫回去
	if err := s.store.SetUserPreferences(ctx, room.ID, user.ID, prefs); err != nil {
		return models.User{}, err
	}
	user.Preferences = prefs

	s.changed(ctx, room.ID, feed.KindUsers)
	return user, nil
}

func (s *Service) normalizePreferences(preferences []string) ([]string, error) {
	seen := make(map[string]struct{}, len(preferences))
	prefs := make([]string, 0, len(preferences))
	for _, p := range preferences {
		p = strings.TrimSpace(p)
		if !catalog.IsKnownPreference(p) {
			return nil, fmt.Errorf("%w: unknown preference %q", models.ErrInvalidPreferences, p)
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		prefs = append(prefs, p)
	}

	lo, hi := s.cfg.Rules.MinPreferences, s.cfg.Rules.MaxPreferences
	if lo <= 0 {
		lo = catalog.MinPreferences
	}
	if hi <= 0 {
		hi = catalog.MaxPreferences
	}
	if len(prefs) < lo || len(prefs) > hi {
		return nil, fmt.Errorf("%w: choose between %d and %d preferences", models.ErrInvalidPreferences, lo, hi)
	}
	return prefs, nil
}

// RecordSwipe 只在 swiping 階段接受滑卡
func (s *Service) RecordSwipe(ctx context.Context, roomID, userID, restaurantID string, action models.SwipeKind) (models.SwipeAction, error) {
	if !action.Valid() {
		return models.SwipeAction{}, fmt.Errorf("%w: unknown action %q", models.ErrInvalidSwipe, action)
	}
	if strings.TrimSpace(restaurantID) == "" {
		return models.SwipeAction{}, fmt.Errorf("%w: restaurant id is required", models.ErrInvalidSwipe)
	}

	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return models.SwipeAction{}, err
	}
	if room.Stage != models.StageSwiping {
		return models.SwipeAction{}, models.ErrWrongStage
	}
	if _, err := s.member(ctx, room.ID, userID); err != nil {
		return models.SwipeAction{}, err
	}

	saved, err := s.store.RecordSwipe(ctx, models.SwipeAction{
		RoomID:       room.ID,
		UserID:       userID,
		RestaurantID: restaurantID,
		Action:       action,
		Timestamp:    s.now(),
	})
	if err != nil {
		return models.SwipeAction{}, err
	}

	s.changed(ctx, room.ID, feed.KindSwipes)
	return saved, nil
}

// MarkDone 參與者表示已經滑完
func (s *Service) MarkDone(ctx context.Context, roomID, userID string) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Stage != models.StageSwiping {
		return models.ErrWrongStage
	}
	if err := s.store.MarkUserDone(ctx, room.ID, userID); err != nil {
		return err
	}

	s.changed(ctx, room.ID, feed.KindUsers)
	return nil
}

// Leave 離開房間並釋放名額，剩下的人可能因此滿足推進條件
func (s *Service) Leave(ctx context.Context, roomID, userID string) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if err := s.store.RemoveUser(ctx, room.ID, userID); err != nil {
		return err
	}

	s.logger.Info("user left", zap.String("room_id", room.ID), zap.String("user_id", userID))
	s.changed(ctx, room.ID, feed.KindUsers)
	return nil
}

// Advance 反覆評估推進條件並寫入，直到沒有下一步為止。
// 多個呼叫者同時推進時，由 store 的條件更新保證結果一致。
func (s *Service) Advance(ctx context.Context, roomID string) (models.Room, error) {
	roomID = utils.NormalizeRoomCode(roomID)
	var room models.Room
	// waiting 到 results 最多三步，多一輪用來確認已經穩定
	for step := 0; step <= maxAdvanceSteps; step++ {
		var err error
		room, err = s.GetRoom(ctx, roomID)
		if err != nil {
			return models.Room{}, err
		}
		users, err := s.store.ListUsers(ctx, room.ID)
		if err != nil {
			return models.Room{}, err
		}

		next, ok := s.cfg.Rules.Next(room, users)
		if !ok {
			return room, nil
		}

		changed, err := s.store.UpdateStage(ctx, room.ID, next, s.now())
		if err != nil {
			return models.Room{}, err
		}
		if changed {
			s.logger.Info("room advanced",
				zap.String("room_id", room.ID),
				zap.String("from", string(room.Stage)),
				zap.String("to", string(next)),
			)
			s.publish(ctx, room.ID, feed.KindRoom)
		}
	}
	return room, nil
}

// Restaurants 依目前所有人的偏好挑選餐廳；lat/lng 都有給時才查附近的店
func (s *Service) Restaurants(ctx context.Context, roomID string, lat, lng *float64) ([]models.Restaurant, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	q := places.Query{Tags: catalog.UnionPreferences(users)}
	if lat != nil && lng != nil {
		q.Lat, q.Lng = *lat, *lng
	}
	return s.restaurants.Restaurants(ctx, room.ID, q), nil
}

// Matches 計算目前的排名，依房間類型只取前幾名
func (s *Service) Matches(ctx context.Context, roomID string) ([]models.RestaurantMatch, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	swipes, err := s.store.ListSwipes(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	ranked := s.engine.Score(s.restaurants.Catalog(ctx, room.ID), swipes)
	return matching.TopN(ranked, room.Type), nil
}

// changed 發布變動後嘗試推進；推進失敗不影響已經成功的寫入
func (s *Service) changed(ctx context.Context, roomID string, kind feed.Kind) {
	s.publish(ctx, roomID, kind)
	if _, err := s.Advance(ctx, roomID); err != nil {
		s.logger.Error("advance room", zap.String("room_id", roomID), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, roomID string, kind feed.Kind) {
	if err := s.feed.Publish(ctx, roomID, kind); err != nil {
		s.logger.Warn("publish feed event",
			zap.String("room_id", roomID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// Subscribe 訂閱房間的原始變動事件，呼叫端負責 Close
func (s *Service) Subscribe(ctx context.Context, roomID string) (*feed.Subscription, error) {
	return s.feed.Subscribe(ctx, utils.NormalizeRoomCode(roomID))
}

// Snapshot 依事件類型讀取最新的完整資料。
// KindRoom 在房間不存在時回傳 (*models.Room)(nil)。
func (s *Service) Snapshot(ctx context.Context, roomID string, kind feed.Kind) (interface{}, error) {
	roomID = utils.NormalizeRoomCode(roomID)
	switch kind {
	case feed.KindRoom:
		return s.loadRoom(ctx, roomID)
	case feed.KindUsers:
		return s.store.ListUsers(ctx, roomID)
	case feed.KindSwipes:
		return s.store.ListSwipes(ctx, roomID)
	case feed.KindMatches:
		return s.Matches(ctx, roomID)
	default:
		return nil, fmt.Errorf("unknown feed kind %q", kind)
	}
}

// SubscribeRoom 訂閱房間本身，房間不存在時收到 nil
func (s *Service) SubscribeRoom(ctx context.Context, roomID string, fn func(*models.Room)) (func(), error) {
	roomID = utils.NormalizeRoomCode(roomID)
	return s.watch(ctx, roomID, feed.KindRoom, func(ctx context.Context) error {
		room, err := s.loadRoom(ctx, roomID)
		if err != nil {
			return err
		}
		fn(room)
		return nil
	})
}

// SubscribeUsers 訂閱參與者名單
func (s *Service) SubscribeUsers(ctx context.Context, roomID string, fn func([]models.User)) (func(), error) {
	roomID = utils.NormalizeRoomCode(roomID)
	return s.watch(ctx, roomID, feed.KindUsers, func(ctx context.Context) error {
		users, err := s.store.ListUsers(ctx, roomID)
		if err != nil {
			return err
		}
		fn(users)
		return nil
	})
}

// SubscribeSwipes 訂閱滑卡紀錄
func (s *Service) SubscribeSwipes(ctx context.Context, roomID string, fn func([]models.SwipeAction)) (func(), error) {
	roomID = utils.NormalizeRoomCode(roomID)
	return s.watch(ctx, roomID, feed.KindSwipes, func(ctx context.Context) error {
		swipes, err := s.store.ListSwipes(ctx, roomID)
		if err != nil {
			return err
		}
		fn(swipes)
		return nil
	})
}

// watch 先訂閱再送出第一份快照，之後每次 kind 變動都重新讀取。
// 回傳的 func 會取消 context 並關閉 pub/sub 連線。
func (s *Service) watch(ctx context.Context, roomID string, kind feed.Kind, deliver func(context.Context) error) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	sub, err := s.feed.Subscribe(ctx, roomID)
	if err != nil {
		cancel()
		return nil, err
	}
	if err := deliver(ctx); err != nil {
		_ = sub.Close()
		cancel()
		return nil, err
	}

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if ev.Kind != kind {
					continue
				}
				if err := deliver(ctx); err != nil && ctx.Err() == nil {
					s.logger.Warn("reload snapshot",
						zap.String("room_id", roomID),
						zap.String("kind", string(kind)),
						zap.Error(err),
					)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = sub.Close()
		})
	}, nil
}
