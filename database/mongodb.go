package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson" // 引入 bson 套件
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/models" // 引入 models 套件
)

const (
	roomsCollection = "rooms"
	usersCollection = "room_users"
	swipeCollection = "swipes"

	opTimeout = 5 * time.Second
)

// ConnectMongoDB 建立並初始化 MongoDB 連線
func ConnectMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// DisconnectMongoDB 關閉 MongoDB 連線
func DisconnectMongoDB(client *mongo.Client, logger *zap.Logger) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("disconnect mongodb", zap.Error(err))
	} else {
		logger.Info("disconnected from mongodb")
	}
}

// Store 房間、參與者與滑卡紀錄的共享狀態
type Store struct {
	rooms  *mongo.Collection
	users  *mongo.Collection
	swipes *mongo.Collection
	logger *zap.Logger
}

func NewStore(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		rooms:  db.Collection(roomsCollection),
		users:  db.Collection(usersCollection),
		swipes: db.Collection(swipeCollection),
		logger: logger,
	}
}

// EnsureIndexes 建立查詢與唯一性需要的索引。
// 房間過期只是提示，所以這裡不建立 TTL 索引。
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create room_users index: %w", err)
	}

	_, err = s.swipes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create swipes index: %w", err)
	}

	s.logger.Info("mongodb indexes ready")
	return nil
}

// userDocument 在 User 之外多存 roomId
type userDocument struct {
	RoomID      string `bson:"roomId"`
	models.User `bson:",inline"`
}

// CreateRoom 以房號為 _id 建立房間；房號已存在時回傳既有房間與 created=false
func (s *Store) CreateRoom(ctx context.Context, room models.Room) (models.Room, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	room.ParticipantCount = 0
	_, err := s.rooms.InsertOne(ctx, room)
	if err == nil {
		return room, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return models.Room{}, false, fmt.Errorf("create room %s: %w", room.ID, err)
	}

	existing, err := s.findRoom(ctx, room.ID)
	if err != nil {
		return models.Room{}, false, err
	}
	if existing == nil {
		return models.Room{}, false, fmt.Errorf("create room %s: %w", room.ID, models.ErrRoomNotFound)
	}
	return *existing, false, nil
}

// GetRoom 找不到房間時回傳 (nil, nil)
func (s *Store) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.findRoom(ctx, roomID)
}

func (s *Store) findRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := s.rooms.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find room %s: %w", roomID, err)
	}
	return &room, nil
}

// UpdateStage 只會把房間往後推進：條件是目前階段在 target 之前。
// 已經在 target 或更後面時回傳 (false, nil)。
func (s *Store) UpdateStage(ctx context.Context, roomID string, target models.Stage, at time.Time) (bool, error) {
	if !target.Valid() {
		return false, fmt.Errorf("update stage: unknown stage %q", target)
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"stage": target, "stageUpdatedAt": at}
	if target == models.StagePreferences {
		set["startedAt"] = at
	}

	res, err := s.rooms.UpdateOne(ctx,
		bson.M{"_id": roomID, "stage": bson.M{"$in": target.Predecessors()}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("update stage of room %s: %w", roomID, err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, models.ErrRoomNotFound
	}
	return false, nil
}

// UpsertUser 更新既有參與者；新參與者要先在房間文件上保留名額
// (participantCount < maxUsers)，房間已滿時回傳 ErrCapacityExceeded。
func (s *Store) UpsertUser(ctx context.Context, roomID string, user models.User, maxUsers int) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := userDocument{RoomID: roomID, User: user}
	filter := bson.M{"roomId": roomID, "userId": user.ID}

	replaced, err := s.users.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("replace user %s: %w", user.ID, err)
	}
	if replaced.MatchedCount == 1 {
		return nil
	}

	reserved, err := s.rooms.UpdateOne(ctx,
		bson.M{"_id": roomID, "participantCount": bson.M{"$lt": maxUsers}},
		bson.M{"$inc": bson.M{"participantCount": 1}},
	)
	if err != nil {
		return fmt.Errorf("reserve seat in room %s: %w", roomID, err)
	}
	if reserved.MatchedCount == 0 {
		room, err := s.findRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return models.ErrRoomNotFound
		}
		return models.ErrCapacityExceeded
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		s.releaseSeat(ctx, roomID)
		if mongo.IsDuplicateKeyError(err) {
			// 同一個人同時加入兩次，改成更新
			if _, err := s.users.ReplaceOne(ctx, filter, doc); err != nil {
				return fmt.Errorf("replace user %s: %w", user.ID, err)
			}
			return nil
		}
		return fmt.Errorf("insert user %s: %w", user.ID, err)
	}
	return nil
}

func (s *Store) releaseSeat(ctx context.Context, roomID string) {
	_, err := s.rooms.UpdateOne(ctx,
		bson.M{"_id": roomID, "participantCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"participantCount": -1}},
	)
	if err != nil {
		s.logger.Error("release seat", zap.String("room_id", roomID), zap.Error(err))
	}
}

// GetUser 找不到時回傳 (nil, nil)
func (s *Store) GetUser(ctx context.Context, roomID, userID string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"roomId": roomID, "userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}
	return &doc.User, nil
}

// ListUsers 依加入時間排序
func (s *Store) ListUsers(ctx context.Context, roomID string) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.users.Find(ctx, bson.M{"roomId": roomID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list users of room %s: %w", roomID, err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users of room %s: %w", roomID, err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.User)
	}
	return users, nil
}

// MarkUserDone 標記參與者已完成滑卡
func (s *Store) MarkUserDone(ctx context.Context, roomID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.users.UpdateOne(ctx,
		bson.M{"roomId": roomID, "userId": userID},
		bson.M{"$set": bson.M{"isDoneSwiping": true}},
	)
	if err != nil {
		return fmt.Errorf("mark user %s done: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// SetUserPreferences 只更新既有參與者，不會重新佔用名額
func (s *Store) SetUserPreferences(ctx context.Context, roomID, userID string, prefs []string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if prefs == nil {
		prefs = []string{}
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"roomId": roomID, "userId": userID},
		bson.M{"$set": bson.M{"preferences": prefs}},
	)
	if err != nil {
		return fmt.Errorf("set preferences for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// RemoveUser 移除參與者並釋放名額
func (s *Store) RemoveUser(ctx context.Context, roomID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.users.DeleteOne(ctx, bson.M{"roomId": roomID, "userId": userID})
	if err != nil {
		return fmt.Errorf("remove user %s: %w", userID, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrUserNotFound
	}
	s.releaseSeat(ctx, roomID)
	return nil
}

// RecordSwipe 新增一筆滑卡紀錄 (只新增，不修改)
func (s *Store) RecordSwipe(ctx context.Context, swipe models.SwipeAction) (models.SwipeAction, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := s.swipes.InsertOne(ctx, swipe)
	if err != nil {
		return models.SwipeAction{}, fmt.Errorf("insert swipe: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		swipe.ID = id
	}
	return swipe, nil
}

// ListSwipes 獲取指定房間的所有滑卡紀錄，依時間排序
func (s *Store) ListSwipes(ctx context.Context, roomID string) ([]models.SwipeAction, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.swipes.Find(ctx, bson.M{"roomId": roomID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list swipes of room %s: %w", roomID, err)
	}
	defer cursor.Close(ctx)

	swipes := make([]models.SwipeAction, 0)
	if err = cursor.All(ctx, &swipes); err != nil {
		return nil, fmt.Errorf("decode swipes of room %s: %w", roomID, err)
	}
	return swipes, nil
}
