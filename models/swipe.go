package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SwipeKind 定義滑卡動作類型
type SwipeKind string

const (
	SwipeLike      SwipeKind = "like"      // +1
	SwipeSkip      SwipeKind = "skip"      // 0
	SwipeSuperlike SwipeKind = "superlike" // +3
)

func (k SwipeKind) Valid() bool {
	switch k {
	case SwipeLike, SwipeSkip, SwipeSuperlike:
		return true
	}
	return false
}

// SwipeAction 代表一次滑卡，寫入後不會再修改或刪除
type SwipeAction struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RoomID       string             `bson:"roomId" json:"roomId"`
	UserID       string             `bson:"userId" json:"userId"`
	RestaurantID string             `bson:"restaurantId" json:"restaurantId"`
	Action       SwipeKind          `bson:"action" json:"action"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}

// SwipeRequest 結構體用於處理滑卡請求
type SwipeRequest struct {
	RestaurantID string    `json:"restaurantId"`
	Action       SwipeKind `json:"action"`
}
