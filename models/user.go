package models

import (
	"time"
)

// JoinRequest 結構體用於處理加入房間的請求
type JoinRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// ErrorResponse 結構體用於返回 JSON 格式的錯誤訊息
type ErrorResponse struct {
	Message string `json:"message"`
}

// User 結構體定義了房間內參與者的欄位
type User struct {
	ID            string    `bson:"userId" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Preferences   []string  `bson:"preferences" json:"preferences"`     // 有順序且不重複的偏好標籤
	IsDoneSwiping bool      `bson:"isDoneSwiping" json:"isDoneSwiping"` // 是否已完成滑卡
	JoinedAt      time.Time `bson:"joinedAt" json:"joinedAt"`
}

// PreferenceCountWithin 偏好數量是否落在 [min, max] 之間
func (u User) PreferenceCountWithin(min, max int) bool {
	n := len(u.Preferences)
	if n < min {
		return false
	}
	return max <= 0 || n <= max
}

// 註：User 只能由本人寫入，伺服器以 session token 綁定 userId 與 roomId。
