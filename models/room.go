package models

import (
	"time"
)

// RoomType 決定房間人數上限與結果數量
type RoomType string

const (
	RoomTypeCouple RoomType = "couple"
	RoomTypeGroup  RoomType = "group"
)

const (
	CoupleSize          = 2
	DefaultMaxGroupSize = 8
	MinGroupSize        = 2

	coupleResults = 3
	groupResults  = 5
)

// Valid 檢查是否為已知的房間類型
func (t RoomType) Valid() bool {
	return t == RoomTypeCouple || t == RoomTypeGroup
}

// MaxUsers 回傳房間人數上限，groupMax <= 0 時使用 DefaultMaxGroupSize
func (t RoomType) MaxUsers(groupMax int) int {
	if t == RoomTypeCouple {
		return CoupleSize
	}
	if groupMax <= 0 {
		return DefaultMaxGroupSize
	}
	return groupMax
}

// ResultLimit 結果頁顯示的餐廳數量 (couple 3 間, group 5 間)
func (t RoomType) ResultLimit() int {
	if t == RoomTypeCouple {
		return coupleResults
	}
	return groupResults
}

// Stage 房間的生命週期階段，只能往前推進
type Stage string

const (
	StageWaiting     Stage = "waiting"
	StagePreferences Stage = "preferences"
	StageSwiping     Stage = "swiping"
	StageResults     Stage = "results"
)

var stageOrder = []Stage{StageWaiting, StagePreferences, StageSwiping, StageResults}

// Index 回傳階段在生命週期中的位置，未知階段回傳 -1
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool { return s.Index() >= 0 }

// Next 回傳下一個階段，results 是終點
func (s Stage) Next() (Stage, bool) {
	i := s.Index()
	if i < 0 || i == len(stageOrder)-1 {
		return s, false
	}
	return stageOrder[i+1], true
}

// Predecessors 列出所有在 s 之前的階段
func (s Stage) Predecessors() []Stage {
	i := s.Index()
	if i <= 0 {
		return []Stage{}
	}
	out := make([]Stage, i)
	copy(out, stageOrder[:i])
	return out
}

// Room 代表一次共同選餐的房間
type Room struct {
	ID               string     `bson:"_id" json:"id"`
	Type             RoomType   `bson:"type" json:"type"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	ExpiresAt        time.Time  `bson:"expiresAt" json:"expiresAt"`
	Stage            Stage      `bson:"stage" json:"stage"`
	IsActive         bool       `bson:"isActive" json:"isActive"`
	ExpectedUsers    int        `bson:"expectedUsers,omitempty" json:"expectedUsers,omitempty"`
	StartedAt        *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	StageUpdatedAt   time.Time  `bson:"stageUpdatedAt" json:"stageUpdatedAt"`
	ParticipantCount int        `bson:"participantCount" json:"participantCount"`
	// Expired 讀取時才計算，不寫入資料庫
	Expired bool `bson:"-" json:"expired"`
}

// PastExpiry 過期的房間不會被刪除，只會在回應裡標示出來
func (r Room) PastExpiry(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// WithExpiry 依 now 填入 Expired，過期的房間 IsActive 一律為 false
func (r Room) WithExpiry(now time.Time) Room {
	r.Expired = r.PastExpiry(now)
	if r.Expired {
		r.IsActive = false
	}
	return r
}

// Session 參與者保存在本地的身分，重新整理後可用來重新加入房間
type Session struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}
