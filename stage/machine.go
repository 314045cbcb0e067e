// Package stage decides when a room moves to its next stage. Every
// decision is a pure function of the room and a roster snapshot.
package stage

import (
	"fmt"
	"strings"

	"github.com/bhakti-thakur/Dine-o-saur/catalog"
	"github.com/bhakti-thakur/Dine-o-saur/models"
)

// LateJoinPolicy 決定房間開始後才加入的參與者如何處理
type LateJoinPolicy string

const (
	// LateJoinInclude 晚加入者也要完成才能推進 (預設)
	LateJoinInclude LateJoinPolicy = "include"
	// LateJoinExclude 晚加入者不列入「所有人」的判斷
	LateJoinExclude LateJoinPolicy = "exclude"
	// LateJoinReject 房間離開 waiting 後拒絕新的參與者
	LateJoinReject LateJoinPolicy = "reject"
)

// ParseLateJoinPolicy 解析設定值，空字串視為 include
func ParseLateJoinPolicy(s string) (LateJoinPolicy, error) {
	switch p := LateJoinPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return LateJoinInclude, nil
	case LateJoinInclude, LateJoinExclude, LateJoinReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown late join policy %q", s)
	}
}

// Rules 推進條件的參數
type Rules struct {
	MinPreferences int
	MaxPreferences int
	MaxGroupSize   int
	LateJoiners    LateJoinPolicy
}

func DefaultRules() Rules {
	return Rules{
		MinPreferences: catalog.MinPreferences,
		MaxPreferences: catalog.MaxPreferences,
		MaxGroupSize:   models.DefaultMaxGroupSize,
		LateJoiners:    LateJoinInclude,
	}
}

// Next 以預設規則計算下一個階段
func Next(current models.Stage, roomType models.RoomType, users []models.User) (models.Stage, bool) {
	return DefaultRules().Next(models.Room{Type: roomType, Stage: current}, users)
}

// Next 回傳 room 在目前名單下應該前往的階段，一次只推進一步。
// 條件不成立時回傳 (room.Stage, false)。
func (r Rules) Next(room models.Room, users []models.User) (models.Stage, bool) {
	next, ok := room.Stage.Next()
	if !ok {
		return room.Stage, false
	}

	var ready bool
	switch room.Stage {
	case models.StageWaiting:
		ready = r.rosterComplete(room, len(users))
	case models.StagePreferences:
		ready = all(r.counted(room, users), func(u models.User) bool {
			return u.PreferenceCountWithin(r.minPreferences(), r.MaxPreferences)
		})
	case models.StageSwiping:
		ready = all(r.counted(room, users), func(u models.User) bool {
			return u.IsDoneSwiping
		})
	}

	if !ready {
		return room.Stage, false
	}
	return next, true
}

func (r Rules) rosterComplete(room models.Room, n int) bool {
	if room.Type == models.RoomTypeCouple {
		return n == models.CoupleSize
	}
	if n < models.MinGroupSize || n > room.Type.MaxUsers(r.MaxGroupSize) {
		return false
	}
	return room.ExpectedUsers <= 0 || n >= room.ExpectedUsers
}

// counted 過濾掉在 exclude 政策下不列入判斷的晚加入者
func (r Rules) counted(room models.Room, users []models.User) []models.User {
	if r.LateJoiners != LateJoinExclude || room.StartedAt == nil {
		return users
	}
	onTime := make([]models.User, 0, len(users))
	for _, u := range users {
		if !u.JoinedAt.After(*room.StartedAt) {
			onTime = append(onTime, u)
		}
	}
	return onTime
}

func (r Rules) minPreferences() int {
	if r.MinPreferences <= 0 {
		return catalog.MinPreferences
	}
	return r.MinPreferences
}

// all 名單為空時回傳 false
func all(users []models.User, pred func(models.User) bool) bool {
	if len(users) == 0 {
		return false
	}
	for _, u := range users {
		if !pred(u) {
			return false
		}
	}
	return true
}
