package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/catalog"
	"github.com/bhakti-thakur/Dine-o-saur/models"
	"github.com/bhakti-thakur/Dine-o-saur/utils"
)

// CreateRoomRequest 定義建立房間的請求體
type CreateRoomRequest struct {
	Type          models.RoomType `json:"type"`
	Code          string          `json:"code,omitempty"`          // 選填，指定房號
	ExpectedUsers int             `json:"expectedUsers,omitempty"` // 選填，僅 group 使用
}

// PreferencesRequest 定義更新偏好的請求體
type PreferencesRequest struct {
	Preferences []string `json:"preferences"`
}

// roomCode 從路由取出房號並檢查格式
func roomCode(r *http.Request) (string, error) {
	code := utils.NormalizeRoomCode(mux.Vars(r)["code"])
	if !utils.IsValidRoomCode(code) {
		return "", models.ErrInvalidRoomCode
	}
	return code, nil
}

// ListPreferences 列出所有可選的食物偏好
func (h *Handler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, catalog.Preferences())
}

// CreateRoom 處理建立房間的請求
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	room, err := h.rooms.CreateRoom(r.Context(), req.Type, req.Code, req.ExpectedUsers)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, room)
}

// GetRoom 取得房間資訊
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	room, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, room)
}

// ListUsers 取得房間內的參與者
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	users, err := h.rooms.ListUsers(r.Context(), code)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, users)
}

// SetPreferences 更新自己的偏好
func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.rooms.SetPreferences(r.Context(), session.RoomID, session.UserID, req.Preferences)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, user)
}

// MarkDone 標記自己已經滑完
func (h *Handler) MarkDone(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.rooms.MarkDone(r.Context(), session.RoomID, session.UserID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LeaveRoom 離開房間
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.rooms.Leave(r.Context(), session.RoomID, session.UserID); err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordSwipe 記錄一次滑卡
func (h *Handler) RecordSwipe(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	swipe, err := h.rooms.RecordSwipe(r.Context(), session.RoomID, session.UserID, req.RestaurantID, req.Action)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, swipe)
}

// AdvanceRoom 手動觸發一次推進檢查
func (h *Handler) AdvanceRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	room, err := h.rooms.Advance(r.Context(), session.RoomID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, room)
}

// ListRestaurants 依房間偏好列出餐廳，可帶 lat/lng 查附近
func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	lat, err := optionalFloat(r, "lat")
	if err != nil {
		h.sendJSONError(w, "Invalid lat", http.StatusBadRequest)
		return
	}
	lng, err := optionalFloat(r, "lng")
	if err != nil {
		h.sendJSONError(w, "Invalid lng", http.StatusBadRequest)
		return
	}

	restaurants, err := h.rooms.Restaurants(r.Context(), code, lat, lng)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, restaurants)
}

// ListMatches 目前的排名結果
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	matches, err := h.rooms.Matches(r.Context(), code)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, matches)
}

func optionalFloat(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// session 從 context 取出 session，缺少時回 401
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	session, err := utils.GetSessionFromContext(r.Context())
	if err != nil {
		h.logger.Warn("session missing from context", zap.String("path", r.URL.Path))
		h.sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return models.Session{}, false
	}
	return session, true
}
