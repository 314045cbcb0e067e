package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

// JoinResponse 加入房間後回傳給前端，token 需保存以便重新整理後重新加入
type JoinResponse struct {
	User     models.User `json:"user"`
	Token    string      `json:"token"`
	ShareURL string      `json:"shareUrl"`
}

// SessionResponse 驗證 session 後回傳房間與自己的資料
type SessionResponse struct {
	Room models.Room `json:"room"`
	User models.User `json:"user"`
}

// JoinRoom 處理加入房間請求，body 可以是空的
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	var req models.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.sendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, token, err := h.rooms.Join(r.Context(), code, req.UserID, req.Name)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.logger.Info("join succeeded", zap.String("room_id", code), zap.String("user_id", user.ID))
	h.sendJSON(w, http.StatusOK, JoinResponse{
		User:     user,
		Token:    token,
		ShareURL: h.rooms.ShareURL(code),
	})
}

// GetSession 驗證保存的 session 是否仍然有效
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	room, err := h.rooms.GetRoom(r.Context(), session.RoomID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	user, err := h.rooms.GetUser(r.Context(), session.RoomID, session.UserID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, http.StatusOK, SessionResponse{Room: room, User: user})
}
