package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

// RoomService handlers 需要的房間操作
type RoomService interface {
	CreateRoom(ctx context.Context, roomType models.RoomType, code string, expectedUsers int) (models.Room, error)
	GetRoom(ctx context.Context, roomID string) (models.Room, error)
	ListUsers(ctx context.Context, roomID string) ([]models.User, error)
	GetUser(ctx context.Context, roomID, userID string) (models.User, error)
	Join(ctx context.Context, roomID, userID, name string) (models.User, string, error)
	ShareURL(roomID string) string
	SetPreferences(ctx context.Context, roomID, userID string, preferences []string) (models.User, error)
	RecordSwipe(ctx context.Context, roomID, userID, restaurantID string, action models.SwipeKind) (models.SwipeAction, error)
	MarkDone(ctx context.Context, roomID, userID string) error
	Leave(ctx context.Context, roomID, userID string) error
	Advance(ctx context.Context, roomID string) (models.Room, error)
	Restaurants(ctx context.Context, roomID string, lat, lng *float64) ([]models.Restaurant, error)
	Matches(ctx context.Context, roomID string) ([]models.RestaurantMatch, error)
}

type Handler struct {
	rooms  RoomService
	logger *zap.Logger
}

func New(rooms RoomService, logger *zap.Logger) *Handler {
	return &Handler{rooms: rooms, logger: logger}
}

// sendJSONError 統一發送 JSON 格式錯誤響應
func (h *Handler) sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse{Message: message}); err != nil {
		h.logger.Warn("failed to write error response", zap.Error(err))
	}
}

func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

// sendServiceError 依錯誤類型決定狀態碼，非預期的錯誤只回傳通用訊息
func (h *Handler) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.sendJSONError(w, "Internal server error", status)
		return
	}
	h.sendJSONError(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrRoomNotFound), errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCapacityExceeded),
		errors.Is(err, models.ErrRoomStarted),
		errors.Is(err, models.ErrWrongStage):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidRoomType),
		errors.Is(err, models.ErrInvalidRoomCode),
		errors.Is(err, models.ErrInvalidPreferences),
		errors.Is(err, models.ErrInvalidSwipe):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
