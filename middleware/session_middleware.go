package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/models"
	"github.com/bhakti-thakur/Dine-o-saur/utils"
)

// RoomCodeVar 路由中房號的變數名稱
const RoomCodeVar = "code"

// SessionMiddleware 驗證 session token 並將 session 放入 context。
// 路由帶有房號時，token 必須屬於同一個房間。
func SessionMiddleware(secret string, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Authorization: Bearer <token>
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeError(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			session, err := utils.ParseSessionToken(parts[1], secret)
			if err != nil {
				logger.Info("invalid session token", zap.Error(err))
				writeError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			if code, ok := mux.Vars(r)[RoomCodeVar]; ok && utils.NormalizeRoomCode(code) != session.RoomID {
				writeError(w, "Session belongs to another room", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithSession(r.Context(), session)))
		})
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Message: message})
}
