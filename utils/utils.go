package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	RoomCodeLength   = 6
)

var userNames = []string{"Alex", "Sam", "Jordan", "Taylor", "Casey", "Morgan", "Riley", "Quinn"}

// SessionKey 是儲存在 context 中的 session 的鍵
type contextKey string

const SessionKey contextKey = "session"

// WithSession 把 session 放進 context
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// GetSessionFromContext 從 context 中提取 session
func GetSessionFromContext(ctx context.Context) (models.Session, error) {
	s, ok := ctx.Value(SessionKey).(models.Session)
	if !ok {
		return models.Session{}, errors.New("session not found in context")
	}
	return s, nil
}

// GenerateRoomCode 產生 6 碼大寫英數房號，每個字元在 36 個字元中均勻隨機
func GenerateRoomCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(roomCodeAlphabet)))
	code := make([]byte, RoomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// NormalizeRoomCode 去除空白並轉為大寫
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidRoomCode 檢查房號格式 (需先 Normalize)
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(roomCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// GenerateUserID 客戶端沒有提供 ID 時由伺服器產生
func GenerateUserID() string {
	return "user_" + uuid.NewString()
}

// GenerateUserName 隨機挑一個顯示名稱
func GenerateUserName() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(userNames))))
	if err != nil {
		return userNames[0]
	}
	return userNames[n.Int64()]
}

// ShareURL 產生可以分享的房間連結 {base}/room/{code}
func ShareURL(baseURL, roomCode string) string {
	return strings.TrimRight(baseURL, "/") + "/room/" + url.PathEscape(roomCode)
}

// GenerateSessionToken 為參與者生成 JWT Token，過期時間跟房間相同
func GenerateSessionToken(session models.Session, secret string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"userId": session.UserID,
		"roomId": session.RoomID,
		"exp":    expiresAt.Unix(),
		"iat":    time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return tokenString, nil
}

// ParseSessionToken 從 JWT token 中提取 session
func ParseSessionToken(tokenString string, secret string) (models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Session{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Session{}, errors.New("invalid token claims")
	}

	userID, _ := claims["userId"].(string)
	roomID, _ := claims["roomId"].(string)
	if userID == "" || roomID == "" {
		return models.Session{}, errors.New("session not found in token claims")
	}

	return models.Session{UserID: userID, RoomID: roomID}, nil
}
