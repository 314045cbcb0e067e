package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

const (
	// 將訊息寫入到遠端對等點的最長時間
	writeWait = 10 * time.Second

	// 允許從遠端對等點讀取下一個 pong 訊息的最長時間。
	pongWait = 60 * time.Second

	// 發送 ping 訊息給遠端對等點的週期。
	pingPeriod = (pongWait * 9) / 10

	// 偏好最多 8 個，4KB 足夠
	maxMessageSize = 4096

	// 處理單一指令的最長時間
	commandTimeout = 10 * time.Second
)

// Command 客戶端送來的指令
type Command struct {
	Type         string           `json:"type"` // swipe, done, preferences
	RestaurantID string           `json:"restaurantId,omitempty"`
	Action       models.SwipeKind `json:"action,omitempty"`
	Preferences  []string         `json:"preferences,omitempty"`
}

// Client 代表一個 WebSocket 客戶端
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Envelope
	UserID string
	RoomID string
}

// 讀取用戶傳來的指令並交給 RoomService 處理；結果會透過變動通知推回來
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	log := c.hub.logger.With(zap.String("room_id", c.RoomID), zap.String("user_id", c.UserID))
	for {
		_, p, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("client disconnected")
			} else {
				log.Info("read message", zap.Error(err))
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(p, &cmd); err != nil {
			c.hub.reply(c, errorEnvelope("invalid command"))
			continue
		}

		if err := c.handle(cmd); err != nil {
			log.Info("command rejected", zap.String("type", cmd.Type), zap.Error(err))
			c.hub.reply(c, errorEnvelope(err.Error()))
		}
	}
}

func (c *Client) handle(cmd Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch cmd.Type {
	case "swipe":
		_, err := c.hub.rooms.RecordSwipe(ctx, c.RoomID, c.UserID, cmd.RestaurantID, cmd.Action)
		return err
	case "done":
		return c.hub.rooms.MarkDone(ctx, c.RoomID, c.UserID)
	case "preferences":
		_, err := c.hub.rooms.SetPreferences(ctx, c.RoomID, c.UserID, cmd.Preferences)
		return err
	default:
		return errUnknownCommand
	}
}

// 接收 Hub 廣播來的訊息，丟給前端
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case envelope, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// channel 被關閉，送出 CloseMessage
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(envelope)
			if err != nil {
				c.hub.logger.Error("marshal envelope", zap.Error(err))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		// 定時 ping 以確認客戶端仍在線
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
