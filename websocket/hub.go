// Package websocket pushes room snapshots to connected browsers and accepts
// swipe, done and preferences commands from them.
package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/feed"
	"github.com/bhakti-thakur/Dine-o-saur/models"
	"github.com/bhakti-thakur/Dine-o-saur/utils"
)

var errUnknownCommand = errors.New("unknown command")

// 讀取快照的最長時間
const snapshotTimeout = 5 * time.Second

// Envelope 推送給前端的訊息，Type 為 room、users、swipes、matches 或 error
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func errorEnvelope(message string) Envelope {
	return Envelope{Type: "error", Data: models.ErrorResponse{Message: message}}
}

// RoomService hub 需要的房間操作
type RoomService interface {
	Subscribe(ctx context.Context, roomID string) (*feed.Subscription, error)
	Snapshot(ctx context.Context, roomID string, kind feed.Kind) (interface{}, error)
	RecordSwipe(ctx context.Context, roomID, userID, restaurantID string, action models.SwipeKind) (models.SwipeAction, error)
	MarkDone(ctx context.Context, roomID, userID string) error
	SetPreferences(ctx context.Context, roomID, userID string, preferences []string) (models.User, error)
}

type roomMessage struct {
	roomID   string
	envelope Envelope
}

type directMessage struct {
	client   *Client
	envelope Envelope
}

// roomWatch 一個房間的變動訂閱；用指標辨識是哪一次啟動的
type roomWatch struct {
	roomID string
	cancel context.CancelFunc
}

// watchEnd watch 結束時回報給 Run，err 不為 nil 代表訂閱沒有建立成功
type watchEnd struct {
	watch *roomWatch
	err   error
}

// upgrader 用於將 HTTP 連線升級為 WebSocket 連線
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 來源由 CORS 設定把關
		return true
	},
}

// Hub 維護所有連線中的客戶端；每個有人連線的房間只有一個變動訂閱
type Hub struct {
	rooms  RoomService
	secret string
	logger *zap.Logger

	clientsByRoom map[string]map[*Client]bool
	watchers      map[string]*roomWatch

	broadcast  chan roomMessage
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	ended      chan watchEnd
	done       chan struct{} // Run 結束時關閉
}

func NewHub(rooms RoomService, secret string, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:         rooms,
		secret:        secret,
		logger:        logger,
		clientsByRoom: make(map[string]map[*Client]bool),
		watchers:      make(map[string]*roomWatch),
		broadcast:     make(chan roomMessage),
		direct:        make(chan directMessage),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		ended:         make(chan watchEnd),
		done:          make(chan struct{}),
	}
}

// Run 啟動 Hub 的運行迴圈，ctx 結束時停止所有訂閱
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for roomID, w := range h.watchers {
			w.cancel()
			delete(h.watchers, roomID)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			clients, ok := h.clientsByRoom[client.RoomID]
			if !ok {
				clients = make(map[*Client]bool)
				h.clientsByRoom[client.RoomID] = clients
			}
			clients[client] = true

			if _, watching := h.watchers[client.RoomID]; watching {
				go h.sendSnapshot(ctx, client)
			} else {
				// 第一個客戶端或先前的訂閱已中斷：開始訂閱，訂閱完成後會廣播完整快照
				h.startWatch(ctx, client.RoomID)
			}
			h.logger.Info("client registered",
				zap.String("room_id", client.RoomID),
				zap.String("user_id", client.UserID),
				zap.Int("clients_in_room", len(clients)),
			)

		case client := <-h.unregister:
			h.remove(client)

		case end := <-h.ended:
			roomID := end.watch.roomID
			if h.watchers[roomID] != end.watch {
				// 已經被取消或換成新的訂閱
				continue
			}
			delete(h.watchers, roomID)
			// 訂閱失敗時不立即重試，等下一個客戶端加入
			if end.err == nil && len(h.clientsByRoom[roomID]) > 0 {
				h.logger.Warn("room feed closed, resubscribing", zap.String("room_id", roomID))
				h.startWatch(ctx, roomID)
			}

		case msg := <-h.broadcast:
			for client := range h.clientsByRoom[msg.roomID] {
				select {
				case client.send <- msg.envelope:
				default:
					h.logger.Warn("client channel is full, dropping client",
						zap.String("room_id", client.RoomID),
						zap.String("user_id", client.UserID),
					)
					h.remove(client)
				}
			}

		case msg := <-h.direct:
			if !h.clientsByRoom[msg.client.RoomID][msg.client] {
				continue
			}
			select {
			case msg.client.send <- msg.envelope:
			default:
				h.remove(msg.client)
			}
		}
	}
}

// remove 移除客戶端；房間沒人時取消訂閱
func (h *Hub) remove(client *Client) {
	clients, ok := h.clientsByRoom[client.RoomID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.clientsByRoom, client.RoomID)
		if w, ok := h.watchers[client.RoomID]; ok {
			w.cancel()
			delete(h.watchers, client.RoomID)
		}
	}
	h.logger.Info("client unregistered",
		zap.String("room_id", client.RoomID),
		zap.String("user_id", client.UserID),
		zap.Int("clients_in_room", len(clients)),
	)
}

// startWatch 只能在 Run 裡呼叫
func (h *Hub) startWatch(ctx context.Context, roomID string) {
	watchCtx, cancel := context.WithCancel(ctx)
	w := &roomWatch{roomID: roomID, cancel: cancel}
	h.watchers[roomID] = w
	go h.watch(watchCtx, w)
}

// finish 通知 Run 這次訂閱已經結束
func (h *Hub) finish(w *roomWatch, err error) {
	select {
	case h.ended <- watchEnd{watch: w, err: err}:
	case <-h.done:
	}
}

// watch 持有房間的變動訂閱，每次事件都重新讀取對應的快照並廣播
func (h *Hub) watch(ctx context.Context, w *roomWatch) {
	defer w.cancel()
	roomID := w.roomID
	log := h.logger.With(zap.String("room_id", roomID))

	sub, err := h.rooms.Subscribe(ctx, roomID)
	if err != nil {
		// 先讓 Run 清掉這個訂閱，客戶端收到錯誤後重新連線就會重新訂閱
		h.finish(w, err)
		if ctx.Err() == nil {
			log.Error("subscribe room feed", zap.Error(err))
			h.publish(ctx, roomID, errorEnvelope("live updates unavailable"))
		}
		return
	}
	defer h.finish(w, nil)
	defer sub.Close()

	for _, kind := range []feed.Kind{feed.KindRoom, feed.KindUsers, feed.KindSwipes} {
		for _, env := range h.load(ctx, roomID, kind) {
			if !h.publish(ctx, roomID, env) {
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			for _, env := range h.load(ctx, roomID, ev.Kind) {
				if !h.publish(ctx, roomID, env) {
					return
				}
			}
		}
	}
}

// reply 把訊息只送給單一客戶端
func (h *Hub) reply(client *Client, env Envelope) {
	select {
	case h.direct <- directMessage{client: client, envelope: env}:
	case <-h.done:
	}
}

func (h *Hub) publish(ctx context.Context, roomID string, env Envelope) bool {
	select {
	case h.broadcast <- roomMessage{roomID: roomID, envelope: env}:
		return true
	case <-ctx.Done():
		return false
	}
}

// sendSnapshot 讓後加入的客戶端先拿到目前的完整狀態
func (h *Hub) sendSnapshot(ctx context.Context, client *Client) {
	for _, kind := range []feed.Kind{feed.KindRoom, feed.KindUsers, feed.KindSwipes} {
		for _, env := range h.load(ctx, client.RoomID, kind) {
			select {
			case h.direct <- directMessage{client: client, envelope: env}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// load 讀取 kind 對應的快照；房間進入 results 時一併附上排名
func (h *Hub) load(ctx context.Context, roomID string, kind feed.Kind) []Envelope {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	snap, err := h.rooms.Snapshot(ctx, roomID, kind)
	if err != nil {
		if ctx.Err() == nil {
			h.logger.Warn("load snapshot", zap.String("room_id", roomID), zap.String("kind", string(kind)), zap.Error(err))
		}
		return []Envelope{errorEnvelope("failed to load " + string(kind))}
	}

	envelopes := []Envelope{{Type: string(kind), Data: snap}}

	if room, ok := snap.(*models.Room); ok && room != nil && room.Stage == models.StageResults {
		matches, err := h.rooms.Snapshot(ctx, roomID, feed.KindMatches)
		if err != nil {
			h.logger.Warn("load matches", zap.String("room_id", roomID), zap.Error(err))
			return append(envelopes, errorEnvelope("failed to load matches"))
		}
		envelopes = append(envelopes, Envelope{Type: string(feed.KindMatches), Data: matches})
	}
	return envelopes
}

// ServeWS 處理 WebSocket 連線請求：GET /ws?roomId=&token=
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := utils.NormalizeRoomCode(r.URL.Query().Get("roomId"))
	token := r.URL.Query().Get("token")
	if roomID == "" || token == "" {
		http.Error(w, "roomId and token are required for WebSocket connection", http.StatusBadRequest)
		return
	}

	session, err := utils.ParseSessionToken(token, h.secret)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}
	if session.RoomID != roomID {
		http.Error(w, "Session belongs to another room", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan Envelope, 256),
		UserID: session.UserID,
		RoomID: roomID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump() // readPump 會在連線關閉時自動取消註冊
}
