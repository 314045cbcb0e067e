package rooms

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bhakti-thakur/Dine-o-saur/catalog"
	"github.com/bhakti-thakur/Dine-o-saur/feed"
	"github.com/bhakti-thakur/Dine-o-saur/matching"
	"github.com/bhakti-thakur/Dine-o-saur/models"
	"github.com/bhakti-thakur/Dine-o-saur/places"
	"github.com/bhakti-thakur/Dine-o-saur/stage"
	"github.com/bhakti-thakur/Dine-o-saur/utils"
)

const testSecret = "test-secret"

var threePrefs = []string{"indian", "spicy", "vegetarian"}

func newTestService(t *testing.T, mutate ...func(*Config)) (*Service, *memStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := Config{
		Rules:         stage.DefaultRules(),
		Counting:      matching.CountLatest,
		RoomTTL:       30 * time.Minute,
		JWTSecret:     testSecret,
		PublicBaseURL: "http://localhost:3000",
	}
	for _, m := range mutate {
		m(&cfg)
	}

	store := newMemStore()
	resolver := places.NewResolver(nil, nil, catalog.Restaurants(), 5000, zap.NewNop())
	return NewService(store, feed.NewBus(client, zap.NewNop()), resolver, cfg, zap.NewNop()), store
}

func TestCreateRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeGroup, "", 3)
	require.NoError(t, err)
	assert.True(t, utils.IsValidRoomCode(room.ID))
	assert.Equal(t, models.StageWaiting, room.Stage)
	assert.Equal(t, 3, room.ExpectedUsers)
	assert.True(t, room.IsActive)
	assert.Equal(t, 30*time.Minute, room.ExpiresAt.Sub(room.CreatedAt))

	_, err = svc.CreateRoom(ctx, models.RoomType("trio"), "", 0)
	assert.ErrorIs(t, err, models.ErrInvalidRoomType)

	_, err = svc.CreateRoom(ctx, models.RoomTypeGroup, "", 9)
	assert.ErrorIs(t, err, models.ErrInvalidRoomType)

	_, err = svc.CreateRoom(ctx, models.RoomTypeCouple, "AB", 0)
	assert.ErrorIs(t, err, models.ErrInvalidRoomCode)
}

func TestCreateRoomWithCodeIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateRoom(ctx, models.RoomTypeCouple, "abc123", 0)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", first.ID)

	second, err := svc.CreateRoom(ctx, models.RoomTypeGroup, "ABC123", 0)
	require.NoError(t, err)
	assert.Equal(t, models.RoomTypeCouple, second.Type)
}

func TestGetRoomNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetRoom(context.Background(), "NOPE00")
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestJoinIssuesSessionAndEnforcesCapacity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeCouple, "", 0)
	require.NoError(t, err)

	alex, token, err := svc.Join(ctx, room.ID, "", "Alex")
	require.NoError(t, err)
	assert.NotEmpty(t, alex.ID)
	assert.Equal(t, "Alex", alex.Name)

	session, err := utils.ParseSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, models.Session{UserID: alex.ID, RoomID: room.ID}, session)

	sam, _, err := svc.Join(ctx, room.ID, "user_sam", "")
	require.NoError(t, err)
	assert.Equal(t, "user_sam", sam.ID)
	assert.NotEmpty(t, sam.Name)

	_, _, err = svc.Join(ctx, room.ID, "user_third", "Third")
	assert.ErrorIs(t, err, models.ErrCapacityExceeded)

	// 兩人到齊後自動進入 preferences
	got, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StagePreferences, got.Stage)
	require.NotNil(t, got.StartedAt)

	_, _, err = svc.Join(ctx, "GHOST0", "", "")
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestRejoinKeepsState(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeGroup, "", 0)
	require.NoError(t, err)

	u, _, err := svc.Join(ctx, room.ID, "user_a", "Alex")
	require.NoError(t, err)
	_, err = svc.SetPreferences(ctx, room.ID, u.ID, threePrefs)
	require.NoError(t, err)

	again, _, err := svc.Join(ctx, room.ID, "user_a", "")
	require.NoError(t, err)
	assert.Equal(t, "Alex", again.Name)
	assert.Equal(t, threePrefs, again.Preferences)
	assert.Equal(t, u.JoinedAt, again.JoinedAt)

	users, err := svc.ListUsers(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCoupleFlowToResults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeCouple, "", 0)
	require.NoError(t, err)
	a, _, err := svc.Join(ctx, room.ID, "a", "A")
	require.NoError(t, err)
	b, _, err := svc.Join(ctx, room.ID, "b", "B")
	require.NoError(t, err)

	_, err = svc.RecordSwipe(ctx, room.ID, a.ID, "1", models.SwipeLike)
	assert.ErrorIs(t, err, models.ErrWrongStage, "還沒開始滑卡")

	_, err = svc.SetPreferences(ctx, room.ID, a.ID, threePrefs)
	require.NoError(t, err)
	got, _ := svc.GetRoom(ctx, room.ID)
	assert.Equal(t, models.StagePreferences, got.Stage)

	_, err = svc.SetPreferences(ctx, room.ID, b.ID, []string{"indian", "mexican", "savory", "indian"})
	require.NoError(t, err)
	got, _ = svc.GetRoom(ctx, room.ID)
	assert.Equal(t, models.StageSwiping, got.Stage)

	restaurants, err := svc.Restaurants(ctx, room.ID, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, restaurants)
	for _, r := range restaurants {
		assert.NotEmpty(t, catalog.Filter([]models.Restaurant{r}, []string{"indian", "spicy", "vegetarian", "mexican", "savory"}))
	}

	for _, sw := range []struct {
		user, restaurant string
		action           models.SwipeKind
	}{
		{a.ID, "1", models.SwipeLike},
		{b.ID, "1", models.SwipeSuperlike},
		{a.ID, "3", models.SwipeLike},
		{b.ID, "2", models.SwipeSkip},
	} {
		_, err := svc.RecordSwipe(ctx, room.ID, sw.user, sw.restaurant, sw.action)
		require.NoError(t, err)
	}

	_, err = svc.RecordSwipe(ctx, room.ID, "stranger", "1", models.SwipeLike)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	_, err = svc.RecordSwipe(ctx, room.ID, a.ID, "1", models.SwipeKind("love"))
	assert.ErrorIs(t, err, models.ErrInvalidSwipe)

	require.NoError(t, svc.MarkDone(ctx, room.ID, a.ID))
	got, _ = svc.GetRoom(ctx, room.ID)
	assert.Equal(t, models.StageSwiping, got.Stage)

	require.NoError(t, svc.MarkDone(ctx, room.ID, b.ID))
	got, _ = svc.GetRoom(ctx, room.ID)
	assert.Equal(t, models.StageResults, got.Stage)

	matches, err := svc.Matches(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[0].Restaurant.ID)
	assert.Equal(t, 4, matches[0].Score)
	assert.Equal(t, "3", matches[1].Restaurant.ID)

	_, err = svc.SetPreferences(ctx, room.ID, a.ID, threePrefs)
	assert.ErrorIs(t, err, models.ErrWrongStage)
}

func TestSetPreferencesValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeGroup, "", 0)
	require.NoError(t, err)
	u, _, err := svc.Join(ctx, room.ID, "", "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		prefs []string
	}{
		{"too few", []string{"indian", "thai"}},
		{"too few after dedupe", []string{"indian", "indian", "thai"}},
		{"unknown tag", []string{"indian", "thai", "pizza"}},
		{"too many", []string{"indian", "thai", "chinese", "italian", "mexican", "japanese", "french", "korean", "spicy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetPreferences(ctx, room.ID, u.ID, tt.prefs)
			assert.ErrorIs(t, err, models.ErrInvalidPreferences)
		})
	}

	_, err = svc.SetPreferences(ctx, room.ID, "nobody", threePrefs)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestLateJoinRejectPolicy(t *testing.T) {
	svc, _ := newTestService(t, func(c *Config) { c.Rules.LateJoiners = stage.LateJoinReject })
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeGroup, "", 2)
	require.NoError(t, err)
	_, _, err = svc.Join(ctx, room.ID, "a", "")
	require.NoError(t, err)
	_, _, err = svc.Join(ctx, room.ID, "b", "")
	require.NoError(t, err)

	_, _, err = svc.Join(ctx, room.ID, "c", "")
	assert.ErrorIs(t, err, models.ErrRoomStarted)

	// 原本的參與者仍可重新加入
	_, _, err = svc.Join(ctx, room.ID, "a", "")
	assert.NoError(t, err)
}

func TestLeaveReleasesSeatAndAdvances(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeGroup, "", 0)
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, _, err := svc.Join(ctx, room.ID, id, "")
		require.NoError(t, err)
	}
	_, err = svc.SetPreferences(ctx, room.ID, "a", threePrefs)
	require.NoError(t, err)
	_, err = svc.SetPreferences(ctx, room.ID, "b", threePrefs)
	require.NoError(t, err)

	got, _ := svc.GetRoom(ctx, room.ID)
	assert.Equal(t, models.StagePreferences, got.Stage)

	// c 還沒選偏好就離開，剩下的人都準備好了
	require.NoError(t, svc.Leave(ctx, room.ID, "c"))
	got, _ = svc.GetRoom(ctx, room.ID)
	assert.Equal(t, models.StageSwiping, got.Stage)
	assert.Equal(t, 2, store.rooms[room.ID].ParticipantCount)

	assert.ErrorIs(t, svc.Leave(ctx, room.ID, "c"), models.ErrUserNotFound)
}

func TestAdvanceIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeCouple, "", 0)
	require.NoError(t, err)

	got, err := svc.Advance(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageWaiting, got.Stage, "空房間不會推進")

	_, err = svc.Advance(ctx, "GHOST0")
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestSubscribeUsersDeliversSnapshots(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeGroup, "", 0)
	require.NoError(t, err)

	snapshots := make(chan []models.User, 8)
	unsubscribe, err := svc.SubscribeUsers(ctx, room.ID, func(users []models.User) { snapshots <- users })
	require.NoError(t, err)
	defer unsubscribe()

	assert.Empty(t, <-snapshots, "訂閱時先收到目前的名單")

	_, _, err = svc.Join(ctx, room.ID, "a", "Alex")
	require.NoError(t, err)

	select {
	case users := <-snapshots:
		require.Len(t, users, 1)
		assert.Equal(t, "Alex", users[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no users snapshot after join")
	}
}

func TestSubscribeRoomDeliversNilForMissingRoom(t *testing.T) {
	svc, _ := newTestService(t)

	got := make(chan *models.Room, 1)
	unsubscribe, err := svc.SubscribeRoom(context.Background(), "GHOST0", func(r *models.Room) { got <- r })
	require.NoError(t, err)
	defer unsubscribe()

	assert.Nil(t, <-got)
}

func TestSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeCouple, "", 0)
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, room.ID, feed.KindRoom)
	require.NoError(t, err)
	assert.Equal(t, room.ID, snap.(*models.Room).ID)

	snap, err = svc.Snapshot(ctx, room.ID, feed.KindMatches)
	require.NoError(t, err)
	assert.Empty(t, snap)

	_, err = svc.Snapshot(ctx, room.ID, feed.Kind("nope"))
	assert.Error(t, err)
}

func TestGetRoomReportsExpiry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeCouple, "", 0)
	require.NoError(t, err)

	fresh, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, fresh.IsActive)
	assert.False(t, fresh.Expired)

	raw, err := json.Marshal(fresh)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"expired":false`)

	svc.now = func() time.Time { return room.ExpiresAt.Add(time.Minute) }

	expired, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, expired.IsActive)
	assert.True(t, expired.Expired)
	assert.Equal(t, models.StageWaiting, expired.Stage, "過期的房間仍然可以讀取")

	raw, err = json.Marshal(expired)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"expired":true`)
	assert.Contains(t, string(raw), `"isActive":false`)

	snap, err := svc.Snapshot(ctx, room.ID, feed.KindRoom)
	require.NoError(t, err)
	assert.True(t, snap.(*models.Room).Expired)
	assert.False(t, snap.(*models.Room).IsActive)

	got := make(chan *models.Room, 1)
	unsubscribe, err := svc.SubscribeRoom(ctx, room.ID, func(r *models.Room) { got <- r })
	require.NoError(t, err)
	defer unsubscribe()
	select {
	case r := <-got:
		require.NotNil(t, r)
		assert.True(t, r.Expired)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for room snapshot")
	}
}

// leaveAfterRead 在讀到參與者之後立刻把人移除，模擬讀寫之間有人離開
type leaveAfterRead struct {
	*memStore
}

func (l leaveAfterRead) GetUser(ctx context.Context, roomID, userID string) (*models.User, error) {
	u, err := l.memStore.GetUser(ctx, roomID, userID)
	if err != nil || u == nil {
		return u, err
	}
	if err := l.memStore.RemoveUser(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return u, nil
}

func TestSetPreferencesDoesNotResurrectLeftUser(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeCouple, "", 0)
	require.NoError(t, err)
	_, _, err = svc.Join(ctx, room.ID, "a", "")
	require.NoError(t, err)

	svc.store = leaveAfterRead{memStore: store}

	_, err = svc.SetPreferences(ctx, room.ID, "a", threePrefs)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	users, err := store.ListUsers(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 0, store.rooms[room.ID].ParticipantCount)
}

func TestSetPreferencesAfterLeave(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, models.RoomTypeCouple, "", 0)
	require.NoError(t, err)
	_, _, err = svc.Join(ctx, room.ID, "a", "")
	require.NoError(t, err)
	require.NoError(t, svc.Leave(ctx, room.ID, "a"))

	_, err = svc.SetPreferences(ctx, room.ID, "a", threePrefs)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.ErrorIs(t, store.SetUserPreferences(ctx, room.ID, "a", threePrefs), models.ErrUserNotFound)
	assert.Equal(t, 0, store.rooms[room.ID].ParticipantCount)
}
