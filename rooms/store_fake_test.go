package rooms

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bhakti-thakur/Dine-o-saur/models"
)

// memStore 記憶體版的 Store，語意與 MongoDB 版本相同
type memStore struct {
	mu     sync.Mutex
	rooms  map[string]models.Room
	users  map[string][]models.User
	swipes map[string][]models.SwipeAction
}

func newMemStore() *memStore {
	return &memStore{
		rooms:  map[string]models.Room{},
		users:  map[string][]models.User{},
		swipes: map[string][]models.SwipeAction{},
	}
}

func (m *memStore) CreateRoom(_ context.Context, room models.Room) (models.Room, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rooms[room.ID]; ok {
		return existing, false, nil
	}
	room.ParticipantCount = 0
	m.rooms[room.ID] = room
	return room, true, nil
}

func (m *memStore) GetRoom(_ context.Context, roomID string) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (m *memStore) UpdateStage(_ context.Context, roomID string, target models.Stage, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return false, models.ErrRoomNotFound
	}
	if room.Stage.Index() >= target.Index() {
		return false, nil
	}
	room.Stage = target
	room.StageUpdatedAt = at
	if target == models.StagePreferences {
		room.StartedAt = &at
	}
	m.rooms[roomID] = room
	return true, nil
}

func (m *memStore) UpsertUser(_ context.Context, roomID string, user models.User, maxUsers int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return models.ErrRoomNotFound
	}
	for i, u := range m.users[roomID] {
		if u.ID == user.ID {
			m.users[roomID][i] = user
			return nil
		}
	}
	if room.ParticipantCount >= maxUsers {
		return models.ErrCapacityExceeded
	}
	room.ParticipantCount++
	m.rooms[roomID] = room
	m.users[roomID] = append(m.users[roomID], user)
	return nil
}

func (m *memStore) GetUser(_ context.Context, roomID, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users[roomID] {
		if u.ID == userID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListUsers(_ context.Context, roomID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.User{}, m.users[roomID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *memStore) SetUserPreferences(_ context.Context, roomID, userID string, prefs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users[roomID] {
		if u.ID == userID {
			m.users[roomID][i].Preferences = append([]string{}, prefs...)
			return nil
		}
	}
	return models.ErrUserNotFound
}

func (m *memStore) MarkUserDone(_ context.Context, roomID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users[roomID] {
		if u.ID == userID {
			m.users[roomID][i].IsDoneSwiping = true
			return nil
		}
	}
	return models.ErrUserNotFound
}

func (m *memStore) RemoveUser(_ context.Context, roomID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := m.users[roomID]
	for i, u := range users {
		if u.ID == userID {
			m.users[roomID] = append(users[:i:i], users[i+1:]...)
			room := m.rooms[roomID]
			room.ParticipantCount--
			m.rooms[roomID] = room
			return nil
		}
	}
	return models.ErrUserNotFound
}

func (m *memStore) RecordSwipe(_ context.Context, swipe models.SwipeAction) (models.SwipeAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	swipe.ID = primitive.NewObjectID()
	m.swipes[swipe.RoomID] = append(m.swipes[swipe.RoomID], swipe)
	return swipe, nil
}

func (m *memStore) ListSwipes(_ context.Context, roomID string) ([]models.SwipeAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SwipeAction{}, m.swipes[roomID]...), nil
}
