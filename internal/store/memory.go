package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"notesnexus-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of every store interface. It
// backs tests and local development without Postgres or Redis.
type MemoryStore struct {
	mu         sync.Mutex
	rooms      map[string]*models.Room
	messages   map[string][]models.Message // roomID -> insertion order
	users      map[string]*models.User
	emails     map[string]string // email -> userID
	presence   map[string]models.Presence
	indexReady bool
	clock      time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:      make(map[string]*models.Room),
		messages:   make(map[string][]models.Message),
		users:      make(map[string]*models.User),
		emails:     make(map[string]string),
		presence:   make(map[string]models.Presence),
		indexReady: true,
		clock:      time.Now(),
	}
}

// SetIndexReady toggles the simulated availability of the message-ordering
// index. While false, MessagesOrdered returns ErrIndexNotReady.
func (s *MemoryStore) SetIndexReady(ready bool) {
	s.mu.Lock()
	s.indexReady = ready
	s.mu.Unlock()
}

// tick returns a strictly increasing server timestamp.
func (s *MemoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *MemoryStore) CreateRoom(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rooms {
		if r.Token == room.Token {
			return ErrTokenTaken
		}
	}
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	room.CreatedAt = s.tick()
	cp := *room
	cp.Participants = append([]string(nil), room.Participants...)
	s.rooms[room.ID] = &cp
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyRoomLocked(s.rooms[roomID])
}

func (s *MemoryStore) GetRoomByToken(ctx context.Context, token string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.Token == token {
			return s.copyRoomLocked(r)
		}
	}
	return nil, ErrRoomNotFound
}

func (s *MemoryStore) copyRoomLocked(r *models.Room) (*models.Room, error) {
	if r == nil {
		return nil, ErrRoomNotFound
	}
	cp := *r
	cp.Participants = append([]string(nil), r.Participants...)
	return &cp, nil
}

func (s *MemoryStore) MutateRoom(ctx context.Context, roomID string, mutate func(*models.Room) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	cp := *r
	cp.Participants = append([]string(nil), r.Participants...)
	if err := mutate(&cp); err != nil {
		return err
	}
	s.rooms[roomID] = &cp
	return nil
}

func (s *MemoryStore) ListRoomsByParticipant(ctx context.Context, userID string) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Room
	for _, r := range s.rooms {
		if r.HasParticipant(userID) {
			cp, _ := s.copyRoomLocked(r)
			out = append(out, *cp)
		}
	}
	// Newest first, matching the Postgres listing.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) DeleteRoomCascade(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	delete(s.rooms, roomID)
	delete(s.messages, roomID)
	return nil
}

func (s *MemoryStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.tick()
	}
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], *msg)
	return nil
}

func (s *MemoryStore) MessagesOrdered(ctx context.Context, roomID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.indexReady {
		return nil, ErrIndexNotReady
	}
	out := append([]models.Message(nil), s.messages[roomID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MessagesUnordered returns the messages in reverse insertion order: the
// contract promises no particular order, and reversing keeps the callers'
// client-side sort honest.
func (s *MemoryStore) MessagesUnordered(ctx context.Context, roomID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.messages[roomID]
	out := make([]models.Message, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, src[i])
	}
	return out, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = s.tick()
	cp := *user
	s.users[user.ID] = &cp
	s.emails[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	id, ok := s.emails[email]
	s.mu.Unlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.DisplayName = displayName
	u.AvatarURL = avatarURL
	return nil
}

func (s *MemoryStore) SetForceLogout(ctx context.Context, userID string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.ForceLogout = value
	return nil
}

func (s *MemoryStore) ForceLogoutFlag(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, ErrUserNotFound
	}
	return u.ForceLogout, nil
}

func (s *MemoryStore) SetPresence(ctx context.Context, userID string, online bool, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence[userID] = models.Presence{UserID: userID, IsOnline: online, LastSeen: lastSeen}
	return nil
}

func (s *MemoryStore) GetPresence(ctx context.Context, userID string) (models.Presence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.presence[userID]; ok {
		return p, nil
	}
	return models.Presence{UserID: userID}, nil
}
