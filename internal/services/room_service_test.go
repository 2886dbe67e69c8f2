package services

import (
	"context"
	"math/rand"
	"regexp"
	"sync"
	"testing"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomService(s store.RoomStore) *RoomService {
	return NewRoomService(s, rand.NewSource(1))
}

func TestCreateRoom(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newRoomService(mem)
	ctx := context.Background()

	res, err := svc.CreateRoom(ctx, "Study Group", "user-a", 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.RoomID)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{6}$`), res.Token)

	room, err := mem.GetRoom(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a"}, room.Participants)
	assert.Equal(t, models.DefaultParticipantLimit, room.ParticipantLimit)
	assert.Equal(t, "user-a", room.CreatedBy)
}

func TestCreateRoomLimitValidation(t *testing.T) {
	svc := newRoomService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "tiny", "user-a", 1)
	assert.Error(t, err)

	_, err = svc.CreateRoom(ctx, "huge", "user-a", 101)
	assert.Error(t, err)

	_, err = svc.CreateRoom(ctx, "edge-low", "user-a", 2)
	assert.NoError(t, err)

	_, err = svc.CreateRoom(ctx, "edge-high", "user-a", 100)
	assert.NoError(t, err)
}

// Token generation shares one rand.Rand across the handlers calling
// CreateRoom; run under -race this catches an unguarded generator.
func TestCreateRoomConcurrent(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newRoomService(mem)
	ctx := context.Background()

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateRoom(ctx, "standup", "user-a", 0)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	rooms, err := svc.ListRooms(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, rooms, n)
}

// collidingRoomStore rejects the first n creations with ErrTokenTaken.
type collidingRoomStore struct {
	*store.MemoryStore
	rejections int
}

func (s *collidingRoomStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if s.rejections > 0 {
		s.rejections--
		return store.ErrTokenTaken
	}
	return s.MemoryStore.CreateRoom(ctx, room)
}

func TestCreateRoomRetriesOnTokenCollision(t *testing.T) {
	mem := &collidingRoomStore{MemoryStore: store.NewMemoryStore(), rejections: 2}
	svc := newRoomService(mem)

	res, err := svc.CreateRoom(context.Background(), "retry", "user-a", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestCreateRoomGivesUpAfterRepeatedCollisions(t *testing.T) {
	mem := &collidingRoomStore{MemoryStore: store.NewMemoryStore(), rejections: tokenAttempts}
	svc := newRoomService(mem)

	_, err := svc.CreateRoom(context.Background(), "doomed", "user-a", 0)
	assert.Error(t, err)
}

func TestJoinRoom(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newRoomService(mem)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "Study Group", "user-a", 2)
	require.NoError(t, err)

	res, err := svc.JoinRoom(ctx, created.Token, "user-b")
	require.NoError(t, err)
	assert.Equal(t, created.RoomID, res.RoomID)

	room, err := mem.GetRoom(ctx, created.RoomID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a", "user-b"}, room.Participants)
}

func TestJoinRoomUnknownToken(t *testing.T) {
	svc := newRoomService(store.NewMemoryStore())

	_, err := svc.JoinRoom(context.Background(), "NOSUCH", "user-b")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomIdempotent(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newRoomService(mem)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "Study Group", "user-a", 2)
	require.NoError(t, err)

	_, err = svc.JoinRoom(ctx, created.Token, "user-b")
	require.NoError(t, err)

	// Joining again succeeds and leaves the participant list unchanged.
	res, err := svc.JoinRoom(ctx, created.Token, "user-b")
	require.NoError(t, err)
	assert.Equal(t, created.RoomID, res.RoomID)

	room, err := mem.GetRoom(ctx, created.RoomID)
	require.NoError(t, err)
	assert.Len(t, room.Participants, 2)
}

func TestJoinRoomFull(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newRoomService(mem)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "Study Group", "user-a", 2)
	require.NoError(t, err)

	_, err = svc.JoinRoom(ctx, created.Token, "user-b")
	require.NoError(t, err)

	_, err = svc.JoinRoom(ctx, created.Token, "user-c")
	assert.ErrorIs(t, err, ErrRoomFull)

	room, err := mem.GetRoom(ctx, created.RoomID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a", "user-b"}, room.Participants)
}

func TestTerminateRoomNonCreator(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newRoomService(mem)
	msgs := NewMessageService(mem)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "Study Group", "user-a", 2)
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, created.Token, "user-b")
	require.NoError(t, err)

	_, err = msgs.Send(ctx, &models.Message{
		RoomID: created.RoomID, UserID: "user-a", UserName: "A", Body: "hello",
	})
	require.NoError(t, err)

	err = svc.TerminateRoom(ctx, created.RoomID, "user-b")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// Room and its message survive.
	_, err = mem.GetRoom(ctx, created.RoomID)
	require.NoError(t, err)
	history, err := msgs.History(ctx, created.RoomID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTerminateRoomByCreator(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newRoomService(mem)
	msgs := NewMessageService(mem)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "Study Group", "user-a", 2)
	require.NoError(t, err)
	_, err = msgs.Send(ctx, &models.Message{
		RoomID: created.RoomID, UserID: "user-a", UserName: "A", Body: "bye",
	})
	require.NoError(t, err)

	require.NoError(t, svc.TerminateRoom(ctx, created.RoomID, "user-a"))

	_, err = mem.GetRoom(ctx, created.RoomID)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	history, err := msgs.History(ctx, created.RoomID)
	require.NoError(t, err)
	assert.Empty(t, history)

	err = svc.TerminateRoom(ctx, created.RoomID, "user-a")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestListRoomsNewestFirst(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newRoomService(mem)
	ctx := context.Background()

	first, err := svc.CreateRoom(ctx, "first", "user-a", 0)
	require.NoError(t, err)
	second, err := svc.CreateRoom(ctx, "second", "user-a", 0)
	require.NoError(t, err)

	rooms, err := svc.ListRooms(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, second.RoomID, rooms[0].ID)
	assert.Equal(t, first.RoomID, rooms[1].ID)
}
