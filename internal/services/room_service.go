package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/store"
)

var (
	ErrRoomNotFound  = store.ErrRoomNotFound
	ErrRoomFull      = errors.New("room has reached its participant limit")
	ErrNotAuthorized = errors.New("only the creator can terminate this room")
)

// tokenAttempts bounds regeneration when a generated join token collides
// with an existing room.
const tokenAttempts = 5

type RoomService struct {
	rooms store.RoomStore

	// randMu guards rand: rand.Rand is not safe for concurrent use and
	// CreateRoom runs on concurrent request handlers.
	randMu sync.Mutex
	rand   *rand.Rand
}

func NewRoomService(rooms store.RoomStore, src rand.Source) *RoomService {
	return &RoomService{rooms: rooms, rand: rand.New(src)}
}

// generateToken draws a 6-character uppercase base36 token.
func (s *RoomService) generateToken() string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	s.randMu.Lock()
	defer s.randMu.Unlock()
	var b strings.Builder
	for i := 0; i < models.TokenLength; i++ {
		b.WriteByte(alphabet[s.rand.Intn(len(alphabet))])
	}
	return b.String()
}

// CreateRoom creates a room with the caller as its only participant and
// returns the room id and join token. The participant limit defaults to 10
// and must fall within 2..100.
func (s *RoomService) CreateRoom(ctx context.Context, name, creatorID string, participantLimit int) (*models.CreateRoomResponse, error) {
	if name == "" {
		return nil, errors.New("room name is required")
	}
	if participantLimit == 0 {
		participantLimit = models.DefaultParticipantLimit
	}
	if participantLimit < models.MinParticipantLimit || participantLimit > models.MaxParticipantLimit {
		return nil, fmt.Errorf("participant limit must be between %d and %d",
			models.MinParticipantLimit, models.MaxParticipantLimit)
	}

	for attempt := 0; attempt < tokenAttempts; attempt++ {
		room := &models.Room{
			Name:             name,
			CreatedBy:        creatorID,
			Token:            s.generateToken(),
			Participants:     []string{creatorID},
			ParticipantLimit: participantLimit,
		}
		err := s.rooms.CreateRoom(ctx, room)
		if errors.Is(err, store.ErrTokenTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &models.CreateRoomResponse{RoomID: room.ID, Token: room.Token}, nil
	}
	return nil, errors.New("could not allocate a unique room token")
}

// JoinRoom adds the user to the room identified by token. Joining a room the
// user already participates in succeeds without changing the room.
func (s *RoomService) JoinRoom(ctx context.Context, token, userID string) (*models.JoinRoomResponse, error) {
	room, err := s.rooms.GetRoomByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// Fast path; re-checked under the row lock below.
	if room.HasParticipant(userID) {
		return &models.JoinRoomResponse{RoomID: room.ID}, nil
	}

	err = s.rooms.MutateRoom(ctx, room.ID, func(r *models.Room) error {
		if r.HasParticipant(userID) {
			return nil
		}
		if len(r.Participants) >= r.ParticipantLimit {
			return ErrRoomFull
		}
		r.Participants = append(r.Participants, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.JoinRoomResponse{RoomID: room.ID}, nil
}

// TerminateRoom deletes the room and all of its messages. Only the creator
// may terminate; the deletion is atomic.
func (s *RoomService) TerminateRoom(ctx context.Context, roomID, requesterID string) error {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatedBy != requesterID {
		return ErrNotAuthorized
	}
	return s.rooms.DeleteRoomCascade(ctx, roomID)
}

// GetRoom returns the room by id.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.rooms.GetRoom(ctx, roomID)
}

// ListRooms returns the rooms the user participates in, newest first.
func (s *RoomService) ListRooms(ctx context.Context, userID string) ([]models.Room, error) {
	return s.rooms.ListRoomsByParticipant(ctx, userID)
}
