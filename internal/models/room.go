package models

import "time"

const (
	DefaultParticipantLimit = 10
	MinParticipantLimit     = 2
	MaxParticipantLimit     = 100

	// TokenLength is the length of the human-shareable join token.
	TokenLength = 6
)

// Room is a named, token-joinable chat channel with a participant cap.
type Room struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	CreatedBy        string    `json:"created_by"`
	Token            string    `json:"token"`
	Participants     []string  `json:"participants"`
	ParticipantLimit int       `json:"participant_limit"`
	CreatedAt        time.Time `json:"created_at"`
}

// HasParticipant reports whether the given user is already in the room.
func (r *Room) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

type CreateRoomRequest struct {
	Name             string `json:"name"`
	ParticipantLimit int    `json:"participant_limit"`
}

type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
	Token  string `json:"token"`
}

type JoinRoomRequest struct {
	Token string `json:"token"`
}

type JoinRoomResponse struct {
	RoomID string `json:"room_id"`
}
