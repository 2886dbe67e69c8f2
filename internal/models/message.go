package models

import "time"

// TempIDPrefix marks client-only optimistic messages that were never persisted.
const TempIDPrefix = "temp-"

// Message is one chat utterance. Immutable once persisted; destroyed only as
// part of room termination.
type Message struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar,omitempty"`
	Body       string    `json:"body"`
	// ClientID correlates an optimistic client-side entry with the
	// authoritative persisted message.
	ClientID  string    `json:"client_id,omitempty"`
	IsTemp    bool      `json:"is_temp,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WSMessage is the websocket event envelope.
type WSMessage struct {
	Event     string    `json:"event"` // "join", "leave", "chat"
	RoomID    string    `json:"room_id,omitempty"`
	Text      string    `json:"text,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	Timestamp int64     `json:"timestamp,omitempty"`
	Error     string    `json:"error,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
	Rooms     []Room    `json:"rooms,omitempty"`
}
