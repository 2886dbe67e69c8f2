// Package store defines the persistence boundary for rooms, messages, users
// and presence. Services depend on these interfaces so they can be exercised
// against in-memory fakes; production wiring uses the Postgres and Redis
// implementations in this package.
package store

import (
	"context"
	"errors"
	"time"

	"notesnexus-backend/internal/models"
)

var (
	// ErrRoomNotFound is returned when a token or room id does not resolve
	// to an existing room.
	ErrRoomNotFound = errors.New("room not found")

	// ErrTokenTaken is returned by CreateRoom when the generated join token
	// collides with an existing room.
	ErrTokenTaken = errors.New("room token already in use")

	// ErrIndexNotReady signals that the ordered message query cannot be
	// served yet because the backing index is still being built. Callers
	// fall back to an unordered fetch plus a client-side sort.
	ErrIndexNotReady = errors.New("message index not ready")

	// ErrUserNotFound is returned when a user id or email does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned by CreateUser on a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
)

// RoomStore persists chat rooms.
type RoomStore interface {
	// CreateRoom inserts the room. Returns ErrTokenTaken on a join-token
	// collision.
	CreateRoom(ctx context.Context, room *models.Room) error

	// GetRoom returns the room by id, or ErrRoomNotFound.
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)

	// GetRoomByToken returns the room with the given join token, or
	// ErrRoomNotFound.
	GetRoomByToken(ctx context.Context, token string) (*models.Room, error)

	// MutateRoom runs mutate against the current room state under a row
	// lock and persists the result if mutate returns nil. Any error from
	// mutate aborts the update and is returned unchanged. Returns
	// ErrRoomNotFound if the room no longer exists.
	MutateRoom(ctx context.Context, roomID string, mutate func(*models.Room) error) error

	// ListRoomsByParticipant returns the rooms the user participates in,
	// newest first.
	ListRoomsByParticipant(ctx context.Context, userID string) ([]models.Room, error)

	// DeleteRoomCascade deletes the room and every message belonging to it
	// as one atomic operation. Returns ErrRoomNotFound if the room does
	// not exist.
	DeleteRoomCascade(ctx context.Context, roomID string) error
}

// MessageStore persists chat messages.
type MessageStore interface {
	// InsertMessage appends the message, assigning its id and a
	// server-side timestamp back onto msg.
	InsertMessage(ctx context.Context, msg *models.Message) error

	// MessagesOrdered returns the room's messages in ascending timestamp
	// order. Returns ErrIndexNotReady while the ordering index is
	// unavailable.
	MessagesOrdered(ctx context.Context, roomID string) ([]models.Message, error)

	// MessagesUnordered returns the room's messages in no particular
	// order. It must stay available even when MessagesOrdered is not.
	MessagesUnordered(ctx context.Context, roomID string) ([]models.Message, error)
}

// UserStore persists principals.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) error

	// SetForceLogout sets or clears the remote force-logout flag.
	SetForceLogout(ctx context.Context, userID string, value bool) error
	// ForceLogoutFlag reads the flag without clearing it.
	ForceLogoutFlag(ctx context.Context, userID string) (bool, error)
}

// PresenceStore records best-effort online/last-seen state.
type PresenceStore interface {
	// SetPresence writes {isOnline, lastSeen} for the user.
	SetPresence(ctx context.Context, userID string, online bool, lastSeen time.Time) error
	// GetPresence returns the recorded state, defaulting to offline with a
	// zero last-seen when nothing was recorded.
	GetPresence(ctx context.Context, userID string) (models.Presence, error)
}
