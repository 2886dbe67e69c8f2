package handlers

import (
	"context"
	"sync"
	"time"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/services"
	"notesnexus-backend/internal/utils"

	"github.com/gofiber/websocket/v2"
)

// forceLogoutInterval is how often the hub polls a connected user's
// force-logout flag.
const forceLogoutInterval = 15 * time.Second

type ConnMeta struct {
	UserID      string
	DisplayName string
	Conn        *websocket.Conn
}

// Hub tracks websocket connections per room, bridges message-service
// snapshot subscriptions onto room members, and drives presence and the
// force-logout watcher from connection lifecycle transitions.
type Hub struct {
	presence *services.PresenceService
	users    *services.UserService
	messages *services.MessageService

	mu sync.RWMutex
	// roomID -> connID -> conn
	rooms map[string]map[string]*websocket.Conn
	// connID -> metadata (includes connection reference)
	connMeta map[string]ConnMeta
	// roomID -> unsubscribe for the room's snapshot pump
	pumps map[string]func()
	// userID -> cleanup for the presence lifecycle + force-logout watcher
	sessions map[string]func()
}

func NewHub(presence *services.PresenceService, users *services.UserService, messages *services.MessageService) *Hub {
	return &Hub{
		presence: presence,
		users:    users,
		messages: messages,
		rooms:    make(map[string]map[string]*websocket.Conn),
		connMeta: make(map[string]ConnMeta),
		pumps:    make(map[string]func()),
		sessions: make(map[string]func()),
	}
}

// RegisterConnection stores metadata for a new websocket connection. The
// first connection for a user brings them online: one presence lifecycle and
// one force-logout watcher per user, torn down again on the last disconnect.
func (h *Hub) RegisterConnection(connID, userID, displayName string, conn *websocket.Conn) {
	h.mu.Lock()
	wasOnline := h.userOnlineLocked(userID)
	h.connMeta[connID] = ConnMeta{UserID: userID, DisplayName: displayName, Conn: conn}
	h.mu.Unlock()
	if wasOnline {
		return
	}

	// Presence writes happen outside the hub lock.
	teardownPresence := h.presence.Setup(context.Background(), userID)
	stop := make(chan struct{})
	go h.watchForceLogout(userID, stop)

	h.mu.Lock()
	h.sessions[userID] = func() {
		close(stop)
		teardownPresence()
	}
	h.mu.Unlock()
}

// UnregisterConnection drops the connection from all rooms and, if it was
// the user's last one, tears down their presence lifecycle.
func (h *Hub) UnregisterConnection(connID string) {
	h.mu.Lock()
	meta, ok := h.connMeta[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connMeta, connID)

	for roomID := range h.rooms {
		h.leaveLocked(roomID, connID)
	}

	var cleanup func()
	if !h.userOnlineLocked(meta.UserID) {
		cleanup = h.sessions[meta.UserID]
		delete(h.sessions, meta.UserID)
	}
	h.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
}

func (h *Hub) userOnlineLocked(userID string) bool {
	for _, meta := range h.connMeta {
		if meta.UserID == userID {
			return true
		}
	}
	return false
}

// Heartbeat records an idempotent presence refresh for the user.
func (h *Hub) Heartbeat(userID string, online bool) {
	h.presence.Heartbeat(context.Background(), userID, online)
}

// Join adds the connection to the room, starting the room's snapshot pump
// if it is the first member.
func (h *Hub) Join(roomID, connID string, c *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*websocket.Conn)
	}
	h.rooms[roomID][connID] = c

	if _, ok := h.pumps[roomID]; ok {
		return nil
	}

	snapshots, unsubscribe, err := h.messages.Subscribe(context.Background(), roomID)
	if err != nil {
		// The caller was told the join failed; it must not stay a member
		// and keep receiving the room's broadcasts.
		h.leaveLocked(roomID, connID)
		return err
	}
	h.pumps[roomID] = unsubscribe
	go h.pump(roomID, snapshots)
	return nil
}

// pump forwards message snapshots to every connection in the room until the
// subscription channel is closed.
func (h *Hub) pump(roomID string, snapshots <-chan []models.Message) {
	for snap := range snapshots {
		h.Broadcast(roomID, models.WSMessage{
			Event:     "messages",
			RoomID:    roomID,
			Messages:  snap,
			Timestamp: time.Now().UnixMilli(),
		}, "")
	}
}

// Leave removes the connection from the room, stopping the snapshot pump
// when the room empties.
func (h *Hub) Leave(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(roomID, connID)
}

func (h *Hub) leaveLocked(roomID, connID string) {
	conns, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) > 0 {
		return
	}
	delete(h.rooms, roomID)
	if unsubscribe, ok := h.pumps[roomID]; ok {
		delete(h.pumps, roomID)
		unsubscribe()
	}
}

// Broadcast sends the payload to every connection in the room except the
// excluded one.
func (h *Hub) Broadcast(roomID string, message interface{}, excludeConnID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, conn := range h.rooms[roomID] {
		if id == excludeConnID || conn == nil {
			continue
		}
		if err := utils.SendJSON(conn, message); err != nil {
			utils.LogError(err, "broadcast")
			// The read loop notices the dead connection and unregisters it.
		}
	}
}

// CloseRoom notifies members that the room was terminated and detaches them.
func (h *Hub) CloseRoom(roomID string) {
	h.Broadcast(roomID, models.WSMessage{
		Event:     "room_terminated",
		RoomID:    roomID,
		Timestamp: time.Now().UnixMilli(),
	}, "")

	h.mu.Lock()
	defer h.mu.Unlock()
	if unsubscribe, ok := h.pumps[roomID]; ok {
		delete(h.pumps, roomID)
		unsubscribe()
	}
	delete(h.rooms, roomID)
}

// DisconnectUser closes every connection belonging to the user.
func (h *Hub) DisconnectUser(userID string) {
	h.mu.RLock()
	var conns []*websocket.Conn
	for _, meta := range h.connMeta {
		if meta.UserID == userID && meta.Conn != nil {
			conns = append(conns, meta.Conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		utils.SendJSON(conn, models.WSMessage{Event: "force_logout"})
		conn.Close()
	}
}

// watchForceLogout polls the user's force-logout flag while they are
// connected. The flag is cleared before the sign-out so a failed disconnect
// cannot loop.
func (h *Hub) watchForceLogout(userID string, stop <-chan struct{}) {
	ticker := time.NewTicker(forceLogoutInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			requested, err := h.users.ConsumeForceLogout(context.Background(), userID)
			if err != nil {
				utils.LogError(err, "force-logout check")
				continue
			}
			if requested {
				h.DisconnectUser(userID)
				return
			}
		}
	}
}
