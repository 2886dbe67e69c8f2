package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/services"
	"notesnexus-backend/internal/utils"

	"github.com/gofiber/websocket/v2"
)

// wsSession carries the authenticated identity of one websocket connection.
type wsSession struct {
	userID      string
	displayName string
	avatarURL   string
	connID      string
}

func HandleMessage(c *websocket.Conn, msgType int, msg []byte, hub *Hub, roomService *services.RoomService, messageService *services.MessageService, sess wsSession, currentRoom *string) {
	if msgType != websocket.TextMessage {
		return
	}

	var wsMsg models.WSMessage
	if err := utils.SafeJSONParse(msg, &wsMsg); err != nil {
		utils.LogError(err, "JSON Parse")
		return
	}

	// Override identity with the authenticated user
	wsMsg.UserName = sess.displayName
	wsMsg.Timestamp = time.Now().UnixMilli()

	switch wsMsg.Event {
	case "join":
		handleJoin(c, &wsMsg, hub, roomService, sess, currentRoom)
	case "leave":
		handleLeave(&wsMsg, hub, sess, currentRoom)
	case "chat":
		handleChat(c, &wsMsg, messageService, sess, *currentRoom)
	case "rooms":
		handleRoomList(c, roomService, sess)
	case "heartbeat":
		// Clients forward tab visibility/load transitions here; the write
		// is idempotent and best-effort.
		hub.Heartbeat(sess.userID, wsMsg.Text != "hidden")
	default:
		log.Printf("Unknown event: %s", wsMsg.Event)
	}
}

func handleJoin(c *websocket.Conn, msg *models.WSMessage, hub *Hub, roomService *services.RoomService, sess wsSession, currentRoom *string) {
	if msg.RoomID == "" {
		return
	}

	ctx := context.Background()
	room, err := roomService.GetRoom(ctx, msg.RoomID)
	if err != nil {
		sendError(c, "join_failed", msg.RoomID, err)
		return
	}
	if !room.HasParticipant(sess.userID) {
		sendError(c, "join_failed", msg.RoomID, errors.New("not a participant of this room"))
		return
	}

	// Leave previous room if any
	if *currentRoom != "" {
		hub.Leave(*currentRoom, sess.connID)
		hub.Broadcast(*currentRoom, models.WSMessage{
			Event:     "leave",
			RoomID:    *currentRoom,
			UserName:  sess.displayName,
			Timestamp: time.Now().UnixMilli(),
		}, "")
	}

	*currentRoom = msg.RoomID
	if err := hub.Join(msg.RoomID, sess.connID, c); err != nil {
		*currentRoom = ""
		sendError(c, "join_failed", msg.RoomID, err)
		return
	}

	// Confirm to the sender; the snapshot pump delivers the history.
	utils.SendJSON(c, models.WSMessage{
		Event:     "joined",
		RoomID:    msg.RoomID,
		UserName:  sess.displayName,
		Timestamp: time.Now().UnixMilli(),
	})

	hub.Broadcast(msg.RoomID, models.WSMessage{
		Event:     "join",
		RoomID:    msg.RoomID,
		UserName:  sess.displayName,
		Timestamp: time.Now().UnixMilli(),
	}, sess.connID)
}

func handleLeave(msg *models.WSMessage, hub *Hub, sess wsSession, currentRoom *string) {
	roomID := *currentRoom
	if roomID == "" {
		roomID = msg.RoomID
	}
	if roomID == "" {
		return
	}

	hub.Leave(roomID, sess.connID)
	*currentRoom = ""

	hub.Broadcast(roomID, models.WSMessage{
		Event:     "leave",
		RoomID:    roomID,
		UserName:  sess.displayName,
		Timestamp: time.Now().UnixMilli(),
	}, "")
}

func handleChat(c *websocket.Conn, msg *models.WSMessage, messageService *services.MessageService, sess wsSession, currentRoom string) {
	if currentRoom == "" {
		sendError(c, "send_failed", "", errors.New("no active chat room"))
		return
	}
	if msg.Text == "" {
		return
	}

	_, err := messageService.Send(context.Background(), &models.Message{
		RoomID:     currentRoom,
		UserID:     sess.userID,
		UserName:   sess.displayName,
		UserAvatar: sess.avatarURL,
		Body:       msg.Text,
		ClientID:   msg.ClientID,
	})
	if err != nil {
		// Echo the correlation id so the client can roll back exactly the
		// optimistic entry for this attempt.
		utils.SendJSON(c, models.WSMessage{
			Event:    "send_failed",
			RoomID:   currentRoom,
			ClientID: msg.ClientID,
			Error:    err.Error(),
		})
		return
	}
	// Delivery to all members (sender included) happens via the snapshot
	// pump.
}

func handleRoomList(c *websocket.Conn, roomService *services.RoomService, sess wsSession) {
	rooms, err := roomService.ListRooms(context.Background(), sess.userID)
	if err != nil {
		sendError(c, "rooms_failed", "", err)
		return
	}
	utils.SendJSON(c, models.WSMessage{
		Event:     "rooms",
		Rooms:     rooms,
		Timestamp: time.Now().UnixMilli(),
	})
}

func sendError(c *websocket.Conn, event, roomID string, err error) {
	utils.SendJSON(c, models.WSMessage{
		Event:  event,
		RoomID: roomID,
		Error:  err.Error(),
	})
}
