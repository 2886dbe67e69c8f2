package handlers

import (
	"context"
	"log"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/services"
	"notesnexus-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WebSocketHandler handles the websocket connection
func WebSocketHandler(hub *Hub, roomService *services.RoomService, messageService *services.MessageService, userService *services.UserService) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		// Retrieve user info from locals (set by middleware)
		userID := c.Locals("user_id").(string)
		displayName, _ := c.Locals("display_name").(string)

		// Avatar snapshot for messages sent over this connection.
		var avatarURL string
		if user, err := userService.GetProfile(context.Background(), userID); err == nil {
			avatarURL = user.AvatarURL
			if user.DisplayName != "" {
				displayName = user.DisplayName
			}
		}

		// Generate a unique ID for this connection
		connID := uuid.New().String()
		hub.RegisterConnection(connID, userID, displayName, c)

		var currentRoom string

		defer func() {
			if currentRoom != "" {
				hub.Broadcast(currentRoom, models.WSMessage{
					Event:    "leave",
					RoomID:   currentRoom,
					UserName: displayName,
				}, connID)
			}
			hub.UnregisterConnection(connID)
			c.Close()
		}()

		// Send welcome message
		utils.SendJSON(c, map[string]string{
			"event":   "connected",
			"message": "Welcome to NotesNexus chat",
		})

		for {
			msgType, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				break
			}

			HandleMessage(c, msgType, msg, hub, roomService, messageService, wsSession{
				userID:      userID,
				displayName: displayName,
				avatarURL:   avatarURL,
				connID:      connID,
			}, &currentRoom)
		}
	})
}

// WSUpgradeMiddleware upgrades the connection to WebSocket
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AuthMiddleware verifies the JWT token before upgrading
func AuthMiddleware(c *fiber.Ctx) error {
	// Get token from query param `access_token` or Authorization header
	token := c.Query("access_token")
	if token == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}

	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	// Store user info in locals
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		c.Locals("user_id", uid)
	} else {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	if name, ok := claims["display_name"].(string); ok {
		c.Locals("display_name", name)
	}

	return c.Next()
}
