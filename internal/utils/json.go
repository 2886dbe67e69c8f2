package utils

import (
	"encoding/json"
	"log"

	"github.com/gofiber/websocket/v2"
)

// SafeJSONParse parses JSON safely
func SafeJSONParse(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// SendJSON sends a JSON payload to a WebSocket connection safely.
// Fiber's websocket implementation is not thread-safe for concurrent writes;
// the hub serializes writes to a connection under its own lock.
func SendJSON(c *websocket.Conn, payload interface{}) error {
	return c.WriteJSON(payload)
}

// LogError logs an error if it's not nil
func LogError(err error, context string) {
	if err != nil {
		log.Printf("Error [%s]: %v", context, err)
	}
}
