package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const playerIDKey = "playerID"

func playerIDFrom(c *fiber.Ctx) string {
	if id := c.Get("X-Player-ID"); id != "" {
		return id
	}
	return c.Query("playerId")
}

// EnsurePlayerID rejects requests that carry no player ID in the X-Player-ID
// header or playerId query parameter.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		playerID := playerIDFrom(c)
		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player ID is required",
			})
		}
		c.Locals(playerIDKey, playerID)
		return c.Next()
	}
}

// WebSocketUpgrade only lets real upgrade requests through. The player ID is
// optional here: sockets without one watch the game but cannot move.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals(playerIDKey, playerIDFrom(c))
		return c.Next()
	}
}
