package handlers

import (
	"context"

	"zion/gateway/internal/middleware"
	ws "zion/gateway/internal/websocket"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WebSocketUpgrade rejects plain HTTP and makes sure the caller has a workspace
func (h *Handler) WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"success": false,
			"error":   "WebSocket upgrade required",
		})
	}
	// room authorization looks the workspace up by user
	h.workspace(c)
	return c.Next()
}

// WebSocketHandler serves one live connection until it closes
func (h *Handler) WebSocketHandler(conn *websocket.Conn) {
	userID, _ := conn.Locals("userID").(string)
	requestID, _ := conn.Locals("requestID").(string)

	// membership checks made for this socket end with it
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := h.log.With(zap.String("user_id", userID), zap.String("request_id", requestID))
	log.Debug("websocket connected")
	defer log.Debug("websocket closed")

	client := ws.NewClient(userID, conn, h.hub)
	h.hub.Register <- client

	go client.WritePump()
	client.ReadPump(ctx)
}

// GetWebSocketStats reports live connection counters
func (h *Handler) GetWebSocketStats(c *fiber.Ctx) error {
	return ok(c, fiber.Map{
		"online_users": h.hub.GetOnlineCount(),
		"rooms":        h.hub.RoomCount(),
		"connected":    h.hub.IsUserOnline(middleware.GetUserID(c)),
	})
}
